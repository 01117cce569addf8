package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Audio  AudioConfig  `mapstructure:"audio"`
	App    AppConfig    `mapstructure:"app"`
	NATS   NATSConfig   `mapstructure:"nats"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type EngineConfig struct {
	Path          string        `mapstructure:"path"`
	Args          []string      `mapstructure:"args"`
	MaxFrameBytes int           `mapstructure:"max_frame_bytes"`
	ExitTimeout   time.Duration `mapstructure:"exit_timeout"`
}

type AudioConfig struct {
	Backend    string `mapstructure:"backend"`
	SampleRate int    `mapstructure:"sample_rate"`
	SinkName   string `mapstructure:"sink_name"`
}

type AppConfig struct {
	Prompt    string `mapstructure:"prompt"`
	LogLevel  string `mapstructure:"log_level"`
	HTTPAddr  string `mapstructure:"http_addr"`
	SessionID string `mapstructure:"session_id"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	MaxReconnects int    `mapstructure:"max_reconnects"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	RemoteInput   bool   `mapstructure:"remote_input"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Backends de áudio aceitos
const (
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// Load lê defaults, o arquivo opcional em SYNTH_CONFIG e variáveis SYNTH_*
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("engine.path", "synth")
	v.SetDefault("engine.args", []string{})
	v.SetDefault("engine.max_frame_bytes", 64<<20)
	v.SetDefault("engine.exit_timeout", 5*time.Second)

	v.SetDefault("audio.backend", BackendOto)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.sink_name", "speaker")

	v.SetDefault("app.prompt", "> ")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.http_addr", "")
	v.SetDefault("app.session_id", "")

	// vazio = desligado
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.subject_prefix", "synth")
	v.SetDefault("nats.remote_input", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetEnvPrefix("SYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	if path := os.Getenv("SYNTH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("engine.path is required")
	}
	switch c.Audio.Backend {
	case BackendOto, BackendPortAudio, BackendNull:
	default:
		return fmt.Errorf("unknown audio.backend %q (oto, portaudio, null)", c.Audio.Backend)
	}
	if c.Audio.SinkName == "" {
		return fmt.Errorf("audio.sink_name is required")
	}
	if c.NATS.RemoteInput && c.NATS.URL == "" {
		return fmt.Errorf("nats.remote_input requires nats.url")
	}
	return nil
}
