package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	eventadapter "github.com/diogoX451/synthctl/internal/adapters/events"
	storeadapter "github.com/diogoX451/synthctl/internal/adapters/store"
	"github.com/diogoX451/synthctl/internal/api"
	"github.com/diogoX451/synthctl/internal/config"
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/engine"
	natsevents "github.com/diogoX451/synthctl/internal/events/nats"
	"github.com/diogoX451/synthctl/internal/input"
	"github.com/diogoX451/synthctl/internal/journal"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/diogoX451/synthctl/internal/metrics"
	"github.com/diogoX451/synthctl/internal/session"
	redisstore "github.com/diogoX451/synthctl/internal/store/redis"
	"github.com/diogoX451/synthctl/pkg/types"
)

func main() {
	os.Exit(run())
}

// run devolve o código de saída: 0 no fim da entrada, 1 em erro fatal
func run() int {
	// Config
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Errorf("failed to load config: %v", err)
		return 1
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.App.LogLevel))

	id := types.SessionID(cfg.App.SessionID)
	if id == "" {
		id = types.SessionID(uuid.NewString())
	}
	m := metrics.New()

	// Ctrl-C encerra como o fim da entrada
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fontes de entrada: script opcional, depois o terminal
	sources := make([]input.Source, 0, 2)
	if len(os.Args) > 1 {
		script, err := input.File(os.Args[1])
		if err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		sources = append(sources, script)
	}
	sources = append(sources, input.Terminal(os.Stdin, os.Stdout, cfg.App.Prompt))

	// Infra
	sink, err := openSink(cfg.Audio, logger)
	if err != nil {
		logger.Errorf("failed to open audio sink: %v", err)
		return 1
	}
	defer sink.Close()

	var bus ports.EventBus
	if cfg.NATS.URL != "" {
		logger.Infof("connecting to NATS url=%s", cfg.NATS.URL)
		natsBus, err := natsevents.New(natsevents.Config{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: 2 * time.Second,
		})
		if err != nil {
			logger.Errorf("failed to connect to NATS: %v", err)
			return 1
		}
		if err := natsBus.SetupSynthStreams(cfg.NATS.SubjectPrefix); err != nil {
			natsBus.Close()
			logger.Errorf("failed to setup streams: %v", err)
			return 1
		}
		bus = eventadapter.NewEventBus(natsBus, cfg.NATS.SubjectPrefix)
		defer bus.Close()
	}

	var repo ports.SessionRepository
	if cfg.Redis.Addr != "" {
		logger.Infof("connecting to Redis addr=%s", cfg.Redis.Addr)
		redisClient, err := redisstore.New(redisstore.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			DefaultTTL: cfg.Redis.TTL,
		})
		if err != nil {
			logger.Errorf("failed to connect to Redis: %v", err)
			return 1
		}
		repo = storeadapter.NewSessionRepository(redisClient)
		defer repo.Close()
	}

	var observer ports.Observer = ports.NopObserver{}
	if bus != nil || repo != nil {
		j := journal.New(journal.Options{
			Bus:        bus,
			Repository: repo,
			Metrics:    m,
			Logger:     logger,
		})
		// roda depois de proc.Close: nenhum evento novo chega
		defer j.Close()
		observer = j
	}

	// Engine
	proc, err := engine.Start(ctx, engine.Config{
		Path:        cfg.Engine.Path,
		Args:        cfg.Engine.Args,
		MaxFrame:    cfg.Engine.MaxFrameBytes,
		ExitTimeout: cfg.Engine.ExitTimeout,
	}, logger)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	defer func() {
		if err := proc.Close(); err != nil {
			logger.Errorf("%v", err)
		}
	}()

	sess, err := session.New(session.Options{
		ID:        id,
		Transport: proc,
		Sink:      sink,
		SinkName:  cfg.Audio.SinkName,
		Output:    os.Stdout,
		Observer:  observer,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	if cfg.NATS.RemoteInput {
		err := bus.SubscribeInput(ctx, id, func(ctx context.Context, l types.RemoteLine) error {
			return sess.Submit(ctx, l.Line)
		})
		if err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		logger.Infof("accepting remote input session=%s", id)
	}

	var wg conc.WaitGroup
	var srv *http.Server
	if cfg.App.HTTPAddr != "" {
		srv = &http.Server{
			Addr:         cfg.App.HTTPAddr,
			Handler:      api.NewServer(sess, repo, m),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		wg.Go(func() {
			logger.Infof("status API listening at %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("could not listen on %s: %v", srv.Addr, err)
			}
		})
	}

	// stdin não é cancelável: o leitor não entra no WaitGroup
	lines := make(chan string)
	go func() {
		if err := input.Feed(ctx, lines, sources...); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("%v", err)
		}
	}()

	logger.Infof("session started session=%s engine=%s pid=%d", id, cfg.Engine.Path, proc.Pid())
	runErr := sess.Run(ctx, lines)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("could not gracefully shutdown the server: %v", err)
		}
		cancel()
	}
	wg.Wait()

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, context.Canceled):
		logger.Infof("interrupted")
		return 0
	default:
		logger.Errorf("fatal (%s): %v", domain.Classify(runErr), runErr)
		return 1
	}
}
