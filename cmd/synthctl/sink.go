package main

import (
	"github.com/diogoX451/synthctl/internal/audio"
	otosink "github.com/diogoX451/synthctl/internal/audio/oto"
	"github.com/diogoX451/synthctl/internal/config"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
)

func openSink(cfg config.AudioConfig, logger *logging.Logger) (ports.Sink, error) {
	switch cfg.Backend {
	case config.BackendNull:
		return &audio.NullSink{Rate: cfg.SampleRate}, nil
	case config.BackendPortAudio:
		return openPortAudio(cfg.SampleRate, logger)
	default:
		return otosink.New(cfg.SampleRate, logger)
	}
}
