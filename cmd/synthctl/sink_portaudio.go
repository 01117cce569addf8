//go:build portaudio

package main

import (
	"github.com/diogoX451/synthctl/internal/audio/portaudio"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
)

func openPortAudio(rate int, logger *logging.Logger) (ports.Sink, error) {
	return portaudio.New(rate, logger)
}
