//go:build !portaudio

package main

import (
	"errors"

	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
)

func openPortAudio(int, *logging.Logger) (ports.Sink, error) {
	return nil, errors.New("built without portaudio support (rebuild with -tags portaudio)")
}
