// Package oto toca o PCM do engine no dispositivo padrão via oto/v3.
package oto

import (
	"fmt"
	"time"

	"github.com/diogoX451/synthctl/internal/audio"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/ebitengine/oto/v3"
)

var _ ports.Sink = (*Sink)(nil)

type Sink struct {
	ctx    *oto.Context
	player *oto.Player
	queue  *queue
	rate   int
	log    *logging.Logger
}

// New abre o contexto (uma vez por processo) mono s16le; rate <= 0 usa 44100
func New(rate int, log *logging.Logger) (*Sink, error) {
	if rate <= 0 {
		rate = audio.SampleRate
	}
	if log == nil {
		log = logging.Discard()
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	q := &queue{}
	p := ctx.NewPlayer(q)
	p.Play()
	log.Infof("audio sink ready backend=oto rate=%d", rate)

	return &Sink{ctx: ctx, player: p, queue: q, rate: rate, log: log}, nil
}

// Write enfileira o buffer; não bloqueia
func (s *Sink) Write(pcm []byte) error {
	s.queue.push(pcm)
	return nil
}

func (s *Sink) SampleRate() int { return s.rate }

// Close espera o áudio enfileirado tocar e fecha o player
func (s *Sink) Close() error {
	pending := s.queue.pending()
	limit := time.Duration(pending)*time.Second/time.Duration(2*s.rate) + time.Second
	deadline := time.Now().Add(limit)

	for s.queue.pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if n := s.queue.pending(); n > 0 {
		s.log.Errorf("audio sink closed with %d bytes unplayed", n)
	}
	return s.player.Close()
}
