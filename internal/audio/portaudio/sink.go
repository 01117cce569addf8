//go:build portaudio

package portaudio

import (
	"fmt"
	"sync"

	"github.com/diogoX451/synthctl/internal/audio"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
	pa "github.com/gordonklaus/portaudio"
	"github.com/sourcegraph/conc"
)

var _ ports.Sink = (*Sink)(nil)

const (
	framesPerBuffer = 1024
	queueDepth      = 64
)

// Sink escreve no stream padrão em modo bloqueante numa goroutine própria
type Sink struct {
	stream *pa.Stream
	buf    []int16
	queue  chan []int16
	rate   int
	wg     conc.WaitGroup
	once   sync.Once
	log    *logging.Logger
}

func New(rate int, log *logging.Logger) (*Sink, error) {
	if rate <= 0 {
		rate = audio.SampleRate
	}
	if log == nil {
		log = logging.Discard()
	}
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("unable to setup portaudio: %w", err)
	}

	s := &Sink{
		buf:   make([]int16, framesPerBuffer),
		queue: make(chan []int16, queueDepth),
		rate:  rate,
		log:   log,
	}
	stream, err := pa.OpenDefaultStream(0, 1, float64(rate), len(s.buf), &s.buf)
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("open default stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		pa.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	s.stream = stream

	if d, err := pa.DefaultOutputDevice(); err == nil {
		log.Infof("audio sink ready backend=portaudio device=%q rate=%d", d.Name, rate)
	}

	s.wg.Go(s.pump)
	return s, nil
}

// Write bloqueia só quando queueDepth buffers aguardam o dispositivo
func (s *Sink) Write(pcm []byte) error {
	s.queue <- decode(pcm)
	return nil
}

func (s *Sink) SampleRate() int { return s.rate }

func (s *Sink) pump() {
	for samples := range s.queue {
		for off := 0; off < len(samples); off += len(s.buf) {
			n := copy(s.buf, samples[off:])
			for i := n; i < len(s.buf); i++ {
				s.buf[i] = 0
			}
			if err := s.stream.Write(); err != nil {
				s.log.Debugf("portaudio write: %v", err)
			}
		}
	}
}

// Close toca o que falta e libera o dispositivo
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.queue)
		s.wg.Wait()
		if e := s.stream.Stop(); e != nil {
			err = e
		}
		s.stream.Close()
		if e := pa.Terminate(); e != nil && err == nil {
			err = e
		}
	})
	return err
}
