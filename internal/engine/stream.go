// Package engine liga a sessão ao processo de síntese: escreve frames de
// request no stdin e decodifica frames de resposta do stdout.
package engine

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/diogoX451/synthctl/internal/protocol"
	"github.com/sourcegraph/conc"
)

var _ ports.Transport = (*Stream)(nil)

// Stream implementa Transport sobre qualquer par reader/writer
type Stream struct {
	w        io.WriteCloser
	frames   chan ports.Frame
	done     chan struct{}
	closing  atomic.Bool
	once     sync.Once
	wg       conc.WaitGroup
	log      *logging.Logger
	maxFrame int
}

// NewStream começa a ler frames de r imediatamente
func NewStream(r io.Reader, w io.WriteCloser, maxFrame int, log *logging.Logger) *Stream {
	if log == nil {
		log = logging.Discard()
	}
	s := &Stream{
		w:        w,
		frames:   make(chan ports.Frame, 16),
		done:     make(chan struct{}),
		log:      log,
		maxFrame: maxFrame,
	}
	s.wg.Go(func() { s.readFrames(r) })
	return s
}

// Send escreve um frame já codificado (com delimitador)
func (s *Stream) Send(frame []byte) error {
	if _, err := s.w.Write(frame); err != nil {
		return domain.WrapProtocol(err, "Stream", "Send", "write frame")
	}
	return nil
}

func (s *Stream) Frames() <-chan ports.Frame {
	return s.frames
}

// Close fecha o lado de escrita; o engine deve sair ao ver EOF
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		s.closing.Store(true)
		close(s.done)
		err = s.w.Close()
	})
	return err
}

// Wait espera a goroutine de leitura terminar
func (s *Stream) Wait() {
	s.wg.Wait()
}

func (s *Stream) readFrames(r io.Reader) {
	defer close(s.frames)

	scanner := protocol.NewFrameScanner(r, s.maxFrame)
	for scanner.Scan() {
		raw := scanner.Bytes()
		payload, err := protocol.DecodeResponse(raw)
		if err != nil {
			s.emit(ports.Frame{Err: err})
			return
		}
		kept := make([]byte, len(raw))
		copy(kept, raw)
		s.log.Debugf("frame received bytes=%d", len(raw))
		if !s.emit(ports.Frame{Payload: payload, Raw: kept}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.emit(ports.Frame{Err: protocol.ScanError(err)})
		return
	}
	if !s.closing.Load() {
		s.emit(ports.Frame{Err: domain.WrapProtocol(domain.ErrEngineExited, "Stream", "readFrames", "read stdout")})
	}
}

func (s *Stream) emit(f ports.Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-s.done:
		return false
	}
}
