package audio

import (
	"sync"

	"github.com/diogoX451/synthctl/internal/core/ports"
)

var (
	_ ports.Sink = (*NullSink)(nil)
	_ ports.Sink = (*MemorySink)(nil)
)

// NullSink descarta o áudio (modo headless)
type NullSink struct {
	Rate int
}

func NewNullSink() *NullSink { return &NullSink{Rate: SampleRate} }

func (n *NullSink) Write(pcm []byte) error { return nil }
func (n *NullSink) SampleRate() int        { return n.Rate }
func (n *NullSink) Close() error           { return nil }

// MemorySink acumula os buffers recebidos
type MemorySink struct {
	mu      sync.Mutex
	Rate    int
	buffers [][]byte
	closed  bool
}

func NewMemorySink(rate int) *MemorySink { return &MemorySink{Rate: rate} }

func (m *MemorySink) Write(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	m.buffers = append(m.buffers, buf)
	return nil
}

func (m *MemorySink) SampleRate() int { return m.Rate }

func (m *MemorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemorySink) Buffers() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.buffers))
	copy(out, m.buffers)
	return out
}
