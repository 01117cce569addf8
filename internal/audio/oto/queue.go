package oto

import (
	"bytes"
	"sync"
)

// queue é o io.Reader lido pelo player: toca o que foi enfileirado em
// ordem e completa com silêncio quando vazio, então o player nunca termina
type queue struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (q *queue) push(pcm []byte) {
	q.mu.Lock()
	q.buf.Write(pcm)
	q.mu.Unlock()
}

func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Len()
}

func (q *queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	n, _ := q.buf.Read(p)
	q.mu.Unlock()

	// mantém o alinhamento de 16 bits
	if n%2 == 1 && n < len(p) {
		p[n] = 0
		n++
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
