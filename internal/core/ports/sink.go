package ports

// Sink recebe buffers PCM 16 bits little-endian mono
type Sink interface {
	Write(pcm []byte) error
	SampleRate() int
	Close() error
}
