// Package portaudio é o sink alternativo via PortAudio (build tag portaudio).
package portaudio

import "encoding/binary"

// decode converte PCM s16le para amostras; um byte solto no fim é ignorado
func decode(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}
