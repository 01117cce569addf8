// Package audio converte amostras do engine em PCM e define os sinks.
package audio

import (
	"encoding/binary"
	"math"
)

// SampleRate é a única taxa suportada (mono, 16 bits)
const SampleRate = 44100

// EncodePCM converte amostras em [-1,1] para int16 little-endian.
// Valores fora da faixa são saturados.
func EncodePCM(samples []float64) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(toInt16(s)))
	}
	return buf
}

func toInt16(s float64) int16 {
	if math.IsNaN(s) {
		return 0
	}
	v := math.Round(s * math.MaxInt16)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// MaxSamples limita o tamanho de um único play
const MaxSamples = math.MaxInt32

// ValidDuration diz se `seconds` vira uma contagem de amostras representável
func ValidDuration(seconds float64, rate int) bool {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return false
	}
	return math.Round(seconds*float64(rate)) <= MaxSamples
}

// DurationToSamples converte segundos para número de amostras.
// Só é definido quando ValidDuration(seconds, rate).
func DurationToSamples(seconds float64, rate int) int {
	return int(math.Round(seconds * float64(rate)))
}
