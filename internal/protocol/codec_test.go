package protocol

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader devolve o stream em pedaços de tamanhos arbitrários
type chunkReader struct {
	data  []byte
	sizes []int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := 1
	if len(c.sizes) > 0 {
		n = c.sizes[0]
		c.sizes = c.sizes[1:]
	}
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func scanAll(t *testing.T, r io.Reader) []domain.Value {
	t.Helper()
	s := NewFrameScanner(r, 0)
	var out []domain.Value
	for s.Scan() {
		v, err := DecodeResponse(s.Bytes())
		require.NoError(t, err)
		out = append(out, v)
	}
	require.NoError(t, s.Err())
	return out
}

var sampleStream = strings.Join([]string{
	`{"response":{"uuid":"4c9b7c3e-2f0a-4f43-9a55-0b3f1c2d9e11"}}`,
	`{"response":{"inputs":{"freq":"a"},"outputs":{"out":"b"}}}`,
	`{"response":{"error":"no such command"}}`,
	`{"response":{"samples":[0,0.5,-1]}}`,
	`{"response":{}}`,
}, "\x00") + "\x00"

func TestScanFrames_ChunkBoundaryIndependent(t *testing.T) {
	whole := scanAll(t, strings.NewReader(sampleStream))
	require.Len(t, whole, 5)

	t.Run("one byte at a time", func(t *testing.T) {
		got := scanAll(t, iotest.OneByteReader(strings.NewReader(sampleStream)))
		assert.Equal(t, whole, got)
	})

	t.Run("random chunks", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			sizes := make([]int, 0, 64)
			for i := 0; i < 64; i++ {
				sizes = append(sizes, 1+rng.Intn(40))
			}
			got := scanAll(t, &chunkReader{data: []byte(sampleStream), sizes: sizes})
			assert.Equal(t, whole, got, "round %d", round)
		}
	})
}

func TestScanFrames_TruncatedTail(t *testing.T) {
	s := NewFrameScanner(strings.NewReader(`{"response":{}}`+"\x00"+`{"resp`), 0)
	require.True(t, s.Scan())
	require.False(t, s.Scan())
	assert.True(t, errors.Is(s.Err(), domain.ErrTruncatedFrame))
}

func TestScanFrames_TooLarge(t *testing.T) {
	big := `{"response":{"x":"` + strings.Repeat("a", 200) + `"}}` + "\x00"
	s := NewFrameScanner(strings.NewReader(big), 64)
	require.False(t, s.Scan())
	err := ScanError(s.Err())
	assert.True(t, errors.Is(err, domain.ErrFrameTooLarge))
	assert.True(t, domain.IsFatal(err))
}

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"simple", []string{"addcom", "sine"}, `{"request":{"args":["addcom","sine"]}}`},
		{"empty", []string{}, `{"request":{"args":[]}}`},
		{"nil", nil, `{"request":{"args":[]}}`},
		{"quoting", []string{`a"b`}, `{"request":{"args":["a\"b"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequest(tt.args)
			require.NoError(t, err)
			require.Equal(t, Delimiter, got[len(got)-1])
			assert.JSONEq(t, tt.want, string(got[:len(got)-1]))
			assert.Equal(t, 1, bytes.Count(got, []byte{Delimiter}))
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("preserves key order and kinds", func(t *testing.T) {
		v, err := DecodeResponse([]byte(`{"response":{"z":1.50,"a":"s","m":{"k":true},"n":null,"l":[1,2]}}`))
		require.NoError(t, err)
		require.Equal(t, domain.KindMapping, v.Kind)
		keys := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			keys = append(keys, f.Key)
		}
		assert.Equal(t, []string{"z", "a", "m", "n", "l"}, keys)

		z, _ := v.Get("z")
		assert.Equal(t, "1.50", z.Text)
		assert.Equal(t, 1.5, z.Num)
		m, _ := v.Get("m")
		k, _ := m.Get("k")
		assert.True(t, k.Bool)
		n, _ := v.Get("n")
		assert.Equal(t, domain.KindNull, n.Kind)
		l, _ := v.Get("l")
		assert.Len(t, l.Items, 2)
	})

	t.Run("error field", func(t *testing.T) {
		v, err := DecodeResponse([]byte(`{"response":{"error":"bad args"}}`))
		require.NoError(t, err)
		msg, ok := v.ErrorText()
		assert.True(t, ok)
		assert.Equal(t, "bad args", msg)
	})

	t.Run("malformed json is fatal", func(t *testing.T) {
		_, err := DecodeResponse([]byte(`{"response":`))
		assert.True(t, errors.Is(err, domain.ErrMalformedFrame))
		assert.True(t, domain.IsFatal(err))
	})

	t.Run("missing response is fatal", func(t *testing.T) {
		_, err := DecodeResponse([]byte(`{"reply":{}}`))
		assert.True(t, errors.Is(err, domain.ErrMissingResponse))
	})

	t.Run("non-object response is fatal", func(t *testing.T) {
		_, err := DecodeResponse([]byte(`{"response":[1]}`))
		assert.True(t, errors.Is(err, domain.ErrMissingResponse))
	})
}
