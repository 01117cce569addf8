// Package protocol implementa o framing NUL-delimitado e o envelope JSON
// trocado com o engine de síntese.
package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Delimiter separa frames no stream
const Delimiter byte = 0

// DefaultMaxFrame cobre respostas de play com alguns segundos de amostras
const DefaultMaxFrame = 64 << 20

// ScanFrames é um bufio.SplitFunc que devolve cada payload entre delimitadores.
// Bytes sem delimitador no EOF são um frame truncado.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, Delimiter); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		if len(data) > 0 {
			return 0, nil, domain.ErrTruncatedFrame
		}
		return 0, nil, nil
	}
	return 0, nil, nil
}

// NewFrameScanner cria um scanner de frames limitado a maxFrame bytes
func NewFrameScanner(r io.Reader, maxFrame int) *bufio.Scanner {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	initial := 64 << 10
	if initial > maxFrame {
		initial = maxFrame
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, initial), maxFrame)
	s.Split(ScanFrames)
	return s
}

// ScanError normaliza erros do scanner para as sentinelas do domínio
func ScanError(err error) error {
	if err == bufio.ErrTooLong {
		err = domain.ErrFrameTooLarge
	}
	return domain.WrapProtocol(err, "FrameScanner", "Scan", "read frame")
}

// EncodeRequest monta {"request":{"args":[...]}} seguido do delimitador
func EncodeRequest(args []string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}
	out, err := sjson.SetBytes([]byte(`{}`), "request.args", args)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return append(out, Delimiter), nil
}

// DecodeResponse valida o frame e devolve o payload de `response`
func DecodeResponse(frame []byte) (domain.Value, error) {
	if !gjson.ValidBytes(frame) {
		return domain.Value{}, domain.WrapProtocol(domain.ErrMalformedFrame, "Codec", "DecodeResponse", fmt.Sprintf("parse frame %q", preview(frame)))
	}
	resp := gjson.GetBytes(frame, "response")
	if !resp.Exists() || !resp.IsObject() {
		return domain.Value{}, domain.WrapProtocol(domain.ErrMissingResponse, "Codec", "DecodeResponse", "read envelope")
	}
	return toValue(resp), nil
}

// toValue percorre o resultado do gjson na ordem do documento
func toValue(r gjson.Result) domain.Value {
	switch r.Type {
	case gjson.Null:
		return domain.Null()
	case gjson.False:
		return domain.Bool(false)
	case gjson.True:
		return domain.Bool(true)
	case gjson.Number:
		return domain.Number(r.Raw, r.Num)
	case gjson.String:
		return domain.String(r.Str)
	}

	if r.IsArray() {
		items := make([]domain.Value, 0)
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, toValue(v))
			return true
		})
		return domain.List(items...)
	}

	fields := make([]domain.Field, 0)
	r.ForEach(func(k, v gjson.Result) bool {
		fields = append(fields, domain.Field{Key: k.String(), Value: toValue(v)})
		return true
	})
	return domain.Mapping(fields...)
}

func preview(frame []byte) string {
	const max = 64
	if len(frame) <= max {
		return string(frame)
	}
	return string(frame[:max]) + "..."
}
