package domain

import (
	"strconv"
	"strings"
)

// Kind discrimina os nós da árvore de resposta
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Field é um par chave/valor de um Mapping (ordem do documento)
type Field struct {
	Key   string
	Value Value
}

// Value é a árvore tipada produzida pelo decoder.
// Escalares guardam o texto (números no formato original do JSON).
type Value struct {
	Kind   Kind
	Text   string
	Num    float64
	Bool   bool
	Items  []Value
	Fields []Field
}

func Null() Value { return Value{Kind: KindNull} }

func String(s string) Value { return Value{Kind: KindString, Text: s} }

func Number(raw string, n float64) Value { return Value{Kind: KindNumber, Text: raw, Num: n} }

func Bool(b bool) Value { return Value{Kind: KindBool, Text: strconv.FormatBool(b), Bool: b} }

func List(items ...Value) Value { return Value{Kind: KindList, Items: items} }

func Mapping(fields ...Field) Value { return Value{Kind: KindMapping, Fields: fields} }

func (v Value) IsScalar() bool {
	return v.Kind != KindList && v.Kind != KindMapping
}

// Get busca uma chave num Mapping
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMapping {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// ErrorText devolve o campo `error` de uma resposta, se houver
func (v Value) ErrorText() (string, bool) {
	e, ok := v.Get("error")
	if !ok {
		return "", false
	}
	return e.String(), true
}

// String formata escalares; listas e mappings são resumidos
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString, KindNumber, KindBool:
		return v.Text
	case KindList:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Key + ": " + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// StringMap converte um Mapping de escalares em map[string]string
func (v Value) StringMap() map[string]string {
	out := make(map[string]string, len(v.Fields))
	for _, f := range v.Fields {
		if f.Value.IsScalar() {
			out[f.Key] = f.Value.String()
		}
	}
	return out
}
