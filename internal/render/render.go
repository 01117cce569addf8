// Package render formata respostas do engine como texto indentado,
// anotando identificadores conhecidos com o nome do alias.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/google/uuid"
)

const (
	indentStep = "  "
	// listas maiores são resumidas
	maxInlineItems = 8
)

var idToken = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// Lookup resolve um identificador do engine para o nome do alias
type Lookup interface {
	Lookup(id string) (string, bool)
}

type Renderer struct {
	out    io.Writer
	lookup Lookup
}

func New(out io.Writer, lookup Lookup) *Renderer {
	return &Renderer{out: out, lookup: lookup}
}

// Handler devolve o handler padrão de sucesso: imprimir a resposta
func (r *Renderer) Handler() domain.Handler {
	return r.Render
}

// Render escreve a resposta; nunca altera o registry
func (r *Renderer) Render(v domain.Value) error {
	var b strings.Builder
	r.write(&b, "", v)
	if b.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Report imprime mensagens de erro e rejeições locais no mesmo canal
func (r *Renderer) Report(msg string) {
	fmt.Fprintln(r.out, r.Annotate(msg))
}

func (r *Renderer) write(b *strings.Builder, indent string, v domain.Value) {
	switch v.Kind {
	case domain.KindMapping:
		for _, f := range v.Fields {
			r.field(b, indent, f.Key, f.Value)
		}
	case domain.KindList:
		for i, it := range v.Items {
			r.field(b, indent, strconv.Itoa(i), it)
		}
	default:
		b.WriteString(indent + r.Annotate(v.String()) + "\n")
	}
}

func (r *Renderer) field(b *strings.Builder, indent, key string, v domain.Value) {
	switch {
	case v.Kind == domain.KindMapping:
		b.WriteString(indent + key + ":\n")
		r.write(b, indent+indentStep, v)
	case v.Kind == domain.KindList && !scalarList(v):
		b.WriteString(indent + key + ":\n")
		r.write(b, indent+indentStep, v)
	case v.Kind == domain.KindList:
		b.WriteString(indent + key + ": " + r.inlineList(v) + "\n")
	default:
		b.WriteString(indent + key + ": " + r.Annotate(v.String()) + "\n")
	}
}

func (r *Renderer) inlineList(v domain.Value) string {
	if len(v.Items) > maxInlineItems {
		return fmt.Sprintf("[%d items]", len(v.Items))
	}
	parts := make([]string, len(v.Items))
	for i, it := range v.Items {
		parts[i] = r.Annotate(it.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func scalarList(v domain.Value) bool {
	for _, it := range v.Items {
		if !it.IsScalar() {
			return false
		}
	}
	return true
}

// Annotate acrescenta " (alias)" depois de cada identificador conhecido
func (r *Renderer) Annotate(s string) string {
	if r.lookup == nil {
		return s
	}
	return idToken.ReplaceAllStringFunc(s, func(tok string) string {
		if _, err := uuid.Parse(tok); err != nil {
			return tok
		}
		if name, ok := r.lookup.Lookup(tok); ok {
			return tok + " (" + name + ")"
		}
		return tok
	})
}
