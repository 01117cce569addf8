// Package input lê linhas de comando do script e do terminal.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommentPrefix inicia um comentário que vai até o fim da linha
const CommentPrefix = "#"

// Tokenize remove o comentário e separa por espaços.
// Linha vazia devolve args vazio (não nil): ainda é um comando.
func Tokenize(line string) []string {
	if i := strings.Index(line, CommentPrefix); i >= 0 {
		line = line[:i]
	}
	args := strings.Fields(line)
	if args == nil {
		args = []string{}
	}
	return args
}

// Source é uma origem de linhas. Prompt só é escrito se PromptOut != nil.
type Source struct {
	Name      string
	Reader    io.Reader
	Prompt    string
	PromptOut io.Writer
	closer    io.Closer
}

// File abre um script; as linhas são enviadas antes do terminal
func File(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to open script %s: %w", path, err)
	}
	return Source{Name: path, Reader: f, closer: f}, nil
}

// Terminal lê de r escrevendo o prompt em out antes de cada linha
func Terminal(r io.Reader, out io.Writer, prompt string) Source {
	return Source{Name: "stdin", Reader: r, Prompt: prompt, PromptOut: out}
}

// Feed envia as linhas das fontes em ordem para out e fecha out no fim.
// O canal fechado é o fim da entrada para a sessão.
func Feed(ctx context.Context, out chan<- string, sources ...Source) error {
	defer close(out)
	for _, src := range sources {
		err := feedOne(ctx, out, src)
		if src.closer != nil {
			src.closer.Close()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func feedOne(ctx context.Context, out chan<- string, src Source) error {
	s := bufio.NewScanner(src.Reader)
	for {
		if src.PromptOut != nil && src.Prompt != "" {
			fmt.Fprint(src.PromptOut, src.Prompt)
		}
		if !s.Scan() {
			break
		}
		select {
		case out <- s.Text():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("read %s: %w", src.Name, err)
	}
	return nil
}
