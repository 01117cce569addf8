// Package rules reescreve comandos antes do envio.
//
// Cada regra é um par (predicado, transformação). Todas as regras cujo
// predicado casa são aplicadas, na ordem de registro, cada uma recebendo o
// comando já reescrito pela anterior.
package rules

import (
	"fmt"

	"github.com/diogoX451/synthctl/internal/core/domain"
)

// Rule é imutável e registrada uma vez no startup
type Rule interface {
	Name() string
	Matches(cmd domain.Command) bool
	Apply(cmd domain.Command) domain.Command
}

type Table struct {
	rules []Rule
	names map[string]bool
}

func NewTable() *Table {
	return &Table{names: make(map[string]bool)}
}

func (t *Table) Register(rule Rule) error {
	if rule == nil {
		return fmt.Errorf("rule required")
	}
	if rule.Name() == "" {
		return fmt.Errorf("rule name required")
	}
	if t.names[rule.Name()] {
		return fmt.Errorf("rule already exists: %s", rule.Name())
	}
	t.names[rule.Name()] = true
	t.rules = append(t.rules, rule)
	return nil
}

// Names lista as regras na ordem de aplicação
func (t *Table) Names() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Name()
	}
	return out
}

// Rewrite aplica todas as regras que casam, em ordem
func (t *Table) Rewrite(cmd domain.Command) domain.Command {
	for _, r := range t.rules {
		if r.Matches(cmd) {
			cmd = r.Apply(cmd)
		}
	}
	return cmd
}

// Func permite declarar regras sem um tipo dedicado
type Func struct {
	RuleName string
	Trigger  func(domain.Command) bool
	Rewrite  func(domain.Command) domain.Command
}

func (f Func) Name() string                            { return f.RuleName }
func (f Func) Matches(cmd domain.Command) bool         { return f.Trigger(cmd) }
func (f Func) Apply(cmd domain.Command) domain.Command { return f.Rewrite(cmd) }

// reject transforma o comando num no-op e reporta o motivo
func reject(reporter domain.Reporter, err error) domain.Command {
	reporter.Report(err.Error())
	return domain.Command{Args: []string{}, OnSuccess: domain.Noop}
}

func cloneArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	return out
}
