// Package correlator casa cada frame de resposta com o handler mais antigo.
//
// O correlator assume alternância estrita request/response; quem garante
// que só existe um comando em voo é o scheduler.
package correlator

import (
	"github.com/diogoX451/synthctl/internal/core/domain"
)

type Correlator struct {
	handlers  []domain.Handler
	reporter  domain.Reporter
	onDrained func() error
}

func New(reporter domain.Reporter, onDrained func() error) *Correlator {
	if onDrained == nil {
		onDrained = func() error { return nil }
	}
	return &Correlator{
		handlers:  make([]domain.Handler, 0),
		reporter:  reporter,
		onDrained: onDrained,
	}
}

// Register enfileira o handler do próximo request
func (c *Correlator) Register(h domain.Handler) {
	if h == nil {
		h = domain.Noop
	}
	c.handlers = append(c.handlers, h)
}

// Pending devolve quantos requests aguardam resposta
func (c *Correlator) Pending() int {
	return len(c.handlers)
}

// Dispatch entrega o payload ao handler mais antigo.
// Respostas com `error` são reportadas e o handler é pulado.
// Erros devolvidos são sempre fatais.
func (c *Correlator) Dispatch(payload domain.Value) error {
	if len(c.handlers) == 0 {
		return domain.WrapProtocol(domain.ErrUnsolicitedResponse, "Correlator", "Dispatch", "match response")
	}
	h := c.handlers[0]
	c.handlers[0] = nil
	c.handlers = c.handlers[1:]

	if msg, ok := payload.ErrorText(); ok {
		c.reporter.Report(msg)
	} else if err := h(payload); err != nil {
		return domain.Wrap(err, "Correlator", "Dispatch", "run handler")
	}

	if len(c.handlers) == 0 {
		return c.onDrained()
	}
	return nil
}
