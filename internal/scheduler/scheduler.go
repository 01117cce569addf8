// Package scheduler envia um comando por vez ao engine.
//
// O pipeline fica ocupado do envio até o correlator drenar todos os handlers
// registrados durante o processamento daquele comando (inclusive requests de
// follow-up, como o passo de portas do registro de alias). A fila não tem
// limite: a entrada nunca é segurada.
package scheduler

import (
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/rules"
)

type Scheduler struct {
	queue   [][]string
	busy    bool
	eof     bool
	sent    uint64
	rules   *rules.Table
	sender  domain.Sender
	handler func() domain.Handler
}

// Status é uma foto do estado do scheduler
type Status struct {
	Queued     int    `json:"queued"`
	Busy       bool   `json:"busy"`
	EndOfInput bool   `json:"end_of_input"`
	Sent       uint64 `json:"sent"`
	Done       bool   `json:"done"`
}

// New recebe a tabela de regras, o sender e a fábrica do handler padrão
// (normalmente o renderer) usado quando nenhuma regra troca o handler.
func New(table *rules.Table, sender domain.Sender, defaultHandler func() domain.Handler) *Scheduler {
	if defaultHandler == nil {
		defaultHandler = func() domain.Handler { return domain.Noop }
	}
	return &Scheduler{
		queue:   make([][]string, 0),
		rules:   table,
		sender:  sender,
		handler: defaultHandler,
	}
}

// Enqueue adiciona um comando bruto ao fim da fila
func (s *Scheduler) Enqueue(args []string) {
	if args == nil {
		args = []string{}
	}
	s.queue = append(s.queue, args)
}

// DrainIfIdle envia o próximo comando se o pipeline estiver ocioso
func (s *Scheduler) DrainIfIdle() error {
	for !s.busy && len(s.queue) > 0 {
		args := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]

		cmd := s.rules.Rewrite(domain.Command{Args: args, OnSuccess: s.handler()})
		s.busy = true
		s.sent++
		if err := s.sender.Send(cmd.Args, cmd.OnSuccess); err != nil {
			return domain.Wrap(err, "Scheduler", "DrainIfIdle", "send command")
		}
	}
	return nil
}

// Drained é o evento do correlator: o ciclo do comando atual terminou
func (s *Scheduler) Drained() error {
	s.busy = false
	return s.DrainIfIdle()
}

// EndOfInput marca o fim da entrada; a fila restante ainda é enviada
func (s *Scheduler) EndOfInput() {
	s.eof = true
}

// Done indica que a entrada acabou e não há nada na fila nem em voo
func (s *Scheduler) Done() bool {
	return s.eof && !s.busy && len(s.queue) == 0
}

func (s *Scheduler) Busy() bool { return s.busy }

func (s *Scheduler) Queued() int { return len(s.queue) }

func (s *Scheduler) Status() Status {
	return Status{
		Queued:     len(s.queue),
		Busy:       s.busy,
		EndOfInput: s.eof,
		Sent:       s.sent,
		Done:       s.Done(),
	}
}
