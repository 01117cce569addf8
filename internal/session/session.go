// Package session é dona de todo o estado do pipeline (fila, registry,
// correlator) e o atualiza numa única goroutine.
package session

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/correlator"
	"github.com/diogoX451/synthctl/internal/input"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/diogoX451/synthctl/internal/metrics"
	"github.com/diogoX451/synthctl/internal/protocol"
	"github.com/diogoX451/synthctl/internal/registry"
	"github.com/diogoX451/synthctl/internal/render"
	"github.com/diogoX451/synthctl/internal/rules"
	"github.com/diogoX451/synthctl/internal/scheduler"
	"github.com/diogoX451/synthctl/pkg/types"
)

// ErrClosed é devolvido por Submit/Snapshot depois que Run terminou
var ErrClosed = errors.New("session closed")

// DefaultSinkName é o primeiro argumento de `play` que vai para o sink local
const DefaultSinkName = "speaker"

type Options struct {
	ID        types.SessionID
	Transport ports.Transport
	Sink      ports.Sink
	SinkName  string
	Output    io.Writer
	Observer  ports.Observer
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
	// ExtraRules são aplicadas depois das regras padrão
	ExtraRules []rules.Rule
}

type Session struct {
	id        types.SessionID
	transport ports.Transport
	obs       ports.Observer
	metrics   *metrics.Metrics
	log       *logging.Logger

	registry *registry.Registry
	corr     *correlator.Correlator
	sched    *scheduler.Scheduler
	table    *rules.Table
	renderer *render.Renderer

	sentSeq uint64
	recvSeq uint64

	remote  chan string
	queries chan chan Snapshot
	done    chan struct{}
}

// Snapshot é a visão somente leitura usada pela API de status
type Snapshot struct {
	SessionID     types.SessionID             `json:"session_id"`
	Scheduler     scheduler.Status            `json:"scheduler"`
	Pending       int                         `json:"pending_responses"`
	Aliases       []registry.Alias            `json:"aliases"`
	Registrations []registry.RegistrationInfo `json:"registrations"`
	Rules         []string                    `json:"rules"`
}

func New(opts Options) (*Session, error) {
	if opts.Transport == nil {
		return nil, errors.New("session: transport is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("session: sink is required")
	}
	if opts.SinkName == "" {
		opts.SinkName = DefaultSinkName
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Observer == nil {
		opts.Observer = ports.NopObserver{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	s := &Session{
		id:        opts.ID,
		transport: opts.Transport,
		obs:       opts.Observer,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		remote:    make(chan string),
		queries:   make(chan chan Snapshot),
		done:      make(chan struct{}),
	}

	s.registry = registry.New(s.aliasRegistered)
	s.renderer = render.New(opts.Output, s.registry)

	engineErrors := domain.ReporterFunc(func(msg string) {
		s.metrics.EngineErrors.Inc()
		s.renderer.Report(msg)
	})
	rejections := domain.ReporterFunc(func(msg string) {
		s.metrics.LocalRejections.Inc()
		s.log.Debugf("command rejected: %s", msg)
		s.renderer.Report(msg)
	})

	sender := domain.SenderFunc(s.send)
	s.corr = correlator.New(engineErrors, s.drained)

	s.table = rules.NewTable()
	err := rules.RegisterBuiltins(s.table, rules.Deps{
		Registry: s.registry,
		Sender:   sender,
		Reporter: rejections,
		Sink:     opts.Sink,
		SinkName: opts.SinkName,
		OnPlayed: func(n int) { s.metrics.SamplesPlayed.Add(float64(n)) },
	})
	if err != nil {
		return nil, err
	}
	for _, r := range opts.ExtraRules {
		if err := s.table.Register(r); err != nil {
			return nil, err
		}
	}

	s.sched = scheduler.New(s.table, sender, s.renderer.Handler)
	return s, nil
}

func (s *Session) ID() types.SessionID { return s.id }

// Run processa linhas locais, linhas remotas e frames até a entrada acabar
// e o último comando drenar. lines fechado é o fim da entrada.
// Qualquer erro devolvido é fatal.
func (s *Session) Run(ctx context.Context, lines <-chan string) error {
	defer close(s.done)

	frames := s.transport.Frames()
	for !s.sched.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				lines = nil
				s.sched.EndOfInput()
				s.log.Debugf("end of input session=%s", s.id)
				continue
			}
			if err := s.enqueue(line); err != nil {
				return err
			}

		case line := <-s.remote:
			s.metrics.RemoteLines.Inc()
			if err := s.enqueue(line); err != nil {
				return err
			}

		case f, ok := <-frames:
			if !ok {
				return domain.WrapProtocol(domain.ErrEngineExited, "Session", "Run", "read frames")
			}
			if f.Err != nil {
				return f.Err
			}
			if err := s.receive(f); err != nil {
				return err
			}

		case reply := <-s.queries:
			reply <- s.snapshot()
		}
	}
	s.log.Infof("session finished session=%s sent=%d", s.id, s.sentSeq)
	return nil
}

// Submit enfileira uma linha vinda de fora (bus). Bloqueia até a sessão aceitar.
func (s *Session) Submit(ctx context.Context, line string) error {
	select {
	case s.remote <- line:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot pede uma foto do estado à goroutine da sessão
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case s.queries <- reply:
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Done fecha quando Run retorna
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) enqueue(line string) error {
	s.sched.Enqueue(input.Tokenize(line))
	defer s.updateGauges()
	return s.sched.DrainIfIdle()
}

// send registra o handler antes de escrever: a resposta não pode chegar
// sem dono
func (s *Session) send(args []string, onSuccess domain.Handler) error {
	frame, err := protocol.EncodeRequest(args)
	if err != nil {
		return domain.WrapProtocol(err, "Session", "send", "encode request")
	}
	s.corr.Register(onSuccess)
	s.sentSeq++
	if err := s.transport.Send(frame); err != nil {
		return err
	}
	s.log.Debugf("request sent seq=%d args=%v", s.sentSeq, args)

	s.metrics.RequestsSent.Inc()
	s.obs.CommandSent(types.CommandEvent{
		SessionID: s.id,
		Seq:       s.sentSeq,
		Args:      args,
		SentAt:    time.Now(),
	})
	return nil
}

func (s *Session) receive(f ports.Frame) error {
	s.recvSeq++
	s.metrics.ResponsesReceived.Inc()

	ev := types.ResponseEvent{
		SessionID:  s.id,
		Seq:        s.recvSeq,
		Payload:    f.Raw,
		ReceivedAt: time.Now(),
	}
	if msg, ok := f.Payload.ErrorText(); ok {
		ev.Error = msg
	}
	s.obs.ResponseReceived(ev)

	defer s.updateGauges()
	return s.corr.Dispatch(f.Payload)
}

// drained roda quando não há request em voo
func (s *Session) drained() error {
	for _, name := range s.registry.AbandonPending() {
		s.log.Infof("alias registration abandoned name=%s", name)
	}
	return s.sched.Drained()
}

func (s *Session) aliasRegistered(a registry.Alias) {
	s.metrics.AliasesRegistered.Inc()
	s.log.Infof("alias registered name=%s uuid=%s", a.Name, a.UUID)
	s.obs.AliasRegistered(types.AliasEvent{
		SessionID:    s.id,
		Name:         a.Name,
		UUID:         a.UUID,
		Inputs:       a.Inputs,
		Outputs:      a.Outputs,
		RegisteredAt: time.Now(),
	})
}

func (s *Session) updateGauges() {
	s.metrics.QueueDepth.Set(float64(s.sched.Queued()))
	s.metrics.InFlight.Set(float64(s.corr.Pending()))
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		SessionID:     s.id,
		Scheduler:     s.sched.Status(),
		Pending:       s.corr.Pending(),
		Aliases:       s.registry.Aliases(),
		Registrations: s.registry.Pending(),
		Rules:         s.table.Names(),
	}
}
