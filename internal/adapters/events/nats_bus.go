package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/events"
	"github.com/diogoX451/synthctl/pkg/types"
)

// EventBusImpl adapta o Bus para a interface do Core
type EventBusImpl struct {
	bus    events.Bus
	prefix string
	subs   []events.Subscription
}

var _ ports.EventBus = (*EventBusImpl)(nil)

func NewEventBus(bus events.Bus, prefix string) *EventBusImpl {
	if prefix == "" {
		prefix = "synth"
	}
	return &EventBusImpl{bus: bus, prefix: prefix}
}

func (e *EventBusImpl) subject(session types.SessionID, suffix string) string {
	return events.Subject(e.prefix, string(session), suffix)
}

func (e *EventBusImpl) PublishCommand(ctx context.Context, ev types.CommandEvent) error {
	return e.bus.PublishEvent(ctx, e.subject(ev.SessionID, events.SubjectCommandSent), ev)
}

func (e *EventBusImpl) PublishResponse(ctx context.Context, ev types.ResponseEvent) error {
	return e.bus.PublishEvent(ctx, e.subject(ev.SessionID, events.SubjectResponse), ev)
}

func (e *EventBusImpl) PublishAlias(ctx context.Context, ev types.AliasEvent) error {
	return e.bus.PublishEvent(ctx, e.subject(ev.SessionID, events.SubjectAliasRegistered), ev)
}

// InputRetryDelay é o atraso da redelivery de uma linha que a sessão recusou
const InputRetryDelay = 2 * time.Second

// PublishInput envia uma linha para a sessão que aceita entrada remota
func (e *EventBusImpl) PublishInput(ctx context.Context, session types.SessionID, line types.RemoteLine) error {
	return e.bus.PublishEvent(ctx, e.subject(session, events.SubjectInput), line)
}

// SubscribeInput entrega linhas remotas; sem ack a mensagem é reentregue
func (e *EventBusImpl) SubscribeInput(ctx context.Context, session types.SessionID, handler ports.RemoteLineHandler) error {
	sub, err := e.bus.Subscribe(e.subject(session, events.SubjectInput), func(_ context.Context, msg events.Message) error {
		var line types.RemoteLine
		if err := json.Unmarshal(msg.Data(), &line); err != nil {
			// payload inválido não volta: ack e descarta
			_ = msg.Ack()
			return fmt.Errorf("decode remote line: %w", err)
		}

		if err := handler(ctx, line); err != nil {
			// sessão ocupada ou encerrada: devolve para outra tentativa
			_ = msg.Nak(InputRetryDelay)
			return err
		}
		return msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("subscribe input: %w", err)
	}
	e.subs = append(e.subs, sub)
	return nil
}

func (e *EventBusImpl) Close() error {
	for _, s := range e.subs {
		_ = s.Unsubscribe()
	}
	return e.bus.Close()
}
