package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diogoX451/synthctl/internal/events"
	"github.com/diogoX451/synthctl/pkg/types"
	"github.com/nats-io/nats.go"
)

type NATSBus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Verifica interface
var _ events.Bus = (*NATSBus)(nil)

type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Name          string
}

func New(cfg Config) (*NATSBus, error) {
	if cfg.Name == "" {
		cfg.Name = "synthctl"
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Name(cfg.Name),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connection failed: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream init failed: %w", err)
	}

	return &NATSBus{
		conn: conn,
		js:   js,
	}, nil
}

// CreateStream cria stream se não existir
func (n *NATSBus) CreateStream(cfg events.StreamConfig) error {
	storage := nats.FileStorage
	if cfg.Storage == events.StorageMemory {
		storage = nats.MemoryStorage
	}

	retention := nats.LimitsPolicy
	if cfg.Retention == events.RetentionWorkQueue {
		retention = nats.WorkQueuePolicy
	}

	_, err := n.js.AddStream(&nats.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		Retention: retention,
		MaxMsgs:   cfg.MaxMsgs,
		MaxBytes:  cfg.MaxBytes,
		MaxAge:    cfg.MaxAge,
		Storage:   storage,
		Replicas:  cfg.Replicas,
	})

	if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil // Já existe, ok
	}

	return err
}

// SetupSynthStreams cria os streams de eventos e de entrada remota
func (n *NATSBus) SetupSynthStreams(prefix string) error {
	name := StreamName(prefix)

	// Stream: eventos da sessão (comandos, respostas, aliases)
	if err := n.CreateStream(events.StreamConfig{
		Name: name + "_EVENTS",
		Subjects: []string{
			prefix + ".*." + events.SubjectCommandSent,
			prefix + ".*." + events.SubjectResponse,
			prefix + ".*." + events.SubjectAliasRegistered,
		},
		Retention: events.RetentionLimits, // Permite múltiplos consumers (UI)
		MaxMsgs:   100000,
		MaxAge:    24 * time.Hour,
		Storage:   eventsStorage(),
	}); err != nil {
		return fmt.Errorf("events stream: %w", err)
	}

	// Stream: linhas de comando remotas
	if err := n.CreateStream(events.StreamConfig{
		Name:      name + "_INPUT",
		Subjects:  []string{prefix + ".*." + events.SubjectInput},
		Retention: events.RetentionWorkQueue, // Cada linha vai para uma sessão
		MaxMsgs:   10000,
		MaxAge:    time.Hour,
		Storage:   events.StorageMemory,
	}); err != nil {
		return fmt.Errorf("input stream: %w", err)
	}

	return nil
}

// StreamName deriva o nome do stream do prefixo de subjects
func StreamName(prefix string) string {
	return strings.ToUpper(durableFromSubject(prefix))
}

func eventsStorage() events.StorageType {
	switch strings.ToLower(types.Getenv("SYNTH_EVENTS_STORAGE", "memory")) {
	case "file":
		return events.StorageFile
	default:
		return events.StorageMemory
	}
}

// Publish envia mensagem bruta
func (n *NATSBus) Publish(ctx context.Context, subject string, payload []byte) error {
	_, err := n.js.Publish(subject, payload, nats.Context(ctx))
	return err
}

// PublishEvent serializa e envia
func (n *NATSBus) PublishEvent(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.Publish(ctx, subject, data)
}

// Subscribe registra handler push
func (n *NATSBus) Subscribe(subject string, handler events.Handler) (events.Subscription, error) {
	durable := durableFromSubject(subject)
	callback := func(msg *nats.Msg) {
		wrapped := &natsMessage{msg: msg}
		ctx := context.Background()

		// o handler decide entre Ack e Nak; sem nenhum dos dois o
		// JetStream reentrega depois do AckWait
		_ = handler(ctx, wrapped)
	}

	sub, err := n.js.Subscribe(subject, callback, nats.Durable(durable), nats.ManualAck())
	if err != nil {
		return nil, err
	}
	return &natsSubscription{sub: sub}, nil
}

func durableFromSubject(subject string) string {
	var b strings.Builder
	b.Grow(len(subject))
	for _, r := range subject {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Close drena e encerra conexão
func (n *NATSBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// --- Implementações internas ---

type natsMessage struct {
	msg *nats.Msg
}

func (m *natsMessage) Data() []byte {
	return m.msg.Data
}

func (m *natsMessage) Subject() string {
	return m.msg.Subject
}

func (m *natsMessage) Ack() error {
	return m.msg.Ack()
}

func (m *natsMessage) Nak(delay ...time.Duration) error {
	if len(delay) > 0 {
		return m.msg.NakWithDelay(delay[0])
	}
	return m.msg.Nak()
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}
