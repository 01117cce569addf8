// Package events define o barramento onde a sessão publica o que manda e
// recebe do engine, e de onde lê linhas de comando remotas.
package events

import (
	"context"
	"time"
)

// Bus é implementado por events/nats; os testes usam fakes em memória
type Bus interface {
	// Publicação
	Publish(ctx context.Context, subject string, payload []byte) error
	PublishEvent(ctx context.Context, subject string, event interface{}) error

	// Subscrição push (callback)
	Subscribe(subject string, handler Handler) (Subscription, error)

	// Streams
	CreateStream(cfg StreamConfig) error

	Close() error
}

// Handler processa uma mensagem; erro significa sem ack
type Handler func(ctx context.Context, msg Message) error

// Message é uma entrega com ack manual
type Message interface {
	Data() []byte
	Subject() string
	Ack() error
	// Nak pede redelivery, opcionalmente depois de um atraso
	Nak(delay ...time.Duration) error
}

type Subscription interface {
	Unsubscribe() error
}

// StreamConfig descreve um stream persistente (JetStream)
type StreamConfig struct {
	Name      string
	Subjects  []string
	Retention RetentionPolicy
	MaxMsgs   int64
	MaxBytes  int64
	MaxAge    time.Duration
	Storage   StorageType
	Replicas  int
}

type RetentionPolicy int

const (
	RetentionLimits RetentionPolicy = iota
	RetentionWorkQueue
)

type StorageType int

const (
	StorageFile StorageType = iota
	StorageMemory
)

// Subjects publicados por uma sessão, relativos ao prefixo configurado
const (
	SubjectCommandSent     = "command.sent"
	SubjectResponse        = "response"
	SubjectAliasRegistered = "alias.registered"
	SubjectInput           = "input"
)

// Subject monta "<prefix>.<session>.<suffix>"
func Subject(prefix, session, suffix string) string {
	return prefix + "." + session + "." + suffix
}
