package types

import (
	"encoding/json"
	"time"
)

type SessionID string

// CommandEvent é publicado quando um request é escrito no engine
type CommandEvent struct {
	SessionID SessionID `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Args      []string  `json:"args"`
	SentAt    time.Time `json:"sent_at"`
}

// ResponseEvent é publicado para cada frame de resposta
type ResponseEvent struct {
	SessionID  SessionID       `json:"session_id"`
	Seq        uint64          `json:"seq"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Error      string          `json:"error,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// AliasEvent é publicado quando um alias completa o registro
type AliasEvent struct {
	SessionID    SessionID         `json:"session_id"`
	Name         string            `json:"name"`
	UUID         string            `json:"uuid"`
	Inputs       map[string]string `json:"inputs"`
	Outputs      map[string]string `json:"outputs"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// TranscriptEntry é o registro persistido de um comando e sua resposta
type TranscriptEntry struct {
	Kind  string          `json:"kind"` // "command" ou "response"
	Seq   uint64          `json:"seq"`
	Args  []string        `json:"args,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	At    time.Time       `json:"at"`
}

// RemoteLine é uma linha de comando recebida pelo bus
type RemoteLine struct {
	Line   string `json:"line"`
	Origin string `json:"origin,omitempty"`
}
