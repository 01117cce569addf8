package store

import (
	"context"
	"time"

	"github.com/diogoX451/synthctl/pkg/types"
)

type TranscriptStore interface {
	// Transcript (lista ordenada por chegada)
	AppendEntry(ctx context.Context, session types.SessionID, entry types.TranscriptEntry) error
	Entries(ctx context.Context, session types.SessionID, start, stop int64) ([]types.TranscriptEntry, error)

	// Aliases por nome
	SaveAlias(ctx context.Context, session types.SessionID, alias types.AliasEvent) error
	Aliases(ctx context.Context, session types.SessionID) ([]types.AliasEvent, error)

	// Listagem
	ListSessions(ctx context.Context) ([]types.SessionID, error)

	// Cleanup
	SetTTL(ctx context.Context, session types.SessionID, ttl time.Duration) error
	DeleteSession(ctx context.Context, session types.SessionID) error

	Close() error
}
