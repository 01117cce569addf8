package ports

import (
	"context"

	"github.com/diogoX451/synthctl/pkg/types"
)

// SessionRepository abstração de persistência do transcript
// Implementado em infra (Redis), usado pelo journal
type SessionRepository interface {
	RecordCommand(ctx context.Context, e types.CommandEvent) error
	RecordResponse(ctx context.Context, e types.ResponseEvent) error
	RecordAlias(ctx context.Context, e types.AliasEvent) error

	Transcript(ctx context.Context, session types.SessionID) ([]types.TranscriptEntry, error)
	Aliases(ctx context.Context, session types.SessionID) ([]types.AliasEvent, error)

	Close() error
}
