package store

import (
	"context"
	"fmt"

	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/store"
	"github.com/diogoX451/synthctl/pkg/types"
)

const (
	EntryCommand  = "command"
	EntryResponse = "response"
)

// SessionRepositoryImpl adapta o TranscriptStore para a interface do Core
type SessionRepositoryImpl struct {
	store store.TranscriptStore
}

// Verifica interface
var _ ports.SessionRepository = (*SessionRepositoryImpl)(nil)

func NewSessionRepository(s store.TranscriptStore) *SessionRepositoryImpl {
	return &SessionRepositoryImpl{store: s}
}

func (r *SessionRepositoryImpl) RecordCommand(ctx context.Context, e types.CommandEvent) error {
	entry := types.TranscriptEntry{
		Kind: EntryCommand,
		Seq:  e.Seq,
		Args: e.Args,
		At:   e.SentAt,
	}
	if err := r.store.AppendEntry(ctx, e.SessionID, entry); err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) RecordResponse(ctx context.Context, e types.ResponseEvent) error {
	entry := types.TranscriptEntry{
		Kind:  EntryResponse,
		Seq:   e.Seq,
		Data:  e.Payload,
		Error: e.Error,
		At:    e.ReceivedAt,
	}
	if err := r.store.AppendEntry(ctx, e.SessionID, entry); err != nil {
		return fmt.Errorf("record response: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) RecordAlias(ctx context.Context, e types.AliasEvent) error {
	if err := r.store.SaveAlias(ctx, e.SessionID, e); err != nil {
		return fmt.Errorf("record alias: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) Transcript(ctx context.Context, session types.SessionID) ([]types.TranscriptEntry, error) {
	return r.store.Entries(ctx, session, 0, -1)
}

func (r *SessionRepositoryImpl) Aliases(ctx context.Context, session types.SessionID) ([]types.AliasEvent, error) {
	return r.store.Aliases(ctx, session)
}

func (r *SessionRepositoryImpl) Close() error {
	return r.store.Close()
}
