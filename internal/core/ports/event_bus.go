package ports

import (
	"context"

	"github.com/diogoX451/synthctl/pkg/types"
)

// EventBus abstração de mensageria da sessão
type EventBus interface {
	// Publicação
	PublishCommand(ctx context.Context, e types.CommandEvent) error
	PublishResponse(ctx context.Context, e types.ResponseEvent) error
	PublishAlias(ctx context.Context, e types.AliasEvent) error

	// Entrada remota
	SubscribeInput(ctx context.Context, session types.SessionID, handler RemoteLineHandler) error

	Close() error
}

// RemoteLineHandler recebe uma linha publicada no subject de entrada
type RemoteLineHandler func(ctx context.Context, line types.RemoteLine) error
