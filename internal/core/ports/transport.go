package ports

import (
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/pkg/types"
)

// Frame é um frame de resposta já decodificado.
// Err != nil encerra o stream (erro de protocolo ou engine morto).
type Frame struct {
	Payload domain.Value
	Raw     []byte
	Err     error
}

// Transport é o stream duplex ordenado com o engine
type Transport interface {
	Send(frame []byte) error
	Frames() <-chan Frame
	Close() error
}

// Observer recebe eventos da sessão (journal, bus, store).
// Implementações não podem bloquear a goroutine da sessão.
type Observer interface {
	CommandSent(e types.CommandEvent)
	ResponseReceived(e types.ResponseEvent)
	AliasRegistered(e types.AliasEvent)
}

// NopObserver ignora todos os eventos
type NopObserver struct{}

func (NopObserver) CommandSent(types.CommandEvent)       {}
func (NopObserver) ResponseReceived(types.ResponseEvent) {}
func (NopObserver) AliasRegistered(types.AliasEvent)     {}
