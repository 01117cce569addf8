package registry

import (
	"fmt"

	"github.com/diogoX451/synthctl/internal/core/domain"
)

// ListPortsVerb é o request sintético do segundo passo
const ListPortsVerb = "ports"

// RegistrationState do fluxo create -> list-ports -> alias
type RegistrationState int

const (
	StateAwaitingCreate RegistrationState = iota
	StateAwaitingPorts
	StateComplete
	StateAbandoned
)

func (s RegistrationState) String() string {
	switch s {
	case StateAwaitingCreate:
		return "awaiting_create"
	case StateAwaitingPorts:
		return "awaiting_ports"
	case StateComplete:
		return "complete"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Registration é a máquina de estados de um alias em construção
type Registration struct {
	name     string
	uuid     string
	state    RegistrationState
	send     domain.Sender
	registry *Registry
}

type RegistrationInfo struct {
	Name  string `json:"name"`
	UUID  string `json:"uuid,omitempty"`
	State string `json:"state"`
}

func (p *Registration) Name() string             { return p.name }
func (p *Registration) State() RegistrationState { return p.state }

func (p *Registration) Info() RegistrationInfo {
	return RegistrationInfo{Name: p.name, UUID: p.uuid, State: p.state.String()}
}

// OnCreated trata a resposta do create: guarda o uuid e pede as portas
func (p *Registration) OnCreated(resp domain.Value) error {
	if p.state != StateAwaitingCreate {
		return fmt.Errorf("registration %s: unexpected create response in state %s", p.name, p.state)
	}
	id, ok := resp.Get("uuid")
	if !ok || id.Kind != domain.KindString || id.Text == "" {
		p.state = StateAbandoned
		delete(p.registry.pending, p.name)
		return domain.WrapProtocol(fmt.Errorf("create response for %s has no uuid", p.name), "Registration", "OnCreated", "read uuid")
	}
	p.uuid = id.Text
	p.state = StateAwaitingPorts
	return p.send.Send([]string{ListPortsVerb, p.uuid}, p.OnPorts)
}

// OnPorts completa o alias com as portas de entrada e saída
func (p *Registration) OnPorts(resp domain.Value) error {
	if p.state != StateAwaitingPorts {
		return fmt.Errorf("registration %s: unexpected ports response in state %s", p.name, p.state)
	}
	alias := Alias{
		Name:    p.name,
		UUID:    p.uuid,
		Inputs:  map[string]string{},
		Outputs: map[string]string{},
	}
	if in, ok := resp.Get("inputs"); ok && in.Kind == domain.KindMapping {
		alias.Inputs = in.StringMap()
	}
	if out, ok := resp.Get("outputs"); ok && out.Kind == domain.KindMapping {
		alias.Outputs = out.StringMap()
	}
	p.state = StateComplete
	p.registry.insert(alias)
	return nil
}
