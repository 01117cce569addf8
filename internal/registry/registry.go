// Package registry mapeia nomes escolhidos pelo usuário para os
// identificadores atribuídos pelo engine (componentes e suas portas).
package registry

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/diogoX451/synthctl/internal/core/domain"
)

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	portRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)$`)
)

// IsIdentifier valida a sintaxe de um nome de alias
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// Alias é imutável depois de inserido
type Alias struct {
	Name    string            `json:"name"`
	UUID    string            `json:"uuid"`
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

type Registry struct {
	aliases map[string]Alias
	// uuid -> anotação ("osc1", "osc1.out")
	reverse map[string]string
	pending map[string]*Registration

	onRegistered func(Alias)
}

// New cria o registry; onRegistered (opcional) é chamado a cada alias completo
func New(onRegistered func(Alias)) *Registry {
	if onRegistered == nil {
		onRegistered = func(Alias) {}
	}
	return &Registry{
		aliases:      make(map[string]Alias),
		reverse:      make(map[string]string),
		pending:      make(map[string]*Registration),
		onRegistered: onRegistered,
	}
}

func (r *Registry) Has(name string) bool {
	_, ok := r.aliases[name]
	return ok
}

func (r *Registry) Get(name string) (Alias, bool) {
	a, ok := r.aliases[name]
	return a, ok
}

func (r *Registry) Len() int {
	return len(r.aliases)
}

// ResolveComponent troca `name` pelo uuid do componente, se existir
func (r *Registry) ResolveComponent(token string) string {
	if !identRe.MatchString(token) {
		return token
	}
	if a, ok := r.aliases[token]; ok {
		return a.UUID
	}
	return token
}

// ResolveInputPort troca `name.port` pelo uuid da porta de entrada
func (r *Registry) ResolveInputPort(token string) string {
	return r.resolvePort(token, func(a Alias) map[string]string { return a.Inputs })
}

// ResolveOutputPort troca `name.port` pelo uuid da porta de saída
func (r *Registry) ResolveOutputPort(token string) string {
	return r.resolvePort(token, func(a Alias) map[string]string { return a.Outputs })
}

func (r *Registry) resolvePort(token string, ports func(Alias) map[string]string) string {
	m := portRe.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	a, ok := r.aliases[m[1]]
	if !ok {
		return token
	}
	if id, ok := ports(a)[m[2]]; ok {
		return id
	}
	return token
}

// Lookup devolve a anotação de um uuid conhecido (somente leitura)
func (r *Registry) Lookup(uuid string) (string, bool) {
	name, ok := r.reverse[uuid]
	return name, ok
}

// Aliases devolve uma cópia ordenada por nome
func (r *Registry) Aliases() []Alias {
	out := make([]Alias, 0, len(r.aliases))
	for _, a := range r.aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Pending lista registros ainda não concluídos
func (r *Registry) Pending() []RegistrationInfo {
	out := make([]RegistrationInfo, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Begin inicia o registro de `name`. Nomes já definidos são rejeitados.
// Um registro pendente anterior (engine respondeu com erro) é abandonado.
func (r *Registry) Begin(name string, send domain.Sender) (*Registration, error) {
	if !identRe.MatchString(name) {
		return nil, domain.WrapInvalid(fmt.Errorf("invalid alias name %q", name), "Registry", "Begin", "validate name")
	}
	if r.Has(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNameDefined, name)
	}
	if old, ok := r.pending[name]; ok {
		old.state = StateAbandoned
	}
	reg := &Registration{
		name:     name,
		state:    StateAwaitingCreate,
		send:     send,
		registry: r,
	}
	r.pending[name] = reg
	return reg, nil
}

// AbandonPending descarta registros sem request em voo. Chamado quando o
// correlator esvazia: um create ou ports respondido com `error` nunca
// chega ao handler e ficaria pendente para sempre.
func (r *Registry) AbandonPending() []string {
	if len(r.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.pending))
	for name, p := range r.pending {
		p.state = StateAbandoned
		delete(r.pending, name)
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) insert(a Alias) {
	r.aliases[a.Name] = a
	r.reverse[a.UUID] = a.Name
	for port, id := range a.Inputs {
		r.reverse[id] = a.Name + "." + port
	}
	for port, id := range a.Outputs {
		// saídas vencem entradas se o engine reutilizar um id
		r.reverse[id] = a.Name + "." + port
	}
	delete(r.pending, a.Name)
	r.onRegistered(a)
}

// Annotate devolve "uuid (alias)" quando o uuid é conhecido
func (r *Registry) Annotate(uuid string) string {
	if name, ok := r.reverse[uuid]; ok {
		return uuid + " (" + name + ")"
	}
	return uuid
}
