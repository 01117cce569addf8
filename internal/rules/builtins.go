package rules

import (
	"fmt"
	"strconv"

	"github.com/diogoX451/synthctl/internal/audio"
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/registry"
)

const (
	VerbAddComponent = "addcom"
	VerbConnect      = "connect"
	VerbCall         = "call"
	VerbPlay         = "play"
	KeywordAs        = "as"
)

// AddAlias: `addcom <tipo> as <nome>`
type AddAlias struct {
	Registry *registry.Registry
	Sender   domain.Sender
	Reporter domain.Reporter
}

func (AddAlias) Name() string { return "add_alias" }

func (AddAlias) Matches(cmd domain.Command) bool {
	return len(cmd.Args) == 4 &&
		cmd.Args[0] == VerbAddComponent &&
		cmd.Args[2] == KeywordAs &&
		registry.IsIdentifier(cmd.Args[3])
}

// Apply remove `as <nome>` (o engine nunca vê o alias) e instala o registro
func (r AddAlias) Apply(cmd domain.Command) domain.Command {
	reg, err := r.Registry.Begin(cmd.Args[3], r.Sender)
	if err != nil {
		return reject(r.Reporter, err)
	}
	return domain.Command{
		Args:      cloneArgs(cmd.Args[:2]),
		OnSuccess: reg.OnCreated,
	}
}

// Connect: `connect <saida> <entrada> ...`
type Connect struct {
	Registry *registry.Registry
}

func (Connect) Name() string { return "connect" }

func (Connect) Matches(cmd domain.Command) bool {
	return len(cmd.Args) >= 3 && cmd.Args[0] == VerbConnect
}

func (r Connect) Apply(cmd domain.Command) domain.Command {
	args := cloneArgs(cmd.Args)
	args[1] = r.Registry.ResolveOutputPort(args[1])
	args[2] = r.Registry.ResolveInputPort(args[2])
	return domain.Command{Args: args, OnSuccess: cmd.OnSuccess}
}

// Call: `call <componente> ...`
type Call struct {
	Registry *registry.Registry
}

func (Call) Name() string { return "call" }

func (Call) Matches(cmd domain.Command) bool {
	return len(cmd.Args) >= 2 && cmd.Args[0] == VerbCall
}

func (r Call) Apply(cmd domain.Command) domain.Command {
	args := cloneArgs(cmd.Args)
	args[1] = r.Registry.ResolveComponent(args[1])
	return domain.Command{Args: args, OnSuccess: cmd.OnSuccess}
}

// Play: `play <sink> <segundos> ...`
type Play struct {
	Sink     ports.Sink
	SinkName string
	Reporter domain.Reporter
	// OnPlayed recebe o número de amostras escritas no sink
	OnPlayed func(samples int)
}

func (Play) Name() string { return "play" }

func (r Play) Matches(cmd domain.Command) bool {
	return len(cmd.Args) >= 3 && cmd.Args[0] == VerbPlay && cmd.Args[1] == r.SinkName
}

// Apply troca a duração por número de amostras e instala o handler que
// converte a resposta em PCM para o sink
func (r Play) Apply(cmd domain.Command) domain.Command {
	if rate := r.Sink.SampleRate(); rate != audio.SampleRate {
		return reject(r.Reporter, fmt.Errorf("%w: %d (supported: %d)", domain.ErrUnsupportedSampleRate, rate, audio.SampleRate))
	}
	seconds, err := strconv.ParseFloat(cmd.Args[2], 64)
	if err != nil || !audio.ValidDuration(seconds, audio.SampleRate) {
		return reject(r.Reporter, fmt.Errorf("%w: %q", domain.ErrInvalidDuration, cmd.Args[2]))
	}

	args := cloneArgs(cmd.Args)
	args[2] = strconv.Itoa(audio.DurationToSamples(seconds, audio.SampleRate))
	return domain.Command{Args: args, OnSuccess: r.handle}
}

func (r Play) handle(resp domain.Value) error {
	list, ok := resp.Get("samples")
	if !ok || list.Kind != domain.KindList {
		r.Reporter.Report("play: response carried no samples")
		return nil
	}
	samples := make([]float64, 0, len(list.Items))
	for _, it := range list.Items {
		if it.Kind != domain.KindNumber {
			r.Reporter.Report(fmt.Sprintf("play: non-numeric sample %q", it.String()))
			return nil
		}
		samples = append(samples, it.Num)
	}
	if err := r.Sink.Write(audio.EncodePCM(samples)); err != nil {
		return fmt.Errorf("write to sink: %w", err)
	}
	if r.OnPlayed != nil {
		r.OnPlayed(len(samples))
	}
	return nil
}

// Deps reúne o que as regras padrão precisam
type Deps struct {
	Registry *registry.Registry
	Sender   domain.Sender
	Reporter domain.Reporter
	Sink     ports.Sink
	SinkName string
	OnPlayed func(samples int)
}

// RegisterBuiltins registra as regras padrão na ordem de aplicação
func RegisterBuiltins(t *Table, d Deps) error {
	builtins := []Rule{
		AddAlias{Registry: d.Registry, Sender: d.Sender, Reporter: d.Reporter},
		Connect{Registry: d.Registry},
		Call{Registry: d.Registry},
		Play{Sink: d.Sink, SinkName: d.SinkName, Reporter: d.Reporter, OnPlayed: d.OnPlayed},
	}
	for _, r := range builtins {
		if err := t.Register(r); err != nil {
			return err
		}
	}
	return nil
}
