package rules

import (
	"encoding/binary"
	"testing"

	"github.com/diogoX451/synthctl/internal/audio"
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reports []string

func (r *reports) Report(msg string) { *r = append(*r, msg) }

type followUps struct {
	calls [][]string
	hs    []domain.Handler
}

func (f *followUps) Send(args []string, h domain.Handler) error {
	f.calls = append(f.calls, args)
	f.hs = append(f.hs, h)
	return nil
}

type fixture struct {
	table    *Table
	registry *registry.Registry
	sender   *followUps
	reports  *reports
	sink     *audio.MemorySink
	played   int
}

func newFixture(t *testing.T, rate int) *fixture {
	t.Helper()
	f := &fixture{
		table:    NewTable(),
		registry: registry.New(nil),
		sender:   &followUps{},
		reports:  &reports{},
		sink:     audio.NewMemorySink(rate),
	}
	require.NoError(t, RegisterBuiltins(f.table, Deps{
		Registry: f.registry,
		Sender:   f.sender,
		Reporter: f.reports,
		Sink:     f.sink,
		SinkName: "speaker",
		OnPlayed: func(n int) { f.played += n },
	}))
	return f
}

func (f *fixture) rewrite(args ...string) domain.Command {
	return f.table.Rewrite(domain.Command{Args: args, OnSuccess: domain.Noop})
}

// define executa o fluxo completo de addcom ... as name
func (f *fixture) define(t *testing.T, name, id string, in, out map[string]string) {
	t.Helper()
	cmd := f.rewrite("addcom", "sine", "as", name)
	require.Equal(t, []string{"addcom", "sine"}, cmd.Args)
	require.NoError(t, cmd.OnSuccess(domain.Mapping(domain.Field{Key: "uuid", Value: domain.String(id)})))
	last := len(f.sender.hs) - 1
	require.NoError(t, f.sender.hs[last](domain.Mapping(
		domain.Field{Key: "inputs", Value: stringMapping(in)},
		domain.Field{Key: "outputs", Value: stringMapping(out)},
	)))
}

func stringMapping(m map[string]string) domain.Value {
	fields := make([]domain.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, domain.Field{Key: k, Value: domain.String(v)})
	}
	return domain.Mapping(fields...)
}

func TestTable_RegisterValidation(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Register(nil))
	require.Error(t, tbl.Register(Func{}))
	r := Func{RuleName: "x", Trigger: func(domain.Command) bool { return false }, Rewrite: func(c domain.Command) domain.Command { return c }}
	require.NoError(t, tbl.Register(r))
	require.Error(t, tbl.Register(r))
}

func TestTable_ComposesInOrder(t *testing.T) {
	tbl := NewTable()
	appendArg := func(name, arg string) Rule {
		return Func{
			RuleName: name,
			Trigger:  func(c domain.Command) bool { return len(c.Args) > 0 && c.Args[0] == "x" },
			Rewrite: func(c domain.Command) domain.Command {
				c.Args = append(cloneArgs(c.Args), arg)
				return c
			},
		}
	}
	require.NoError(t, tbl.Register(appendArg("first", "1")))
	require.NoError(t, tbl.Register(appendArg("second", "2")))
	require.NoError(t, tbl.Register(Func{
		RuleName: "never",
		Trigger:  func(domain.Command) bool { return false },
		Rewrite:  func(domain.Command) domain.Command { panic("must not run") },
	}))

	got := tbl.Rewrite(domain.Command{Args: []string{"x"}})
	assert.Equal(t, []string{"x", "1", "2"}, got.Args)
	assert.Equal(t, []string{"first", "second", "never"}, tbl.Names())

	untouched := tbl.Rewrite(domain.Command{Args: []string{"y"}})
	assert.Equal(t, []string{"y"}, untouched.Args)
}

func TestAddAlias(t *testing.T) {
	t.Run("strips alias and installs registration", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		f.define(t, "osc1", "id-osc1", nil, map[string]string{"out": "id-out"})
		assert.Equal(t, [][]string{{registry.ListPortsVerb, "id-osc1"}}, f.sender.calls)
		assert.Equal(t, "id-osc1", f.registry.ResolveComponent("osc1"))
	})

	t.Run("duplicate name becomes a no-op", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		f.define(t, "foo", "id-x", nil, nil)

		cmd := f.rewrite("addcom", "noise", "as", "foo")
		assert.Empty(t, cmd.Args)
		assert.NotNil(t, cmd.Args, "no-op still encodes as an empty args list")
		assert.Equal(t, []string{"name already defined: foo"}, []string(*f.reports))

		a, _ := f.registry.Get("foo")
		assert.Equal(t, "id-x", a.UUID)
		assert.Equal(t, 1, f.registry.Len())
	})

	t.Run("does not match other shapes", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		for _, args := range [][]string{
			{"addcom", "sine"},
			{"addcom", "sine", "to", "x"},
			{"addcom", "sine", "as", "1bad"},
			{"addcom", "sine", "as", "x", "extra"},
		} {
			cmd := f.rewrite(args...)
			assert.Equal(t, args, cmd.Args)
		}
		assert.Empty(t, f.registry.Pending())
	})
}

func TestConnect(t *testing.T) {
	f := newFixture(t, audio.SampleRate)
	f.define(t, "osc1", "id-osc1", nil, map[string]string{"out": "id-osc1-out"})
	f.define(t, "osc2", "id-osc2", map[string]string{"in": "id-osc2-in"}, nil)

	cmd := f.rewrite("connect", "osc1.out", "osc2.in")
	assert.Equal(t, []string{"connect", "id-osc1-out", "id-osc2-in"}, cmd.Args)

	cmd = f.rewrite("connect", "osc1.out", "osc3.in")
	assert.Equal(t, []string{"connect", "id-osc1-out", "osc3.in"}, cmd.Args)

	cmd = f.rewrite("connect", "osc1.nope", "osc2.in", "extra")
	assert.Equal(t, []string{"connect", "osc1.nope", "id-osc2-in", "extra"}, cmd.Args)

	cmd = f.rewrite("connect", "osc1.out")
	assert.Equal(t, []string{"connect", "osc1.out"}, cmd.Args, "needs three args")
}

func TestCall(t *testing.T) {
	f := newFixture(t, audio.SampleRate)
	f.define(t, "osc1", "id-osc1", nil, nil)

	assert.Equal(t, []string{"call", "id-osc1", "set", "1"}, f.rewrite("call", "osc1", "set", "1").Args)
	assert.Equal(t, []string{"call", "unknown_name"}, f.rewrite("call", "unknown_name").Args)
	assert.Equal(t, []string{"call"}, f.rewrite("call").Args)
}

func TestPlay(t *testing.T) {
	t.Run("rewrites duration and feeds the sink", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		cmd := f.rewrite("play", "speaker", "2.5")
		assert.Equal(t, []string{"play", "speaker", "110250"}, cmd.Args)

		resp := domain.Mapping(domain.Field{Key: "samples", Value: domain.List(
			domain.Number("0", 0), domain.Number("1", 1), domain.Number("-0.5", -0.5),
		)})
		require.NoError(t, cmd.OnSuccess(resp))

		bufs := f.sink.Buffers()
		require.Len(t, bufs, 1)
		require.Len(t, bufs[0], 6)
		assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(bufs[0][0:])))
		assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(bufs[0][2:])))
		assert.Equal(t, int16(-16384), int16(binary.LittleEndian.Uint16(bufs[0][4:])))
		assert.Equal(t, 3, f.played)
	})

	t.Run("unsupported sample rate is rejected locally", func(t *testing.T) {
		f := newFixture(t, 48000)
		cmd := f.rewrite("play", "speaker", "2.5")
		assert.Empty(t, cmd.Args)
		require.Len(t, *f.reports, 1)
		assert.Contains(t, (*f.reports)[0], "unsupported sample rate")
	})

	t.Run("invalid duration is rejected locally", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		durations := []string{"soon", "-1", "NaN", "Inf", "-Inf", "1e300", "48700"}
		for _, d := range durations {
			cmd := f.rewrite("play", "speaker", d)
			assert.Empty(t, cmd.Args, "duration %s", d)
		}
		require.Len(t, *f.reports, len(durations))
		assert.Contains(t, (*f.reports)[2], `invalid duration: "NaN"`)
	})

	t.Run("other sinks pass through", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		cmd := f.rewrite("play", "headphones", "1")
		assert.Equal(t, []string{"play", "headphones", "1"}, cmd.Args)
	})

	t.Run("missing samples is reported", func(t *testing.T) {
		f := newFixture(t, audio.SampleRate)
		cmd := f.rewrite("play", "speaker", "1")
		require.NoError(t, cmd.OnSuccess(domain.Mapping()))
		assert.Empty(t, f.sink.Buffers())
		assert.Equal(t, []string{"play: response carried no samples"}, []string(*f.reports))
	})
}
