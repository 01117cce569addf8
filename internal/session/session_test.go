package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diogoX451/synthctl/internal/audio"
	"github.com/diogoX451/synthctl/internal/core/domain"
	"github.com/diogoX451/synthctl/internal/engine"
	"github.com/diogoX451/synthctl/internal/protocol"
	"github.com/diogoX451/synthctl/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeEngine fala o protocolo do outro lado de um par de pipes
type fakeEngine struct {
	mu       sync.Mutex
	requests [][]string
	ports    map[string][2]string // componente -> (entrada freq, saída out)

	// failPorts faz todo `ports` responder com error
	failPorts bool
}

func (e *fakeEngine) serve(r io.Reader, w io.WriteCloser) {
	defer w.Close()
	sc := protocol.NewFrameScanner(r, 0)
	for sc.Scan() {
		args := make([]string, 0)
		for _, a := range gjson.GetBytes(sc.Bytes(), "request.args").Array() {
			args = append(args, a.String())
		}
		e.mu.Lock()
		e.requests = append(e.requests, args)
		e.mu.Unlock()

		for _, resp := range e.respond(args) {
			if _, err := w.Write(append([]byte(resp), 0)); err != nil {
				return
			}
		}
	}
}

func (e *fakeEngine) respond(args []string) []string {
	wrap := func(body string) []string { return []string{`{"response":` + body + `}`} }
	if len(args) == 0 {
		return wrap(`{}`)
	}
	switch args[0] {
	case "addcom":
		if args[1] == "broken" {
			return wrap(`{"error":"unknown component type: broken"}`)
		}
		id := uuid.NewString()
		e.mu.Lock()
		e.ports[id] = [2]string{uuid.NewString(), uuid.NewString()}
		e.mu.Unlock()
		return wrap(fmt.Sprintf(`{"uuid":%q,"type":%q}`, id, args[1]))
	case "ports":
		e.mu.Lock()
		p, ok := e.ports[args[1]]
		fail := e.failPorts
		e.mu.Unlock()
		if !ok || fail {
			return wrap(fmt.Sprintf(`{"error":"unknown component: %s"}`, args[1]))
		}
		return wrap(fmt.Sprintf(`{"inputs":{"freq":%q},"outputs":{"out":%q}}`, p[0], p[1]))
	case "connect":
		return wrap(fmt.Sprintf(`{"from":%q,"to":%q}`, args[1], args[2]))
	case "call":
		return wrap(fmt.Sprintf(`{"target":%q}`, args[1]))
	case "play":
		n, _ := strconv.Atoi(args[2])
		samples := make([]string, n)
		for i := range samples {
			samples[i] = "0.5"
		}
		return wrap(`{"samples":[` + strings.Join(samples, ",") + `]}`)
	case "crash":
		return []string{"not json"}
	case "twice":
		return append(wrap(`{}`), wrap(`{}`)...)
	default:
		return wrap(fmt.Sprintf(`{"error":"unknown command: %s"}`, args[0]))
	}
}

func (e *fakeEngine) wire() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.requests))
	copy(out, e.requests)
	return out
}

type harness struct {
	sess   *Session
	engine *fakeEngine
	stream *engine.Stream
	sink   *audio.MemorySink
	out    *bytes.Buffer
	events *recorder
}

// recorder é um Observer síncrono; a sessão o chama na própria goroutine
type recorder struct {
	mu       sync.Mutex
	commands []types.CommandEvent
	resps    []types.ResponseEvent
	aliases  []types.AliasEvent
}

func (r *recorder) CommandSent(e types.CommandEvent) {
	r.mu.Lock()
	r.commands = append(r.commands, e)
	r.mu.Unlock()
}

func (r *recorder) ResponseReceived(e types.ResponseEvent) {
	r.mu.Lock()
	r.resps = append(r.resps, e)
	r.mu.Unlock()
}

func (r *recorder) AliasRegistered(e types.AliasEvent) {
	r.mu.Lock()
	r.aliases = append(r.aliases, e)
	r.mu.Unlock()
}

func newHarness(t *testing.T, sampleRate int) *harness {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	fe := &fakeEngine{ports: map[string][2]string{}}
	go fe.serve(reqR, respW)

	stream := engine.NewStream(respR, reqW, 0, nil)
	t.Cleanup(func() {
		_ = stream.Close()
		_ = respR.Close()
		stream.Wait()
	})

	h := &harness{
		engine: fe,
		stream: stream,
		sink:   audio.NewMemorySink(sampleRate),
		out:    &bytes.Buffer{},
		events: &recorder{},
	}
	sess, err := New(Options{
		ID:        "test",
		Transport: stream,
		Sink:      h.sink,
		Output:    h.out,
		Observer:  h.events,
	})
	require.NoError(t, err)
	h.sess = sess
	return h
}

func (h *harness) run(t *testing.T, lines ...string) error {
	t.Helper()
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.sess.Run(ctx, ch)
}

func TestSession_AliasRoundTrip(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	require.NoError(t, h.run(t,
		"addcom osc as foo",
		"call foo start",
		"connect foo.out foo.freq",
	))

	wire := h.engine.wire()
	require.Len(t, wire, 4)
	assert.Equal(t, []string{"addcom", "osc"}, wire[0], "alias never reaches the engine")
	assert.Equal(t, "ports", wire[1][0])
	id := wire[1][1]

	alias, ok := h.sess.registry.Get("foo")
	require.True(t, ok)
	assert.Equal(t, id, alias.UUID)

	assert.Equal(t, []string{"call", id, "start"}, wire[2])
	assert.Equal(t, []string{"connect", alias.Outputs["out"], alias.Inputs["freq"]}, wire[3])

	out := h.out.String()
	assert.Contains(t, out, id+" (foo)")
	assert.Contains(t, out, alias.Outputs["out"]+" (foo.out)")

	require.Len(t, h.events.aliases, 1)
	assert.Equal(t, "foo", h.events.aliases[0].Name)
	assert.Len(t, h.events.commands, 4)
	assert.Len(t, h.events.resps, 4)
}

func TestSession_DuplicateAlias(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	require.NoError(t, h.run(t, "addcom osc as foo", "addcom lfo as foo"))

	wire := h.engine.wire()
	require.Len(t, wire, 3)
	assert.Equal(t, []string{}, wire[2], "rejected command is still one request")
	assert.Contains(t, h.out.String(), "name already defined: foo")
	assert.Equal(t, 1, h.sess.registry.Len())
}

func TestSession_EngineErrorAdvances(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	require.NoError(t, h.run(t, "bogus", "addcom osc as foo"))

	assert.Contains(t, h.out.String(), "unknown command: bogus")
	assert.True(t, h.sess.registry.Has("foo"))
	assert.Equal(t, "unknown command: bogus", h.events.resps[0].Error)
}

func TestSession_FailedRegistrationIsAbandoned(t *testing.T) {
	t.Run("create error", func(t *testing.T) {
		h := newHarness(t, audio.SampleRate)

		require.NoError(t, h.run(t, "addcom broken as foo", "addcom osc as foo"))

		assert.Contains(t, h.out.String(), "unknown component type: broken")
		assert.Empty(t, h.sess.registry.Pending())
		assert.True(t, h.sess.registry.Has("foo"), "name is free after the failed create")
	})

	t.Run("ports error", func(t *testing.T) {
		h := newHarness(t, audio.SampleRate)
		h.engine.mu.Lock()
		h.engine.failPorts = true
		h.engine.mu.Unlock()

		require.NoError(t, h.run(t, "addcom osc as foo"))

		require.Len(t, h.engine.wire(), 2)
		assert.Contains(t, h.out.String(), "unknown component: ")
		assert.Empty(t, h.sess.registry.Pending())
		assert.False(t, h.sess.registry.Has("foo"))
	})
}

func TestSession_EmptyLineRoundTrips(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	require.NoError(t, h.run(t, "", "   # only a comment"))
	assert.Equal(t, [][]string{{}, {}}, h.engine.wire())
}

func TestSession_Play(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	// 0.0001 s a 44100 Hz
	require.NoError(t, h.run(t, "play speaker 0.0001"))

	wire := h.engine.wire()
	require.Len(t, wire, 1)
	n, err := strconv.Atoi(wire[0][2])
	require.NoError(t, err)
	assert.Equal(t, audio.DurationToSamples(0.0001, audio.SampleRate), n)

	bufs := h.sink.Buffers()
	require.Len(t, bufs, 1)
	assert.Len(t, bufs[0], 2*n)
}

func TestSession_PlayUnsupportedRate(t *testing.T) {
	h := newHarness(t, 48000)

	require.NoError(t, h.run(t, "play speaker 1"))

	assert.Equal(t, [][]string{{}}, h.engine.wire())
	assert.Contains(t, h.out.String(), "unsupported sample rate: 48000 (supported: 44100)")
	assert.Empty(t, h.sink.Buffers())
}

func TestSession_ProtocolErrorIsFatal(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	err := h.run(t, "crash", "addcom osc as foo")
	require.Error(t, err)
	assert.True(t, domain.IsFatal(err))
	assert.True(t, errors.Is(err, domain.ErrMalformedFrame))
	assert.Len(t, h.engine.wire(), 1)
}

func TestSession_UnsolicitedResponseIsFatal(t *testing.T) {
	h := newHarness(t, audio.SampleRate)

	// entrada aberta: a sessão ainda está viva quando chega o frame extra
	lines := make(chan string, 1)
	lines <- "twice"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.sess.Run(ctx, lines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsolicitedResponse))
}

func TestSession_SubmitAndSnapshot(t *testing.T) {
	h := newHarness(t, audio.SampleRate)
	lines := make(chan string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- h.sess.Run(ctx, lines) }()

	require.NoError(t, h.sess.Submit(ctx, "addcom osc as bar"))
	require.Eventually(t, func() bool {
		snap, err := h.sess.Snapshot(ctx)
		return err == nil && len(snap.Aliases) == 1
	}, 2*time.Second, 10*time.Millisecond)

	snap, err := h.sess.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SessionID("test"), snap.SessionID)
	assert.Equal(t, "bar", snap.Aliases[0].Name)
	assert.Equal(t, []string{"add_alias", "connect", "call", "play"}, snap.Rules)
	assert.False(t, snap.Scheduler.Busy)

	close(lines)
	require.NoError(t, <-errc)

	_, err = h.sess.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.sess.Submit(ctx, "call bar"), ErrClosed)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"session_id":"test"`)
}
