package nats

import (
	"context"
	"testing"
	"time"

	"github.com/diogoX451/synthctl/internal/events"
	"github.com/diogoX451/synthctl/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableFromSubject(t *testing.T) {
	assert.Equal(t, "synth_abc_input", durableFromSubject("synth.abc.input"))
	assert.Equal(t, "synth___input", durableFromSubject("synth.*.input"))
	assert.Equal(t, "SYNTH", StreamName("synth"))
}

func TestNATSBus(t *testing.T) {
	bus, err := New(Config{
		URL:           types.Getenv("SYNTH_TEST_NATS_URL", "nats://localhost:4222"),
		MaxReconnects: 0,
	})
	if err != nil {
		t.Skip("NATS não disponível:", err)
	}
	defer bus.Close()

	prefix := "synthtest"
	require.NoError(t, bus.SetupSynthStreams(prefix))
	// idempotente
	require.NoError(t, bus.SetupSynthStreams(prefix))

	t.Run("Publish and Subscribe input", func(t *testing.T) {
		subject := events.Subject(prefix, "s1", events.SubjectInput)
		got := make(chan string, 1)

		sub, err := bus.Subscribe(subject, func(ctx context.Context, msg events.Message) error {
			got <- string(msg.Data())
			return msg.Ack()
		})
		require.NoError(t, err)
		defer sub.Unsubscribe()

		require.NoError(t, bus.PublishEvent(context.Background(), subject, types.RemoteLine{Line: "call foo"}))

		select {
		case data := <-got:
			assert.JSONEq(t, `{"line":"call foo"}`, data)
		case <-time.After(3 * time.Second):
			t.Fatal("message not delivered")
		}
	})
}
