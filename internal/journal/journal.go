// Package journal encaminha eventos da sessão para o bus e o store sem
// bloquear a goroutine da sessão.
package journal

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/diogoX451/synthctl/internal/metrics"
	"github.com/diogoX451/synthctl/pkg/types"
	"github.com/sourcegraph/conc"
)

const (
	DefaultBuffer = 256
	// payloads de play podem ter megabytes de amostras
	DefaultMaxPayload = 4 << 10
	writeTimeout      = 5 * time.Second
)

var _ ports.Observer = (*Journal)(nil)

type Options struct {
	Bus        ports.EventBus
	Repository ports.SessionRepository
	Metrics    *metrics.Metrics
	Logger     *logging.Logger
	Buffer     int
	MaxPayload int
}

type event struct {
	command  *types.CommandEvent
	response *types.ResponseEvent
	alias    *types.AliasEvent
}

// Journal implementa ports.Observer com uma fila limitada e um worker
type Journal struct {
	bus        ports.EventBus
	repo       ports.SessionRepository
	metrics    *metrics.Metrics
	log        *logging.Logger
	maxPayload int

	queue chan event
	once  sync.Once
	wg    conc.WaitGroup
}

// New inicia o worker. Bus e Repository são opcionais.
func New(opts Options) *Journal {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.MaxPayload <= 0 {
		opts.MaxPayload = DefaultMaxPayload
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	j := &Journal{
		bus:        opts.Bus,
		repo:       opts.Repository,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		maxPayload: opts.MaxPayload,
		queue:      make(chan event, opts.Buffer),
	}
	j.wg.Go(j.run)
	return j
}

func (j *Journal) CommandSent(e types.CommandEvent) {
	j.enqueue(event{command: &e})
}

func (j *Journal) ResponseReceived(e types.ResponseEvent) {
	e.Payload = j.truncate(e.Payload)
	j.enqueue(event{response: &e})
}

func (j *Journal) AliasRegistered(e types.AliasEvent) {
	j.enqueue(event{alias: &e})
}

// Close drena a fila e espera o worker
func (j *Journal) Close() {
	j.once.Do(func() {
		close(j.queue)
	})
	j.wg.Wait()
}

func (j *Journal) enqueue(ev event) {
	select {
	case j.queue <- ev:
	default:
		// Buffer cheio: descarta e conta
		j.metrics.JournalDropped.Inc()
		j.log.Debugf("journal buffer full, dropping event")
	}
}

// truncate troca payloads grandes por um resumo JSON válido
func (j *Journal) truncate(payload json.RawMessage) json.RawMessage {
	if len(payload) <= j.maxPayload {
		return payload
	}
	summary, _ := json.Marshal(map[string]interface{}{
		"truncated": true,
		"bytes":     len(payload),
	})
	return summary
}

func (j *Journal) run() {
	for ev := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		j.write(ctx, ev)
		cancel()
	}
}

func (j *Journal) write(ctx context.Context, ev event) {
	switch {
	case ev.command != nil:
		if j.bus != nil {
			j.check("publish command", j.bus.PublishCommand(ctx, *ev.command))
		}
		if j.repo != nil {
			j.check("record command", j.repo.RecordCommand(ctx, *ev.command))
		}
	case ev.response != nil:
		if j.bus != nil {
			j.check("publish response", j.bus.PublishResponse(ctx, *ev.response))
		}
		if j.repo != nil {
			j.check("record response", j.repo.RecordResponse(ctx, *ev.response))
		}
	case ev.alias != nil:
		if j.bus != nil {
			j.check("publish alias", j.bus.PublishAlias(ctx, *ev.alias))
		}
		if j.repo != nil {
			j.check("record alias", j.repo.RecordAlias(ctx, *ev.alias))
		}
	}
}

// falhas do journal nunca afetam a sessão
func (j *Journal) check(action string, err error) {
	if err != nil {
		j.log.Errorf("journal: %s: %v", action, err)
	}
}
