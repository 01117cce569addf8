// Package metrics expõe contadores do pipeline em formato Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry *prometheus.Registry

	RequestsSent      prometheus.Counter
	ResponsesReceived prometheus.Counter
	EngineErrors      prometheus.Counter
	LocalRejections   prometheus.Counter
	AliasesRegistered prometheus.Counter
	SamplesPlayed     prometheus.Counter
	RemoteLines       prometheus.Counter
	JournalDropped    prometheus.Counter
	QueueDepth        prometheus.Gauge
	InFlight          prometheus.Gauge
}

// New cria as métricas num registry próprio
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "engine",
			Name:      "requests_sent_total",
			Help:      "Requests written to the engine",
		}),
		ResponsesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "engine",
			Name:      "responses_received_total",
			Help:      "Response frames decoded from the engine",
		}),
		EngineErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Responses carrying an error field",
		}),
		LocalRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "commands",
			Name:      "rejected_total",
			Help:      "Commands rejected locally and replaced by a no-op",
		}),
		AliasesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "registry",
			Name:      "aliases_total",
			Help:      "Aliases that completed registration",
		}),
		SamplesPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "audio",
			Name:      "samples_played_total",
			Help:      "PCM samples written to the audio sink",
		}),
		RemoteLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "commands",
			Name:      "remote_lines_total",
			Help:      "Command lines received from the event bus",
		}),
		JournalDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "journal",
			Name:      "events_dropped_total",
			Help:      "Session events dropped because the journal buffer was full",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "synthctl",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Commands waiting to be sent",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "synthctl",
			Subsystem: "engine",
			Name:      "requests_in_flight",
			Help:      "Requests awaiting a response",
		}),
	}

	m.Registry.MustRegister(
		m.RequestsSent,
		m.ResponsesReceived,
		m.EngineErrors,
		m.LocalRejections,
		m.AliasesRegistered,
		m.SamplesPlayed,
		m.RemoteLines,
		m.JournalDropped,
		m.QueueDepth,
		m.InFlight,
	)
	return m
}
