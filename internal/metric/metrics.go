// Package metric exposes simulation activity as Prometheus metrics.
//
// Metrics is a trace.Sink: attach it next to the journal and every trace
// event updates a counter. Each Metrics owns its prometheus.Registry, so
// two simulations in one process never collide.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/roach88/simkit/internal/trace"
)

const namespace = "simkit"

// Metrics holds the simulation counters.
type Metrics struct {
	registry *prometheus.Registry

	Ticks       prometheus.Counter
	Sent        *prometheus.CounterVec // mode = immediate | delayed
	Delivered   prometheus.Counter
	Suppressed  prometheus.Counter
	Unhandled   *prometheus.CounterVec // receiver
	Transitions *prometheus.CounterVec // entity, to
}

// New creates the simulation metrics and registers them, together with
// the Go runtime collector, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of simulation ticks started",
		}),

		Sent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "telegrams",
				Name:      "sent_total",
				Help:      "Telegrams accepted by the dispatcher, by delivery mode",
			},
			[]string{"mode"},
		),

		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegrams",
			Name:      "delivered_total",
			Help:      "Delayed telegrams delivered by a flush",
		}),

		Suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegrams",
			Name:      "suppressed_total",
			Help:      "Delayed telegrams dropped as duplicates of a pending one",
		}),

		Unhandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "telegrams",
				Name:      "unhandled_total",
				Help:      "Telegrams no state layer of the receiver handled",
			},
			[]string{"receiver"},
		),

		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fsm",
				Name:      "transitions_total",
				Help:      "Completed state transitions, by entity and target state",
			},
			[]string{"entity", "to"},
		),
	}

	m.registry.MustRegister(
		m.Ticks,
		m.Sent,
		m.Delivered,
		m.Suppressed,
		m.Unhandled,
		m.Transitions,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackQueueDepth registers a gauge that reads pending() at scrape time.
func (m *Metrics) TrackQueueDepth(pending func() int) error {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Delayed telegrams waiting for dispatch",
		},
		func() float64 { return float64(pending()) },
	)
	return m.registry.Register(gauge)
}

// Record implements trace.Sink.
func (m *Metrics) Record(ev trace.Event) {
	switch ev.Kind {
	case trace.KindTick:
		m.Ticks.Inc()
	case trace.KindSent:
		m.Sent.WithLabelValues("immediate").Inc()
	case trace.KindScheduled:
		m.Sent.WithLabelValues("delayed").Inc()
	case trace.KindSuppressed:
		m.Suppressed.Inc()
	case trace.KindDelivered:
		m.Delivered.Inc()
	case trace.KindUnhandled:
		m.Unhandled.WithLabelValues(itoa(ev.Receiver)).Inc()
	case trace.KindTransition:
		m.Transitions.WithLabelValues(itoa(ev.Entity), ev.To).Inc()
	}
}
