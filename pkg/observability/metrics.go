package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/onboard/pkg/domain"
)

const namespace = "onboard"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	events    *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	steps     *prometheus.CounterVec
	messages  *prometheus.CounterVec
	durations prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Accepted event callbacks by kind.",
			},
			[]string{"kind"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_rejected_total",
				Help:      "Callbacks not handed to a handler, by reason.",
			},
			[]string{"reason"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_completed_total",
				Help:      "Tutorial steps completed for the first time.",
			},
			[]string{"step"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Outbound platform calls by operation and result.",
			},
			[]string{"op", "result"},
		),
		durations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of asynchronous event handling.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.events, m.rejected, m.steps, m.messages, m.durations)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvent: func(ctx context.Context, e *domain.ObservedEvent) {
			m.events.WithLabelValues(string(e.Kind)).Inc()
		},
		OnReject: func(ctx context.Context, reason string) {
			m.rejected.WithLabelValues(reason).Inc()
		},
		OnStepCompleted: func(ctx context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(string(e.Step)).Inc()
		},
		OnSend: func(ctx context.Context, e *domain.SendEvent) {
			op := "post"
			if e.Update {
				op = "update"
			}
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.messages.WithLabelValues(op, result).Inc()
		},
		OnHandled: func(ctx context.Context, e *domain.HandledEvent) {
			m.durations.Observe(e.Duration.Seconds())
		},
	}
}
