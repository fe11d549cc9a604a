// Package observability bridges orchestrator lifecycle events to Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tillerhq/tiller/pkg/domain"
)

// Metrics holds the Prometheus collectors for the drive loop.
type Metrics struct {
	StepsTotal       *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
	RetriesTotal     prometheus.Counter
	SuspensionsTotal prometheus.Counter
	CompletionsTotal prometheus.Counter
}

// NewMetrics creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tiller_steps_total",
				Help: "Total number of step executions",
			},
			[]string{"step"},
		),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tiller_step_duration_seconds",
				Help:    "Duration of step executions",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"step"},
		),
		RetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tiller_research_retries_total",
				Help: "Total number of validator-triggered research retries",
			},
		),
		SuspensionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tiller_suspensions_total",
				Help: "Total number of sessions suspended for clarification",
			},
		),
		CompletionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tiller_completions_total",
				Help: "Total number of completed drive passes",
			},
		),
	}
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			m.StepsTotal.WithLabelValues(string(e.Step)).Inc()
			m.StepDuration.WithLabelValues(string(e.Step)).Observe(e.Duration.Seconds())
		},
		OnRetry: func(_ context.Context, _ *domain.StepEvent) {
			m.RetriesTotal.Inc()
		},
		OnSuspend: func(_ context.Context, _ *domain.StepEvent) {
			m.SuspensionsTotal.Inc()
		},
		OnComplete: func(_ context.Context, _ *domain.StepEvent) {
			m.CompletionsTotal.Inc()
		},
	}
}
