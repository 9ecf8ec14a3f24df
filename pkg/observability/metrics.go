package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waypoint"

// Outcome label values of waypoint_step_access_total.
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
)

// Metrics holds the journey collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	StepsCompleted   *prometheus.CounterVec
	StepAccess       *prometheus.CounterVec
	HistoryTruncated *prometheus.CounterVec
	TruncatedEntries *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// reg may also be a *prometheus.Registry, in which case Handler serves it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_completed_total",
				Help:      "Total number of steps recorded in a journey log",
			},
			[]string{"wizard", "path"},
		),
		StepAccess: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_access_total",
				Help:      "Progress guard decisions by outcome",
			},
			[]string{"wizard", "path", "outcome"},
		),
		HistoryTruncated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_truncated_total",
				Help:      "Number of answer changes that dropped forward history",
			},
			[]string{"wizard"},
		),
		TruncatedEntries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "history_truncated_entries",
				Help:      "Journey log entries dropped per truncation",
				Buckets:   []float64{1, 2, 3, 5, 8, 13},
			},
			[]string{"wizard"},
		),
	}
	reg.MustRegister(m.StepsCompleted, m.StepAccess, m.HistoryTruncated, m.TruncatedEntries)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepComplete: func(_ context.Context, e *domain.StepEvent) {
			m.StepsCompleted.WithLabelValues(e.Wizard, e.Path).Inc()
		},
		OnAccessGranted: func(_ context.Context, e *domain.AccessEvent) {
			m.StepAccess.WithLabelValues(e.Wizard, e.Path, OutcomeGranted).Inc()
		},
		OnAccessDenied: func(_ context.Context, e *domain.AccessEvent) {
			m.StepAccess.WithLabelValues(e.Wizard, e.Path, OutcomeDenied).Inc()
		},
		OnHistoryTruncated: func(_ context.Context, e *domain.StepEvent) {
			m.HistoryTruncated.WithLabelValues(e.Wizard).Inc()
			m.TruncatedEntries.WithLabelValues(e.Wizard).Observe(float64(e.Truncated))
		},
	}
}

// Handler serves the registry the metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
