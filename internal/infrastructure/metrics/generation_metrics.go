package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jan-server/services/report-api/internal/domain/generation"
)

// Conversation turn metrics
var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "turns_total",
			Help:      "Total number of conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "turn_duration_seconds",
			Help:      "Conversation turn duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	SubmitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "submit_rejections_total",
			Help:      "Submissions rejected before a turn started",
		},
		[]string{"reason"},
	)
)

// GenerationObserver feeds coordinator outcomes into Prometheus.
type GenerationObserver struct{}

// NewGenerationObserver returns the observer.
func NewGenerationObserver() GenerationObserver { return GenerationObserver{} }

// TurnCompleted implements generation.Observer.
func (GenerationObserver) TurnCompleted(outcome generation.Outcome, elapsed time.Duration) {
	TurnsTotal.WithLabelValues(string(outcome)).Inc()
	TurnDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// SubmitRejected implements generation.Observer.
func (GenerationObserver) SubmitRejected(reason string) {
	SubmitRejectionsTotal.WithLabelValues(reason).Inc()
}
