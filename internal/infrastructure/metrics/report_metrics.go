package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jan-server/services/report-api/internal/domain/report"
)

// Report lifecycle metrics
var (
	ReportsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "reports_created_total",
			Help:      "Total number of reports created",
		},
		[]string{"category"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "report_api",
			Name:      "status_transitions_total",
			Help:      "Total number of report status transitions",
		},
		[]string{"from", "to"},
	)
)

// ReportObserver feeds report writes into Prometheus.
type ReportObserver struct{}

// NewReportObserver returns the observer.
func NewReportObserver() ReportObserver { return ReportObserver{} }

// ReportCreated implements report.Observer.
func (ReportObserver) ReportCreated(r *report.Report) {
	ReportsCreatedTotal.WithLabelValues(string(r.Metadata.Category)).Inc()
}

// StatusChanged implements report.Observer.
func (ReportObserver) StatusChanged(r *report.Report, from report.Status) {
	StatusTransitionsTotal.WithLabelValues(string(from), string(r.Status)).Inc()
}
