package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for import and export runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Household outcomes by result ("succeeded", "failed")
	Households *prometheus.CounterVec

	// Failed households by reason code (see error_messages.go)
	Failures *prometheus.CounterVec

	// Rows skipped for a missing household number
	SkippedRows prometheus.Counter

	// Full import run duration, parse to tally
	ImportDuration prometheus.Histogram

	// Exported member rows by mode
	ExportRows *prometheus.CounterVec
}

// NewMetrics registers the import metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Households: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jemaat_import_households_total",
			Help: "Households processed by import, by result",
		}, []string{"result"}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jemaat_import_failures_total",
			Help: "Households that failed to import, by reason code",
		}, []string{"code"}),

		SkippedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "jemaat_import_skipped_rows_total",
			Help: "Rows skipped because the household number was empty",
		}),

		ImportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jemaat_import_duration_seconds",
			Help:    "Duration of a full import run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		ExportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jemaat_export_rows_total",
			Help: "Member rows written by export, by mode",
		}, []string{"mode"}),
	}
}

// IncrementOutcome records one household result.
func (m *Metrics) IncrementOutcome(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.Households.WithLabelValues("succeeded").Inc()
		return
	}
	m.Households.WithLabelValues("failed").Inc()
	m.Failures.WithLabelValues(MapError(err).Code).Inc()
}

// AddSkippedRows records rows dropped during grouping.
func (m *Metrics) AddSkippedRows(n int) {
	if m != nil && n > 0 {
		m.SkippedRows.Add(float64(n))
	}
}

// ObserveImportDuration records the duration of a run.
func (m *Metrics) ObserveImportDuration(d time.Duration) {
	if m != nil {
		m.ImportDuration.Observe(d.Seconds())
	}
}

// AddExportRows records rows written by an export.
func (m *Metrics) AddExportRows(mode ExportMode, n int) {
	if m != nil {
		m.ExportRows.WithLabelValues(string(mode)).Add(float64(n))
	}
}
