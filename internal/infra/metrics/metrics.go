package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matbase"

const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"

	KindResults = "results"
	KindMatML   = "matml"

	SourceTable = "table"
	SourceMatML = "matml"
)

type Metrics struct {
	ResultRowsWritten prometheus.Counter
	ResultRowsFailed  prometheus.Counter
	ParseDiagnostics  *prometheus.CounterVec
	MatMLFiles        *prometheus.CounterVec
	ImportDuration    *prometheus.HistogramVec
	BatchRollbacks    prometheus.Counter
}

// New создаёт счётчики импорта и регистрирует их в reg.
// Для /metrics передаётся prometheus.DefaultRegisterer, в тестах свой реестр.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ResultRowsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_rows_written_total",
			Help:      "Calculation result rows written to the store.",
		}),
		ResultRowsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_rows_failed_total",
			Help:      "Calculation result rows rejected by the store.",
		}),
		ParseDiagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_diagnostics_total",
			Help:      "Parse problems resolved to a default value.",
		}, []string{"source"}),
		MatMLFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matml_files_total",
			Help:      "MatML files processed, by outcome.",
		}, []string{"outcome"}),
		ImportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of one import run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"kind"}),
		BatchRollbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_rollbacks_total",
			Help:      "MatML batches rolled back as a whole.",
		}),
	}
}

// ObserveSince пишет длительность импорта вида kind, начатого в start.
func (m *Metrics) ObserveSince(kind string, start time.Time) {
	m.ImportDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
