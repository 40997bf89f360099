// Package metrics holds the prometheus collectors shared by ingestion and
// the prediction cache. All methods are safe on a nil receiver so callers
// that do not care about metrics can pass nil.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the set of VinAudit collectors.
type Metrics struct {
	LinesTotal         prometheus.Counter
	RecordsCommitted   prometheus.Counter
	ListingsTotal      *prometheus.CounterVec
	RecordErrors       *prometheus.CounterVec
	PredictionOutcomes *prometheus.CounterVec
	IngestDuration     prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vinaudit_ingest_lines_total",
			Help: "Data lines read from feed files",
		}),
		RecordsCommitted: f.NewCounter(prometheus.CounterOpts{
			Name: "vinaudit_ingest_records_committed_total",
			Help: "Records whose transaction committed",
		}),
		ListingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vinaudit_ingest_listings_total",
			Help: "Listings written, by action",
		}, []string{"action"}), // created, updated
		RecordErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vinaudit_ingest_record_errors_total",
			Help: "Rejected records by error category",
		}, []string{"category"}),
		PredictionOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vinaudit_prediction_lookups_total",
			Help: "Prediction cache lookups by outcome",
		}, []string{"outcome"}),
		IngestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vinaudit_ingest_run_duration_seconds",
			Help:    "Wall time of ingestion runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
	}
}

func (m *Metrics) Line() {
	if m != nil {
		m.LinesTotal.Inc()
	}
}

func (m *Metrics) Committed(created bool) {
	if m == nil {
		return
	}
	m.RecordsCommitted.Inc()
	if created {
		m.ListingsTotal.WithLabelValues("created").Inc()
	} else {
		m.ListingsTotal.WithLabelValues("updated").Inc()
	}
}

func (m *Metrics) RecordError(category string) {
	if m != nil {
		m.RecordErrors.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) Prediction(outcome string) {
	if m != nil {
		m.PredictionOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RunFinished(seconds float64) {
	if m != nil {
		m.IngestDuration.Observe(seconds)
	}
}
