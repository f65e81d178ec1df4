// Package metrics defines the Prometheus collectors for enrichment runs and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talk_enricher/internal/domain"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Metrics holds the collectors for enrichment runs.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	InputRows        *prometheus.GaugeVec
	DroppedRows      *prometheus.CounterVec
	DocumentsWritten prometheus.Counter
	LastSuccess      prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_runs_total",
				Help: "Total enrichment runs by status.",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "enrich_run_duration_seconds",
				Help:    "Wall time of a successful enrichment run.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
		InputRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "enrich_input_rows",
				Help: "Rows read per input table in the last successful run.",
			},
			[]string{"table"},
		),
		DroppedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_dropped_rows_total",
				Help: "Rows discarded by the pipeline, by reason.",
			},
			[]string{"reason"},
		),
		DocumentsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "enrich_documents_written_total",
				Help: "Total documents upserted into the sink.",
			},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrich_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.InputRows,
		m.DroppedRows,
		m.DocumentsWritten,
		m.LastSuccess,
	)

	return m
}

// ObserveRun records the outcome of one run. stats may be nil on failure.
func (m *Metrics) ObserveRun(stats *domain.EnrichStats, err error) {
	if err != nil || stats == nil {
		m.RunsTotal.WithLabelValues(statusFailed).Inc()
		return
	}

	m.RunsTotal.WithLabelValues(statusSuccess).Inc()
	m.RunDuration.Observe(stats.Duration.Seconds())
	m.DocumentsWritten.Add(float64(stats.Written))
	m.LastSuccess.SetToCurrentTime()

	m.InputRows.WithLabelValues("talks").Set(float64(stats.Talks))
	m.InputRows.WithLabelValues("details").Set(float64(stats.Details))
	m.InputRows.WithLabelValues("tags").Set(float64(stats.TagLinks))
	m.InputRows.WithLabelValues("images").Set(float64(stats.Images))
	m.InputRows.WithLabelValues("related").Set(float64(stats.RelatedLinks))

	m.DroppedRows.WithLabelValues("null_id").Add(float64(stats.NullIDTalks))
	m.DroppedRows.WithLabelValues("dangling_related").Add(float64(stats.DanglingRelated))
	m.DroppedRows.WithLabelValues("duplicate_related").Add(float64(stats.DuplicateRelated))
}

// Handler returns the scrape handler for the registry m was built on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
