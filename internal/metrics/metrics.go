// Package metrics provides Prometheus metrics for protocolo batches.
//
// Batches are short-lived, so metrics are written once at the end of a run in
// the node_exporter textfile format instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tsawler/protocolo"
)

// Metrics holds all Prometheus metrics for a batch. It implements
// protocolo.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	DocumentDuration prometheus.Histogram
	PagesTotal       prometheus.Counter
	OCRPassesTotal   *prometheus.CounterVec
	PlacementsTotal  *prometheus.CounterVec
	BatchLastSuccess prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocolo_documents_total",
				Help: "Total number of processed documents by outcome",
			},
			[]string{"outcome"},
		),
		DocumentDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "protocolo_document_duration_seconds",
				Help:    "Time spent extracting identifiers from one document",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
		PagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "protocolo_pages_rendered_total",
				Help: "Total number of rendered pages",
			},
		),
		OCRPassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocolo_ocr_passes_total",
				Help: "Total number of OCR passes over rotation variants by status",
			},
			[]string{"status"},
		),
		PlacementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocolo_placements_total",
				Help: "Total number of files placed in the destination by action",
			},
			[]string{"action"},
		),
		BatchLastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "protocolo_batch_last_success_timestamp_seconds",
				Help: "Unix time of the last batch that finished without failures",
			},
		),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageRendered implements protocolo.Recorder.
func (m *Metrics) PageRendered() {
	m.PagesTotal.Inc()
}

// VariantRecognized implements protocolo.Recorder.
func (m *Metrics) VariantRecognized(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OCRPassesTotal.WithLabelValues(status).Inc()
}

// DocumentDone implements protocolo.Recorder.
func (m *Metrics) DocumentDone(outcome protocolo.Outcome, elapsed time.Duration) {
	m.DocumentsTotal.WithLabelValues(string(outcome)).Inc()
	m.DocumentDuration.Observe(elapsed.Seconds())
}

// RecordPlacement counts one placed file. action is "copy", "move" or
// "dry_run".
func (m *Metrics) RecordPlacement(action string) {
	m.PlacementsTotal.WithLabelValues(action).Inc()
}

// BatchSucceeded stamps the last successful batch time.
func (m *Metrics) BatchSucceeded(at time.Time) {
	m.BatchLastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
