// Package metrics provides Prometheus metrics for a sorting session.
package metrics

import (
	"github.com/brettbedarf/picsort"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds one session's collectors on a private registry, so several
// sessions in one process do not collide
type Metrics struct {
	registry *prometheus.Registry

	actionsTotal    *prometheus.CounterVec
	actionErrors    *prometheus.CounterVec
	undoTotal       *prometheus.CounterVec
	redoTotal       *prometheus.CounterVec
	purgedTotal     prometheus.Counter
	scannedFiles    prometheus.Counter
	scanSkipped     prometheus.Counter
	scanDuration    prometheus.Histogram
	workingSetSize  prometheus.Gauge
	remainingImages prometheus.Gauge
	destinations    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		// Action metrics
		actionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picsort_actions_total",
				Help: "Total number of applied actions",
			},
			[]string{"action"},
		),
		actionErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picsort_action_errors_total",
				Help: "Total number of rejected actions",
			},
			[]string{"action", "kind"},
		),

		// History metrics
		undoTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picsort_undo_total",
				Help: "Total undo attempts",
			},
			[]string{"result"},
		),
		redoTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picsort_redo_total",
				Help: "Total redo attempts",
			},
			[]string{"result"},
		),
		purgedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "picsort_holding_purged_total",
				Help: "Total held files permanently removed",
			},
		),

		// Scan metrics
		scannedFiles: f.NewCounter(
			prometheus.CounterOpts{
				Name: "picsort_scan_files_total",
				Help: "Total image files discovered by scans",
			},
		),
		scanSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "picsort_scan_skipped_total",
				Help: "Total entries skipped by scans because of I/O errors",
			},
		),
		scanDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "picsort_scan_duration_seconds",
				Help:    "Scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Working set metrics
		workingSetSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "picsort_working_set_size",
				Help: "Number of images in the working set",
			},
		),
		remainingImages: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "picsort_remaining_images",
				Help: "Number of images from the current one to the end",
			},
		),
		destinations: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "picsort_destinations",
				Help: "Number of registered destination folders",
			},
		),
	}
}

// RecordAction records the outcome of an action. kind is the error kind on
// failure and nil on success.
func (m *Metrics) RecordAction(action picsort.Action, kind error) {
	if kind != nil {
		m.actionErrors.WithLabelValues(action.String(), kind.Error()).Inc()
		return
	}
	m.actionsTotal.WithLabelValues(action.String()).Inc()
}

// RecordUndo records an undo attempt. kind is nil on success.
func (m *Metrics) RecordUndo(kind error) {
	m.undoTotal.WithLabelValues(result(kind)).Inc()
}

// RecordRedo records a redo attempt. kind is nil on success.
func (m *Metrics) RecordRedo(kind error) {
	m.redoTotal.WithLabelValues(result(kind)).Inc()
}

func (m *Metrics) RecordPurge(removed int) {
	m.purgedTotal.Add(float64(removed))
}

func (m *Metrics) RecordScan(files, skipped int, seconds float64) {
	m.scannedFiles.Add(float64(files))
	m.scanSkipped.Add(float64(skipped))
	m.scanDuration.Observe(seconds)
}

// SetState updates the working set gauges
func (m *Metrics) SetState(size, remaining, destinations int) {
	m.workingSetSize.Set(float64(size))
	m.remainingImages.Set(float64(remaining))
	m.destinations.Set(float64(destinations))
}

// WriteTextfile writes every metric to path in the text exposition format,
// for the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func result(kind error) string {
	if kind == nil {
		return "ok"
	}
	return kind.Error()
}
