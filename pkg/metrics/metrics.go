// Package metrics provides Prometheus metrics for certificate runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the run metrics and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Intake
	linesRead        prometheus.Counter
	recordsRejected  prometheus.Counter
	recordsDuplicate prometheus.Counter
	recordsBelow     prometheus.Counter
	qualifying       prometheus.Gauge

	// Rendering
	documentsRendered prometheus.Counter
	documentsFailed   prometheus.Counter
	renderLatency     prometheus.Histogram

	// Run
	runDuration   prometheus.Gauge
	runLastUnix   prometheus.Gauge
	runsByOutcome *prometheus.CounterVec
}

// NewManager creates a metrics manager with its own registry unless one
// is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "certify",
		subsystem:        "run",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels,
		})
	}

	m.linesRead = counter("lines_read_total", "Roster data lines read, header excluded")
	m.recordsRejected = counter("records_rejected_total", "Roster lines rejected by validation")
	m.recordsDuplicate = counter("records_duplicate_total", "Records dropped because their identity was already seen")
	m.recordsBelow = counter("records_below_threshold_total", "Records dropped by the qualifying threshold")
	m.qualifying = gauge("qualifying_records", "Size of the qualifying set of the last run")

	m.documentsRendered = counter("documents_rendered_total", "Documents rendered successfully")
	m.documentsFailed = counter("documents_failed_total", "Documents whose rendering failed")
	m.renderLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "render_latency_milliseconds",
		Help:        "Histogram of per-document render latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.runDuration = gauge("duration_seconds", "Wall time of the last run")
	m.runLastUnix = gauge("last_unix", "Unix timestamp of the last finished run")
	m.runsByOutcome = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Finished runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})
}

// Intake is the per-run intake tally.
type Intake struct {
	Lines      int
	Rejected   int
	Duplicates int
	Below      int
	Qualifying int
}

// RecordIntake records the parse, dedupe and filter tallies of one run.
func (m *Manager) RecordIntake(in Intake) {
	if m == nil || !m.enabled {
		return
	}
	m.linesRead.Add(float64(in.Lines))
	m.recordsRejected.Add(float64(in.Rejected))
	m.recordsDuplicate.Add(float64(in.Duplicates))
	m.recordsBelow.Add(float64(in.Below))
	m.qualifying.Set(float64(in.Qualifying))
}

// RecordRender records one render attempt.
func (m *Manager) RecordRender(latency time.Duration, err error) {
	if m == nil || !m.enabled {
		return
	}
	m.renderLatency.Observe(float64(latency) / float64(time.Millisecond))
	if err != nil {
		m.documentsFailed.Inc()
		return
	}
	m.documentsRendered.Inc()
}

// RecordRun records a finished run. outcome is a short label such as
// "completed", "input_missing" or "fatal".
func (m *Manager) RecordRun(outcome string, duration time.Duration, finished time.Time) {
	if m == nil || !m.enabled {
		return
	}
	m.runsByOutcome.WithLabelValues(outcome).Inc()
	m.runDuration.Set(duration.Seconds())
	m.runLastUnix.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric in the text exposition format, for
// node_exporter's textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

// Registry returns the registry holding the metrics.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
