package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for ForgeCAD.
type Metrics struct {
	config MetricsConfig

	// Build metrics
	buildsStarted   *prometheus.CounterVec
	buildsCompleted *prometheus.CounterVec
	buildDuration   *prometheus.HistogramVec

	// Operation metrics
	operationsExecuted *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	// Engine metrics
	engineSelections *prometheus.CounterVec
	engineFallbacks  *prometheus.CounterVec

	// Export metrics
	exportsWritten *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	// System metrics
	activeBuilds prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	// Create a new registry
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		// Build metrics
		buildsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_started_total",
				Help:      "Total number of builds started",
			},
			[]string{"engine"},
		),
		buildsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_completed_total",
				Help:      "Total number of builds completed",
			},
			[]string{"status"},
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Duration of build execution in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		// Operation metrics
		operationsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_executed_total",
				Help:      "Total number of pipeline operations executed",
			},
			[]string{"kind", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of pipeline operations in seconds",
				Buckets:   buckets,
			},
			[]string{"kind", "engine"},
		),

		// Engine metrics
		engineSelections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_selections_total",
				Help:      "Total number of engine selections by name",
			},
			[]string{"engine", "reason"},
		),
		engineFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_fallbacks_total",
				Help:      "Total number of mid-build engine fallbacks",
			},
			[]string{"from", "to", "op"},
		),

		// Export metrics
		exportsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_written_total",
				Help:      "Total number of artifact files exported",
			},
			[]string{"format"},
		),
		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of artifact export in seconds",
				Buckets:   buckets,
			},
			[]string{"format"},
		),

		// Error metrics
		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),

		// System metrics
		activeBuilds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_builds",
				Help:      "Current number of active builds",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.buildsStarted,
		m.buildsCompleted,
		m.buildDuration,
		m.operationsExecuted,
		m.operationDuration,
		m.engineSelections,
		m.engineFallbacks,
		m.exportsWritten,
		m.exportDuration,
		m.errorsByClass,
		m.activeBuilds,
	)

	return m, nil
}

// Build Metrics

// RecordBuildStarted increments the counter for started builds.
func (m *Metrics) RecordBuildStarted(engine string) {
	if m.buildsStarted == nil {
		return
	}
	m.buildsStarted.WithLabelValues(engine).Inc()
	m.activeBuilds.Inc()
}

// RecordBuildCompleted records a completed build with its status and duration.
func (m *Metrics) RecordBuildCompleted(status string, duration time.Duration) {
	if m.buildsCompleted == nil {
		return
	}
	m.buildsCompleted.WithLabelValues(status).Inc()
	m.buildDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.activeBuilds.Dec()
}

// Operation Metrics

// RecordOperation records the execution of one pipeline operation.
func (m *Metrics) RecordOperation(kind, status, engine string, duration time.Duration) {
	if m.operationsExecuted == nil {
		return
	}
	m.operationsExecuted.WithLabelValues(kind, status).Inc()
	m.operationDuration.WithLabelValues(kind, engine).Observe(duration.Seconds())
}

// Engine Metrics

// RecordEngineSelection records which engine a build selected and why.
func (m *Metrics) RecordEngineSelection(engine, reason string) {
	if m.engineSelections == nil {
		return
	}
	m.engineSelections.WithLabelValues(engine, reason).Inc()
}

// RecordEngineFallback records a mid-build switch to the fallback engine.
func (m *Metrics) RecordEngineFallback(from, to, op string) {
	if m.engineFallbacks == nil {
		return
	}
	m.engineFallbacks.WithLabelValues(from, to, op).Inc()
}

// Export Metrics

// RecordExport records one exported artifact file.
func (m *Metrics) RecordExport(format string, duration time.Duration) {
	if m.exportsWritten == nil {
		return
	}
	m.exportsWritten.WithLabelValues(format).Inc()
	m.exportDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// Error Metrics

// RecordError records an error by class.
func (m *Metrics) RecordError(errorClass string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// System Metrics

// SetActiveBuilds sets the current number of active builds.
func (m *Metrics) SetActiveBuilds(count float64) {
	if m.activeBuilds == nil {
		return
	}
	m.activeBuilds.Set(count)
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
