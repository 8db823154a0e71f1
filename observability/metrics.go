package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Pipeline metrics
	PipelineRunsTotal   *prometheus.CounterVec
	PipelineDuration    *prometheus.HistogramVec
	StageDuration       *prometheus.HistogramVec
	HoldingsPerUpload   prometheus.Histogram
	HoldingErrorsTotal  *prometheus.CounterVec
	RecommendationTotal *prometheus.CounterVec

	// Verdict metrics
	VerdictTotal         *prometheus.CounterVec
	VerdictFallbackTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// holdingsBuckets cover typical retail portfolio sizes
var holdingsBuckets = []float64{1, 2, 5, 10, 20, 50, 100}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of portfolio analysis runs",
			},
			[]string{"status"},
		),
		PipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "End-to-end duration of a portfolio analysis run",
				Buckets:   defaultBuckets,
			},
			[]string{"status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages",
				Buckets:   defaultBuckets,
			},
			[]string{"stage"},
		),
		HoldingsPerUpload: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "pipeline",
				Name:      "holdings_per_upload",
				Help:      "Number of holdings parsed from an uploaded portfolio",
				Buckets:   holdingsBuckets,
			},
		),
		HoldingErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "pipeline",
				Name:      "holding_errors_total",
				Help:      "Per-holding enrichment failures by error type",
			},
			[]string{"error_type"},
		),
		RecommendationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "analysis",
				Name:      "recommendations_total",
				Help:      "Recommendations produced, by action and urgency",
			},
			[]string{"action", "urgency"},
		),
		VerdictTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "analysis",
				Name:      "verdicts_total",
				Help:      "AI verdicts produced, by kind and label",
			},
			[]string{"kind", "label"},
		),
		VerdictFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "analysis",
				Name:      "verdict_fallbacks_total",
				Help:      "Verdicts degraded to neutral because the AI response was unusable",
			},
			[]string{"kind"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"provider", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"provider", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"provider", "operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"provider"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_analyst",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"provider"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordPipelineRun records a completed pipeline run
func (m *Metrics) RecordPipelineRun(status string, duration time.Duration) {
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	m.PipelineDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordStageDuration records the duration of one pipeline stage
func (m *Metrics) RecordStageDuration(stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordHoldingsCount records the number of holdings in an upload
func (m *Metrics) RecordHoldingsCount(n int) {
	m.HoldingsPerUpload.Observe(float64(n))
}

// RecordHoldingError records a per-holding enrichment failure
func (m *Metrics) RecordHoldingError(errorType string) {
	m.HoldingErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordRecommendation records a synthesized recommendation
func (m *Metrics) RecordRecommendation(action, urgency string) {
	m.RecommendationTotal.WithLabelValues(action, urgency).Inc()
}

// RecordVerdict records an AI verdict
func (m *Metrics) RecordVerdict(kind, label string) {
	m.VerdictTotal.WithLabelValues(kind, label).Inc()
}

// RecordVerdictFallback records a verdict degraded to neutral
func (m *Metrics) RecordVerdictFallback(kind string) {
	m.VerdictFallbackTotal.WithLabelValues(kind).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(provider, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(provider, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(provider, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(provider, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(provider, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(provider string, state int) {
	m.CircuitBreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(provider string) {
	m.CircuitBreakerTrips.WithLabelValues(provider).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObservePipeline records the pipeline duration and status
func (t *Timer) ObservePipeline(status string) {
	t.metrics.RecordPipelineRun(status, time.Since(t.start))
}

// ObserveStage records a stage duration
func (t *Timer) ObserveStage(stage string) {
	t.metrics.RecordStageDuration(stage, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(provider, operation string) {
	t.metrics.RecordExternalAPIDuration(provider, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
