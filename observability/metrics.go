package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Screening metrics
	ScreenRequestsTotal *prometheus.CounterVec
	ScreenCandidates    *prometheus.HistogramVec

	// Aggregation metrics
	ProfilesAggregatedTotal prometheus.Counter
	ProfilesSkippedTotal    *prometheus.CounterVec

	// Recommendation metrics
	RecommendationRequestsTotal  prometheus.Counter
	RecommendationSentinelsTotal *prometheus.CounterVec
	RecommendationDuration       *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// candidateBuckets are histogram buckets for screener candidate counts
var candidateBuckets = []float64{0, 1, 5, 10, 20, 30, 40, 50}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		ScreenRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "screening",
				Name:      "requests_total",
				Help:      "Total number of screener runs by market",
			},
			[]string{"market"},
		),
		ScreenCandidates: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_advisor",
				Subsystem: "screening",
				Name:      "candidates",
				Help:      "Distribution of candidate counts returned by the screener",
				Buckets:   candidateBuckets,
			},
			[]string{"market"},
		),
		ProfilesAggregatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "aggregation",
				Name:      "profiles_total",
				Help:      "Total number of quantitative profiles assembled",
			},
		),
		ProfilesSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "aggregation",
				Name:      "skipped_total",
				Help:      "Total number of candidates skipped during aggregation",
			},
			[]string{"reason"},
		),
		RecommendationRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "recommendation",
				Name:      "requests_total",
				Help:      "Total number of recommendation requests",
			},
		),
		RecommendationSentinelsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "recommendation",
				Name:      "sentinels_total",
				Help:      "Total number of sentinel responses by kind",
			},
			[]string{"kind"},
		),
		RecommendationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_advisor",
				Subsystem: "recommendation",
				Name:      "duration_seconds",
				Help:      "End-to-end duration of the recommendation pipeline",
				Buckets:   defaultBuckets,
			},
			[]string{"status"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_advisor",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_advisor",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_advisor",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stock_advisor",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_advisor",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
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

// RecordScreen records a screener run and its candidate count
func (m *Metrics) RecordScreen(market string, candidates int) {
	m.ScreenRequestsTotal.WithLabelValues(market).Inc()
	m.ScreenCandidates.WithLabelValues(market).Observe(float64(candidates))
}

// RecordProfileAggregated records one successfully assembled profile
func (m *Metrics) RecordProfileAggregated() {
	m.ProfilesAggregatedTotal.Inc()
}

// RecordProfileSkipped records a candidate skipped during aggregation
func (m *Metrics) RecordProfileSkipped(reason string) {
	m.ProfilesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRecommendationRequest records a recommendation request
func (m *Metrics) RecordRecommendationRequest() {
	m.RecommendationRequestsTotal.Inc()
}

// RecordSentinel records a sentinel response by kind
func (m *Metrics) RecordSentinel(kind string) {
	m.RecommendationSentinelsTotal.WithLabelValues(kind).Inc()
}

// RecordRecommendationDuration records the pipeline duration
func (m *Metrics) RecordRecommendationDuration(status string, duration time.Duration) {
	m.RecommendationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
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

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveRecommendation records the pipeline duration and status
func (t *Timer) ObserveRecommendation(status string) {
	t.metrics.RecordRecommendationDuration(status, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
