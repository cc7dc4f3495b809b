package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets    = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	backendDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

// Metrics holds all Prometheus metric instruments for the console.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Session metrics
	LoginsTotal          *prometheus.CounterVec
	SessionsExpiredTotal prometheus.Counter

	// Robot command metrics
	RobotCommandsTotal   *prometheus.CounterVec
	RobotCommandDuration *prometheus.HistogramVec
	RevertsFiredTotal    prometheus.Counter

	// Prediction metrics
	PredictionsTotal *prometheus.CounterVec

	// Backend invocation metrics
	BackendRequestsTotal       *prometheus.CounterVec
	BackendRequestDuration     *prometheus.HistogramVec
	BackendCircuitBreakerState prometheus.Gauge
	BackendRetriesTotal        prometheus.Counter
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedbot_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seedbot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedbot_logins_total",
			Help: "Total number of login attempts.",
		}, []string{"status"}),
		SessionsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedbot_sessions_expired_total",
			Help: "Total number of sessions dropped by the inactivity watchdog.",
		}),

		RobotCommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedbot_robot_commands_total",
			Help: "Total number of robot commands issued.",
		}, []string{"action", "status"}),
		RobotCommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seedbot_robot_command_duration_seconds",
			Help:    "Robot command round-trip duration in seconds.",
			Buckets: backendDurationBuckets,
		}, []string{"action"}),
		RevertsFiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedbot_robot_reverts_fired_total",
			Help: "Total number of revert-to-Standby timers that fired.",
		}),

		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedbot_crop_predictions_total",
			Help: "Total number of crop suitability estimates.",
		}, []string{"source"}),

		BackendRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedbot_backend_requests_total",
			Help: "Total number of backend requests.",
		}, []string{"method", "path", "status"}),
		BackendRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seedbot_backend_request_duration_seconds",
			Help:    "Backend request duration in seconds.",
			Buckets: backendDurationBuckets,
		}, []string{"method", "path"}),
		BackendCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedbot_backend_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		BackendRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedbot_backend_retries_total",
			Help: "Total number of backend request retries.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.SessionsExpiredTotal,
		m.RobotCommandsTotal,
		m.RobotCommandDuration,
		m.RevertsFiredTotal,
		m.PredictionsTotal,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.BackendCircuitBreakerState,
		m.BackendRetriesTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(status string) {
	m.LoginsTotal.WithLabelValues(status).Inc()
}

// RecordRobotCommand records one command issuance.
func (m *Metrics) RecordRobotCommand(action, status string, duration time.Duration) {
	m.RobotCommandsTotal.WithLabelValues(action, status).Inc()
	m.RobotCommandDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordPrediction records a crop estimate by source ("ml" or "fallback").
func (m *Metrics) RecordPrediction(source string) {
	m.PredictionsTotal.WithLabelValues(source).Inc()
}

// RecordSessionExpired records one inactivity-watchdog expiry.
func (m *Metrics) RecordSessionExpired() {
	m.SessionsExpiredTotal.Inc()
}

// RecordRevertFired records one revert-to-Standby timer firing.
func (m *Metrics) RecordRevertFired() {
	m.RevertsFiredTotal.Inc()
}

// RecordBackendRequest records a backend request.
func (m *Metrics) RecordBackendRequest(method, path string, status int, duration time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.BackendRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics
// using chi's route pattern (not the actual URL path) to avoid label
// cardinality explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, routePattern(r)).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}
