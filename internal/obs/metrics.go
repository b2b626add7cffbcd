package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AlexKimmel/windowgate/internal/ratelimit"
	"github.com/AlexKimmel/windowgate/internal/routing"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Attempts        *prometheus.CounterVec
	RemainingBudget *prometheus.GaugeVec
	LimiterErrors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "windowgate_requests_total",
				Help: "Total HTTP requests processed",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "windowgate_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "windowgate_attempts_total",
				Help: "Limiter attempts by outcome",
			},
			[]string{"route", "result"},
		),
		RemainingBudget: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "windowgate_remaining_budget",
				Help: "Attempts left in the window of the most recent caller",
			},
			[]string{"route"},
		),
		LimiterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "windowgate_limiter_errors_total",
				Help: "Total rate limiter errors",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.Attempts, m.RemainingBudget, m.LimiterErrors)
	return m
}

// ObserveDecision matches gateway.Hooks.OnDecision.
func (m *Metrics) ObserveDecision(routeID string, d ratelimit.Decision) {
	result := "allowed"
	if !d.Allowed {
		result = "rejected"
	}
	m.Attempts.WithLabelValues(routeID, result).Inc()
	m.RemainingBudget.WithLabelValues(routeID).Set(float64(d.Remaining))
}

// ObserveError matches gateway.Hooks.OnError.
func (m *Metrics) ObserveError(routeID string) {
	m.LimiterErrors.WithLabelValues(routeID).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Middleware records per-request metrics.
// The route is read from the request context, so run it after RouteMatcher.
func (m *Metrics) Middleware(skip map[string]struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			route := "unknown"
			if rt, ok := routing.RouteFrom(r); ok && rt != nil && rt.ID != "" {
				route = rt.ID
			}

			code := rec.status
			if code == 0 {
				code = http.StatusOK
			}

			m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		})
	}
}
