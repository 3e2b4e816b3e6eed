// Package metrics exposes Prometheus counters for market activity and HTTP
// traffic. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zamenjava"

// Trade request outcomes.
const (
	OutcomeCreated      = "created"
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "rejected"
	OutcomeAutoRejected = "auto_rejected"
	OutcomeCancelled    = "cancelled"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	TradeRequests *prometheus.CounterVec
	Trades        *prometheus.CounterVec
	Ratings       *prometheus.CounterVec
	LoyaltyPoints prometheus.Counter

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TradeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trade_requests_total",
				Help:      "Trade requests by outcome.",
			},
			[]string{"outcome"},
		),
		Trades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Trades by status reached.",
			},
			[]string{"status"},
		),
		Ratings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratings_total",
				Help:      "Ratings submitted by star value.",
			},
			[]string{"stars"},
		),
		LoyaltyPoints: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loyalty_points_credited_total",
				Help:      "Loyalty points credited to reviewees.",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TradeRequest counts a trade request outcome.
func (m *Metrics) TradeRequest(outcome string) {
	if m == nil {
		return
	}
	m.TradeRequests.WithLabelValues(outcome).Inc()
}

// Trade counts a trade reaching status.
func (m *Metrics) Trade(status string) {
	if m == nil {
		return
	}
	m.Trades.WithLabelValues(status).Inc()
}

// Rating counts a submitted rating and the points it credited.
func (m *Metrics) Rating(stars, points int) {
	if m == nil {
		return
	}
	m.Ratings.WithLabelValues(strconv.Itoa(stars)).Inc()
	m.LoyaltyPoints.Add(float64(points))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records a count and duration for every request. The route label
// is the ServeMux pattern that matched.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
