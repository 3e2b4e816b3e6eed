package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TradeRequest(OutcomeCreated)
	m.TradeRequest(OutcomeCreated)
	m.TradeRequest(OutcomeAutoRejected)
	m.Trade("COMPLETED")
	m.Rating(5, 25)
	m.Rating(3, 15)

	if got := testutil.ToFloat64(m.TradeRequests.WithLabelValues(OutcomeCreated)); got != 2 {
		t.Errorf("expected 2 created requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.TradeRequests.WithLabelValues(OutcomeAutoRejected)); got != 1 {
		t.Errorf("expected 1 auto-rejected request, got %v", got)
	}
	if got := testutil.ToFloat64(m.Trades.WithLabelValues("COMPLETED")); got != 1 {
		t.Errorf("expected 1 completed trade, got %v", got)
	}
	if got := testutil.ToFloat64(m.Ratings.WithLabelValues("5")); got != 1 {
		t.Errorf("expected 1 five-star rating, got %v", got)
	}
	if got := testutil.ToFloat64(m.LoyaltyPoints); got != 40 {
		t.Errorf("expected 40 points, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.TradeRequest(OutcomeCreated)
	m.Trade("COMPLETED")
	m.Rating(5, 25)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if got := m.Middleware(h); got == nil {
		t.Error("expected middleware to pass handler through")
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/items/42", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "GET /api/items/{id}", "404"))
	if got != 1 {
		t.Errorf("expected 1 request recorded under route pattern, got %v", got)
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics handler, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "zamenjava_http_requests_total") {
		t.Error("expected exposition to contain http request counter")
	}
}
