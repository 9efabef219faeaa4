package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware results in request metrics being exposed via the
// Prometheus /metrics handler.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", http.MethodGet, "200"))
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", http.MethodGet, "200")); after != before+1 {
		t.Fatalf("counter before=%v after=%v", before, after)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !bytes.Contains(mrr.Body.Bytes(), []byte("healthrelay_http_requests_total")) {
		t.Fatalf("expected healthrelay_http_requests_total in metrics output")
	}
}

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "202"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "202")); after != before+1 {
		t.Fatalf("route pattern counter before=%v after=%v", before, after)
	}

	before = testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))
	if after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")); after != before+1 {
		t.Fatalf("unmatched counter before=%v after=%v", before, after)
	}
}

func TestPredictRecordsRoutePattern(t *testing.T) {
	h := NewMux(&mockPredictor{resp: []byte(samplePrediction)}, testOptions())
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/predict", http.MethodPost, "200"))
	postPredict(t, h, `{"ph":7}`)
	if after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/predict", http.MethodPost, "200")); after != before+1 {
		t.Fatalf("predict counter before=%v after=%v", before, after)
	}
}
