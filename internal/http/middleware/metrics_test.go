package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters_Histograms_InflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	// Route with body → positive size (observed)
	r.GET("/deals", func(c *gin.Context) {
		c.String(http.StatusOK, `[]`) // writes body (size >= 0)
	})

	// Route with status only → size stays -1 (skipped in size histogram)
	r.DELETE("/deals/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent) // 204, no body => size -1
	})

	// Baselines before we hit the routes (to avoid interference from other tests)
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/deals", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))

	// 1) Hit /deals (matches route → path label is "/deals")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /deals -> %d", w.Code)
	}

	// 2) Hit a missing route (no match → fallback to raw URL path label)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /does-not-exist -> %d", w.Code)
	}

	// 3) Hit the no-body route (size -1 path executed, route pattern label)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/deals/7", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /deals/7 -> %d", w.Code)
	}

	// --- Assertions ---

	// Counters for specific label sets should have incremented by 1
	gotOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/deals", "200"))
	if gotOK != baseOK+1 {
		t.Fatalf("counter /deals 200 = %v; want %v", gotOK, baseOK+1)
	}

	// 404 path uses raw URL (fallback)
	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	// The delete route is labeled by the registered pattern, not the raw URL.
	gotDel := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/deals/:id", "204"))
	if gotDel < 1 {
		t.Fatalf("counter DELETE /deals/:id 204 = %v; want >= 1", gotDel)
	}

	// In-flight gauge should be 0 after requests complete
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}

	// We don't assert exact histogram bucket counts (they’re timing-dependent),
	// but by executing the code paths above we hit both:
	// - httpLat.WithLabelValues(method, path).Observe(...)
	// - httpRespSize.WithLabelValues(method, path).Observe(...) when size>=0
	// and skip when size<0.
}

func TestMetrics_SeriesCarryServicePrefix(t *testing.T) {
	// The collectors register under the crm_http prefix so this service's
	// series never collide with another backend scraped by the same
	// Prometheus. Touch one series per vector so every family is gatherable
	// regardless of test order.
	httpReqs.WithLabelValues("GET", "/health", "200")
	httpLat.WithLabelValues("GET", "/health")
	httpRespSize.WithLabelValues("GET", "/health")

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	want := map[string]bool{
		"crm_http_requests_total":           false,
		"crm_http_request_duration_seconds": false,
		"crm_http_requests_inflight":        false,
		"crm_http_response_size_bytes":      false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("metric family %q not registered", name)
		}
	}
}
