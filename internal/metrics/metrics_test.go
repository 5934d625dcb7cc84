package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.Conversion(OutcomeOK)
	m.Conversion(OutcomeOK)
	m.Conversion(OutcomeFailed)
	m.Building("merchant")
	m.Npcs(3)
	m.Warning("dangling_reference")

	if got := testutil.ToFloat64(m.conversions.WithLabelValues(OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok conversions, got %v", got)
	}
	if got := testutil.ToFloat64(m.npcs); got != 3 {
		t.Fatalf("expected 3 npcs, got %v", got)
	}
	if got := testutil.ToFloat64(m.buildings.WithLabelValues("merchant")); got != 1 {
		t.Fatalf("expected 1 merchant, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "settlecraft_conversion_warnings_total") {
		t.Fatalf("expected warnings counter in exposition")
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.Conversion(OutcomeOK)
	m.Building("house")
	m.Npcs(1)
	m.Warning("x")
	m.Published()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
