package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Verify all metrics are initialized
	if m.ScreenRequestsTotal == nil {
		t.Error("ScreenRequestsTotal is nil")
	}
	if m.ScreenCandidates == nil {
		t.Error("ScreenCandidates is nil")
	}
	if m.ProfilesAggregatedTotal == nil {
		t.Error("ProfilesAggregatedTotal is nil")
	}
	if m.ProfilesSkippedTotal == nil {
		t.Error("ProfilesSkippedTotal is nil")
	}
	if m.RecommendationRequestsTotal == nil {
		t.Error("RecommendationRequestsTotal is nil")
	}
	if m.RecommendationSentinelsTotal == nil {
		t.Error("RecommendationSentinelsTotal is nil")
	}
	if m.RecommendationDuration == nil {
		t.Error("RecommendationDuration is nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal is nil")
	}
	if m.ExternalAPIErrorsTotal == nil {
		t.Error("ExternalAPIErrorsTotal is nil")
	}
	if m.ExternalAPIDuration == nil {
		t.Error("ExternalAPIDuration is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
	if m.CircuitBreakerTrips == nil {
		t.Error("CircuitBreakerTrips is nil")
	}
}

func TestRecordScreen(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordScreen("US", 40)
	m.RecordScreen("US", 0)
	m.RecordScreen("IN", 12)

	usCount := testutil.ToFloat64(m.ScreenRequestsTotal.WithLabelValues("US"))
	if usCount != 2 {
		t.Errorf("Expected US count to be 2, got %f", usCount)
	}

	inCount := testutil.ToFloat64(m.ScreenRequestsTotal.WithLabelValues("IN"))
	if inCount != 1 {
		t.Errorf("Expected IN count to be 1, got %f", inCount)
	}
}

func TestRecordAggregation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordProfileAggregated()
	m.RecordProfileAggregated()
	m.RecordProfileSkipped("profile_fetch")
	m.RecordProfileSkipped("profile_fetch")
	m.RecordProfileSkipped("missing_symbol")

	aggregated := testutil.ToFloat64(m.ProfilesAggregatedTotal)
	if aggregated != 2 {
		t.Errorf("Expected aggregated count to be 2, got %f", aggregated)
	}

	skipped := testutil.ToFloat64(m.ProfilesSkippedTotal.WithLabelValues("profile_fetch"))
	if skipped != 2 {
		t.Errorf("Expected profile_fetch skip count to be 2, got %f", skipped)
	}
}

func TestRecordSentinel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordSentinel("no_stocks_found")
	m.RecordSentinel("no_stocks_found")
	m.RecordSentinel("ai_format_error")

	noStocks := testutil.ToFloat64(m.RecommendationSentinelsTotal.WithLabelValues("no_stocks_found"))
	if noStocks != 2 {
		t.Errorf("Expected no_stocks_found count to be 2, got %f", noStocks)
	}

	aiErr := testutil.ToFloat64(m.RecommendationSentinelsTotal.WithLabelValues("ai_format_error"))
	if aiErr != 1 {
		t.Errorf("Expected ai_format_error count to be 1, got %f", aiErr)
	}
}

func TestRecordExternalAPI(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIRequest("fmp", "screen")
	m.RecordExternalAPIRequest("fmp", "screen")
	m.RecordExternalAPIError("fmp", "screen", "timeout")
	m.RecordExternalAPIDuration("fmp", "screen", 150*time.Millisecond)

	requests := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("fmp", "screen"))
	if requests != 2 {
		t.Errorf("Expected fmp/screen request count to be 2, got %f", requests)
	}

	errors := testutil.ToFloat64(m.ExternalAPIErrorsTotal.WithLabelValues("fmp", "screen", "timeout"))
	if errors != 1 {
		t.Errorf("Expected fmp/screen timeout count to be 1, got %f", errors)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("POST", "/api/recommendations", "200", 250*time.Millisecond, 512)
	m.RecordHTTPRequest("POST", "/api/recommendations", "200", 100*time.Millisecond, 256)
	m.RecordHTTPRequest("GET", "/api/health", "200", 5*time.Millisecond, 64)

	recCount := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/recommendations", "200"))
	if recCount != 2 {
		t.Errorf("Expected recommendations count to be 2, got %f", recCount)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetCircuitBreakerState("fmp", 2)
	m.RecordCircuitBreakerTrip("fmp")

	state := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("fmp"))
	if state != 2 {
		t.Errorf("Expected fmp breaker state to be 2, got %f", state)
	}

	trips := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("fmp"))
	if trips != 1 {
		t.Errorf("Expected fmp trip count to be 1, got %f", trips)
	}
}

func TestTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.NewTimer()
	time.Sleep(10 * time.Millisecond)

	if timer.Duration() < 10*time.Millisecond {
		t.Errorf("Timer duration = %v, want >= 10ms", timer.Duration())
	}

	// Just verify the observers don't panic
	timer.ObserveExternalAPI("fmp", "profile")
	timer.ObserveRecommendation("success")
}
