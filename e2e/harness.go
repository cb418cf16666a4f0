// Package e2e provides end-to-end testing infrastructure: the real
// router and pipeline wired against mock external services.
package e2e

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-advisor/advisor"
	"stock-advisor/config"
	"stock-advisor/e2e/mocks"
	"stock-advisor/internal/api"
	"stock-advisor/services"
)

// TestHarness runs the full pipeline behind the real HTTP router, with
// the market-data provider replaced by a mock server and the LLM by a
// scripted backend.
type TestHarness struct {
	t      *testing.T
	FMP    *mocks.FMPServer
	LLM    *mocks.ScriptedLLM
	Config *config.Config
	router http.Handler
}

// NewTestHarness builds a ready-to-use harness and registers cleanup
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	// Fresh breakers per test so failure scenarios stay isolated
	services.SetGlobalRegistry(services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig))

	fmpMock := mocks.NewFMPServer()
	t.Cleanup(fmpMock.Close)

	t.Setenv("FMP_BASE_URL", fmpMock.URL())

	cfg := config.NewTestConfig()
	cfg.FMP.APIKey = "e2e-test-key"

	fmpService := services.NewFMPService(cfg.FMP.APIKey, 5*time.Second)
	llm := &mocks.ScriptedLLM{}

	pipeline := advisor.New(fmpService, llm, cfg)
	handler := api.NewHandler(pipeline, cfg)

	return &TestHarness{
		t:      t,
		FMP:    fmpMock,
		LLM:    llm,
		Config: cfg,
		router: api.NewRouter(handler, cfg),
	}
}

// DoRequest performs an HTTP request against the router
func (h *TestHarness) DoRequest(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// Router returns the HTTP router for making requests directly
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// SkipIfShort skips E2E scenarios under go test -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping E2E scenario in short mode")
	}
}
