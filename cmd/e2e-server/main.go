// Package main provides a standalone HTTP server for E2E testing. It
// runs the real routes and pipeline against a mock market-data provider
// and a scripted LLM, so browser tests need no credentials.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-advisor/advisor"
	"stock-advisor/config"
	"stock-advisor/e2e/mocks"
	"stock-advisor/internal/api"
	"stock-advisor/observability"
	"stock-advisor/services"
)

func main() {
	// Initialize logger in development mode for tests
	observability.InitLogger(false)
	observability.InitMetrics()

	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	fmpMock := mocks.NewFMPServer()
	defer fmpMock.Close()
	seedMockData(fmpMock)

	os.Setenv("FMP_BASE_URL", fmpMock.URL())

	cfg := config.NewTestConfig()
	cfg.FMP.APIKey = "e2e-test-key"
	cfg.HTTP.Port = port

	fmpService := services.NewFMPService(cfg.FMP.APIKey, 5*time.Second)
	llm := &mocks.ScriptedLLM{
		Response: `[{"ticker": "AAPL", "company_name": "Apple Inc.", "reason": "strongest fundamentals of the candidate set"}]`,
	}

	pipeline := advisor.New(fmpService, llm, cfg)
	handler := api.NewHandler(pipeline, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		observability.Info("starting E2E test server", "port", port, "fmp_mock", fmpMock.URL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down E2E test server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("E2E test server stopped")
}

func floatPtr(v float64) *float64 { return &v }

// seedMockData loads a small candidate universe into the mock provider
func seedMockData(m *mocks.FMPServer) {
	m.SetScreenerResults([]mocks.ScreenerResult{
		{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: 42.5, Volume: 900000, Country: "US", Sector: "Technology", IsActivelyTrading: true},
		{Symbol: "MSFT", CompanyName: "Microsoft", Price: 48.0, Volume: 800000, Country: "US", Sector: "Technology", IsActivelyTrading: true},
		{Symbol: "KO", CompanyName: "Coca-Cola", Price: 38.2, Volume: 700000, Country: "US", Sector: "Consumer Defensive", IsActivelyTrading: true},
	})
	m.SetProfile("AAPL",
		mocks.Profile{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: 42.5, MktCap: 2_500_000_000, Sector: "Technology"},
		mocks.Ratios{PERatio: floatPtr(28.5), ReturnOnEquity: floatPtr(0.43)})
	m.SetProfile("MSFT",
		mocks.Profile{Symbol: "MSFT", CompanyName: "Microsoft", Price: 48.0, MktCap: 2_800_000_000, Sector: "Technology"},
		mocks.Ratios{PERatio: floatPtr(32.1), ReturnOnEquity: floatPtr(0.38)})
	m.SetProfile("KO",
		mocks.Profile{Symbol: "KO", CompanyName: "Coca-Cola", Price: 38.2, MktCap: 260_000_000, Sector: "Consumer Defensive"},
		mocks.Ratios{PERatio: floatPtr(22.4)})
}
