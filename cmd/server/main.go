// Package main runs the stock advisor HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock-advisor/advisor"
	"stock-advisor/config"
	"stock-advisor/internal/api"
	"stock-advisor/observability"
	"stock-advisor/services"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	production := os.Getenv("APP_ENV") == "production"
	observability.InitLogger(production)
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	if !cfg.HasFMP() {
		observability.Fatal("FMP_API_KEY environment variable is required")
	}
	if !cfg.HasLLM() {
		observability.Fatal("no credentials for the configured LLM provider",
			"provider", cfg.Advisor.Provider)
	}

	ctx := context.Background()

	fmpService := services.NewFMPService(cfg.FMP.APIKey, time.Duration(cfg.FMP.TimeoutSeconds)*time.Second)

	llmService, err := newLLMService(ctx, cfg)
	if err != nil {
		observability.Fatal("failed to initialize LLM service", "error", err)
	}
	observability.Info("LLM service initialized", "provider", cfg.Advisor.Provider)

	pipeline := advisor.New(fmpService, llmService, cfg)

	handler := api.NewHandler(pipeline, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.Advisor.TimeoutSeconds+10) * time.Second,
	}

	// Start server in goroutine
	go func() {
		observability.Info("starting server",
			"port", cfg.HTTP.Port,
			"url", fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}

// newLLMService constructs the LLM backend named by LLM_PROVIDER
func newLLMService(ctx context.Context, cfg *config.Config) (services.LLMServiceInterface, error) {
	switch cfg.Advisor.Provider {
	case config.ProviderGemini:
		return services.NewGeminiService(ctx, cfg)
	default:
		return services.NewOpenAIService(cfg)
	}
}
