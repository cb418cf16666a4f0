package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"stock-advisor/config"
	"stock-advisor/models"
	"stock-advisor/services"
	"stock-advisor/templates"
)

// AdvisorInterface is the pipeline surface the handlers depend on
type AdvisorInterface interface {
	Recommend(ctx context.Context, query string) ([]models.Recommendation, error)
	GetDetails(ctx context.Context, symbol string) (*models.StockDetails, error)
	GetDashboard(ctx context.Context, symbol string) (*models.Dashboard, error)
}

// Handler handles HTTP API requests
type Handler struct {
	advisor AdvisorInterface
	cfg     *config.Config
}

// NewHandler creates a new Handler
func NewHandler(advisor AdvisorInterface, cfg *config.Config) *Handler {
	return &Handler{advisor: advisor, cfg: cfg}
}

// HandleIndex serves the main application page using templ
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index().Render(r.Context(), w)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"fmp": configuredState(h.cfg.HasFMP()),
			"llm": configuredState(h.cfg.HasLLM()),
		},
		"llm_provider": h.cfg.Advisor.Provider,
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

func configuredState(configured bool) string {
	if configured {
		return "configured"
	}
	return "not_configured"
}

// RecommendRequest represents a recommendation request
type RecommendRequest struct {
	Query string `json:"query"`
}

// HandleRecommend runs the recommendation pipeline for a free-text query
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.jsonError(w, "Query is required", http.StatusBadRequest)
		return
	}

	recs, err := h.advisor.Recommend(r.Context(), req.Query)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, recs)
}

// HandleStockDetails returns the flat detail record for one ticker
func (h *Handler) HandleStockDetails(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	details, err := h.advisor.GetDetails(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			h.jsonError(w, "Stock not found", http.StatusNotFound)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, details)
}

// HandleStockDashboard returns the nested dashboard view for one ticker
func (h *Handler) HandleStockDashboard(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	dashboard, err := h.advisor.GetDashboard(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			h.jsonError(w, "Stock not found", http.StatusNotFound)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, dashboard)
}

// symbolParam extracts and validates the symbol URL parameter, writing
// the error response itself when validation fails
func (h *Handler) symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if err := ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return symbol, true
}

// ValidateSymbol validates a stock symbol
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if len(symbol) > 12 {
		return fmt.Errorf("symbol too long (max 12 characters)")
	}

	matched, _ := regexp.MatchString("^[A-Z0-9.-]+$", symbol)
	if !matched {
		return fmt.Errorf("invalid symbol format (alphanumeric, dots, and dashes only)")
	}

	return nil
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
