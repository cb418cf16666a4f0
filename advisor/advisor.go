// Package advisor orchestrates the recommendation pipeline: interpret
// the query, screen for candidates, aggregate quantitative profiles and
// hand the ranking to the configured LLM.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"stock-advisor/config"
	"stock-advisor/models"
	"stock-advisor/observability"
	"stock-advisor/screener"
	"stock-advisor/services"
)

// Advisor runs the query-to-recommendation pipeline
type Advisor struct {
	fmp services.FMPServiceInterface
	llm services.LLMServiceInterface
	cfg *config.Config
}

// New creates an Advisor wired to the given market-data and LLM services
func New(fmp services.FMPServiceInterface, llm services.LLMServiceInterface, cfg *config.Config) *Advisor {
	return &Advisor{
		fmp: fmp,
		llm: llm,
		cfg: cfg,
	}
}

// Recommend turns a free-text query into ranked picks. Pipeline stages
// that come up empty return a sentinel row instead of an error; only an
// LLM transport failure propagates as an error.
func (a *Advisor) Recommend(ctx context.Context, query string) ([]models.Recommendation, error) {
	metrics := observability.GetMetrics()
	metrics.RecordRecommendationRequest()
	timer := metrics.NewTimer()

	runID := uuid.NewString()
	log := observability.WithRun(runID)

	filters := screener.Interpret(query, a.cfg.Screener)
	log.Info("screening candidates",
		"query", query,
		"market", filters.Market,
		"price_max", filters.PriceMax)

	candidates, err := a.fmp.Screen(ctx, filters)
	if err != nil {
		log.Warn("screener call failed", "error", err)
		metrics.RecordSentinel("no_stocks_found")
		timer.ObserveRecommendation("sentinel")
		return models.NoStocksFound(), nil
	}
	metrics.RecordScreen(filters.Market, len(candidates))

	if len(candidates) == 0 {
		log.Info("screener returned no candidates")
		metrics.RecordSentinel("no_stocks_found")
		timer.ObserveRecommendation("sentinel")
		return models.NoStocksFound(), nil
	}

	profiles := a.aggregateProfiles(ctx, log, candidates)
	if len(profiles) == 0 {
		log.Warn("no quantitative profiles could be assembled",
			"candidates", len(candidates))
		metrics.RecordSentinel("aggregation_failed")
		timer.ObserveRecommendation("sentinel")
		return models.AggregationFailed(), nil
	}

	userPrompt, err := buildUserPrompt(query, profiles)
	if err != nil {
		timer.ObserveRecommendation("error")
		return nil, err
	}

	log.Info("requesting ranking",
		"provider", a.cfg.Advisor.Provider,
		"profiles", len(profiles))

	raw, err := a.llm.InvokeWithPrompt(ctx, analystSystemPrompt, userPrompt)
	if err != nil {
		timer.ObserveRecommendation("error")
		return nil, fmt.Errorf("ranking request failed: %w", err)
	}

	recs, err := ExtractJSONArray(raw)
	if err != nil {
		log.Warn("model output was not a parseable recommendation array", "error", err)
		metrics.RecordSentinel("ai_format_error")
		timer.ObserveRecommendation("sentinel")
		return models.AIFormatError(), nil
	}

	log.Info("recommendations produced", "count", len(recs))
	timer.ObserveRecommendation("success")
	return recs, nil
}

// aggregateProfiles fetches profile and ratio data for the leading
// candidates sequentially. A failed profile fetch skips the ticker; a
// failed ratio fetch keeps the ticker with nil ratio fields.
func (a *Advisor) aggregateProfiles(ctx context.Context, log *slog.Logger, candidates []models.Candidate) []models.QuantProfile {
	metrics := observability.GetMetrics()

	limit := a.cfg.Advisor.MaxProfiles
	if limit > len(candidates) {
		limit = len(candidates)
	}

	profiles := make([]models.QuantProfile, 0, limit)
	for _, candidate := range candidates[:limit] {
		if ctx.Err() != nil {
			break
		}

		details, err := a.fmp.GetProfile(ctx, candidate.Symbol)
		if err != nil {
			log.Warn("skipping candidate, profile fetch failed",
				"symbol", candidate.Symbol,
				"error", err)
			metrics.RecordProfileSkipped("profile_fetch")
			continue
		}

		profile := models.QuantProfile{
			Ticker:      details.Symbol,
			CompanyName: details.CompanyName,
			Sector:      details.Sector,
			MarketCap:   details.MarketCap,
			Price:       details.Price,
		}

		ratios, err := a.fmp.GetRatios(ctx, candidate.Symbol)
		if err != nil {
			log.Warn("keeping candidate without ratios",
				"symbol", candidate.Symbol,
				"error", err)
			metrics.RecordProfileSkipped("ratios_fetch")
		} else {
			profile.PERatio = ratios.PERatio
			profile.PriceToSalesRatio = ratios.PriceToSalesRatio
			profile.ReturnOnEquity = ratios.ReturnOnEquity
			profile.DebtToEquityRatio = ratios.DebtToEquityRatio
		}

		profiles = append(profiles, profile)
		metrics.RecordProfileAggregated()
	}

	return profiles
}

// GetDetails returns the flat detail record for one ticker. ErrNoData
// passes through for the handler to map to 404.
func (a *Advisor) GetDetails(ctx context.Context, symbol string) (*models.StockDetails, error) {
	return a.fmp.GetProfile(ctx, symbol)
}

// GetDashboard assembles the nested single-ticker view. The profile is
// required; quote, fundamentals and technicals are best-effort sections
// omitted when their fetch fails.
func (a *Advisor) GetDashboard(ctx context.Context, symbol string) (*models.Dashboard, error) {
	details, err := a.fmp.GetProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	log := observability.WithSymbol(symbol)
	dashboard := &models.Dashboard{Profile: *details}

	if quote, err := a.fmp.GetQuote(ctx, symbol); err == nil {
		dashboard.LiveQuote = quote
	} else if !errors.Is(err, services.ErrNoData) {
		log.Warn("dashboard quote section unavailable", "error", err)
	}

	if fundamentals, err := a.fmp.GetRatios(ctx, symbol); err == nil {
		dashboard.Fundamentals = fundamentals
	} else if !errors.Is(err, services.ErrNoData) {
		log.Warn("dashboard fundamentals section unavailable", "error", err)
	}

	if technicals, err := a.fmp.GetTechnicals(ctx, symbol); err == nil {
		dashboard.Technicals = technicals
	} else if !errors.Is(err, services.ErrNoData) {
		log.Warn("dashboard technicals section unavailable", "error", err)
	}

	return dashboard, nil
}
