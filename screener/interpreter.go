// Package screener turns free-text investment queries into the coarse
// filter set the market-data screener understands.
package screener

import (
	"regexp"
	"strconv"
	"strings"

	"stock-advisor/config"
	"stock-advisor/models"
	"stock-advisor/observability"
)

// priceCeilingPattern matches phrases like "under 50", "below $10.50",
// "less than 25", "upto 100", "up to 100".
var priceCeilingPattern = regexp.MustCompile(`(?:under|less than|below|upto|up to)\s*\$?(\d+(?:\.\d+)?)`)

const (
	pennyPriceCeiling   = 5
	revenueGrowthFloor  = 0.05
	valuePEMax          = 25
	valuePBMax          = 3
	incomeDividendFloor = 0.01
	incomeBetaMax       = 1.2
)

// Interpret derives screener filters from a raw query. Free text cannot
// fail interpretation; unrecognized queries fall through to the default
// market with only the volume floor and candidate limit applied.
func Interpret(query string, cfg config.ScreenerConfig) models.ScreenFilters {
	normalized := strings.ToLower(query)

	filters := models.ScreenFilters{
		Market:    cfg.DefaultMarket,
		VolumeMin: cfg.VolumeMin,
		Limit:     cfg.CandidateLimit,
	}

	if match := priceCeilingPattern.FindStringSubmatch(normalized); match != nil {
		if ceiling, err := strconv.ParseFloat(match[1], 64); err == nil && ceiling > 0 {
			filters.PriceMax = ceiling
		}
	}

	if strings.Contains(normalized, "growth") {
		filters.RevenueGrowthMin = revenueGrowthFloor
	}

	if strings.Contains(normalized, "undervalued") || strings.Contains(normalized, "cheap") {
		filters.PEMax = valuePEMax
		filters.PBMax = valuePBMax
		filters.ActiveOnly = true
	}

	if strings.Contains(normalized, "safe") || strings.Contains(normalized, "stable") || strings.Contains(normalized, "dividend") {
		filters.DividendYieldMin = incomeDividendFloor
		filters.BetaMax = incomeBetaMax
	}

	// An explicit ceiling in the query wins over the penny default
	if strings.Contains(normalized, "penny") && filters.PriceMax == 0 {
		filters.PriceMax = pennyPriceCeiling
	}

	if strings.Contains(normalized, "indian") {
		filters.Market = "IN"
	}

	observability.Debug("interpreted query",
		"query", query,
		"market", filters.Market,
		"price_max", filters.PriceMax)

	return filters
}
