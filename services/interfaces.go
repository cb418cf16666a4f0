package services

import (
	"context"

	"stock-advisor/models"
)

// FMPServiceInterface defines the market-data operations the pipeline
// needs from the provider
type FMPServiceInterface interface {
	Screen(ctx context.Context, filters models.ScreenFilters) ([]models.Candidate, error)
	GetProfile(ctx context.Context, symbol string) (*models.StockDetails, error)
	GetRatios(ctx context.Context, symbol string) (*models.Fundamentals, error)
	GetQuote(ctx context.Context, symbol string) (*models.LiveQuote, error)
	GetTechnicals(ctx context.Context, symbol string) (*models.Technicals, error)
}

// LLMServiceInterface defines the single operation the ranking step
// needs from a hosted model, keeping the provider swappable
type LLMServiceInterface interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Compile-time interface verification
var _ LLMServiceInterface = (*OpenAIService)(nil)
var _ LLMServiceInterface = (*GeminiService)(nil)
