package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	appconfig "stock-advisor/config"
	"stock-advisor/observability"
)

// geminiClient defines the interface for Gemini API calls (for testing)
type geminiClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// geminiClientWrapper wraps the genai.Client to implement our interface
type geminiClientWrapper struct {
	client *genai.Client
}

func (w *geminiClientWrapper) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return w.client.Models.GenerateContent(ctx, model, contents, config)
}

// GeminiService handles communication with the Google Gemini API
type GeminiService struct {
	client geminiClient
	model  string
}

// NewGeminiService creates a new GeminiService instance
func NewGeminiService(ctx context.Context, cfg *appconfig.Config) (*GeminiService, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client: &geminiClientWrapper{client: genaiClient},
		model:  cfg.Gemini.Model,
	}, nil
}

// newGeminiServiceWithClient creates a GeminiService with a custom client (for testing)
func newGeminiServiceWithClient(client geminiClient, model string) *GeminiService {
	return &GeminiService{
		client: client,
		model:  model,
	}
}

// InvokeWithPrompt sends a prompt to Gemini and returns the response text
func (s *GeminiService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerGemini, "invoke")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerGemini, func() (string, error) {
		var config *genai.GenerateContentConfig
		if systemPrompt != "" {
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			}
		}

		resp, err := s.client.GenerateContent(ctx, s.model, genai.Text(userPrompt), config)
		if err != nil {
			return "", fmt.Errorf("failed to invoke Gemini: %w", err)
		}

		return extractGeminiText(resp)
	})

	timer.ObserveExternalAPI(BreakerGemini, "invoke")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerGemini, "invoke", categorizeAPIError(err))
	}
	return result, err
}

// extractGeminiText extracts text from a generate content response
func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}
