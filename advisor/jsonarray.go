package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"stock-advisor/models"
)

// ExtractJSONArray pulls a recommendation array out of free-form model
// text. Models wrap JSON in markdown fences or surround it with prose,
// so the parser strips fences and slices from the first '[' to the last
// ']' before unmarshalling.
func ExtractJSONArray(text string) ([]models.Recommendation, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in model output")
	}

	var recs []models.Recommendation
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &recs); err != nil {
		return nil, fmt.Errorf("failed to parse model output as recommendations: %w", err)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("model output contained an empty recommendation array")
	}

	for i, rec := range recs {
		if rec.Ticker == "" {
			return nil, fmt.Errorf("recommendation %d is missing a ticker", i)
		}
	}

	return recs, nil
}
