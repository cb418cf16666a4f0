package advisor

import (
	"encoding/json"
	"fmt"

	"stock-advisor/models"
)

const analystSystemPrompt = `You are a seasoned financial analyst. You receive a user's investment goal ` +
	`and a JSON array of candidate stocks with quantitative metrics. Select the 3 or 4 strongest matches ` +
	`for the goal and justify each pick, citing at least two of the provided metrics in each reason. ` +
	`Respond with ONLY a JSON array of objects with the keys "ticker", "company_name" and "reason". ` +
	`Do not include any other text.`

// buildUserPrompt serializes the aggregated profiles beneath the user's
// goal. Indented JSON keeps the metrics readable for the model.
func buildUserPrompt(query string, profiles []models.QuantProfile) (string, error) {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize profiles for prompt: %w", err)
	}

	return fmt.Sprintf("User's investment goal: %q\n\nCandidate stocks with quantitative data:\n%s", query, data), nil
}
