package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONResponse decodes a model reply that may be wrapped in markdown
// fences or surrounded by prose.
func parseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal model JSON: %w", err)
	}
	return nil
}

// extractJSON returns the outermost JSON object or array in text.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr) {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
