package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"spendbot/internal/port"
)

// DecodeEnvelope parses the {"data", "confidence_scores"} object returned by a model.
// Markdown code fences around the object are tolerated.
func DecodeEnvelope(text, model, prompt string) (*port.ParseOutput, error) {
	var parsed struct {
		Data             json.RawMessage `json:"data"`
		ConfidenceScores json.RawMessage `json:"confidence_scores"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return nil, fmt.Errorf("LLM output has no data object")
	}

	return &port.ParseOutput{
		StructuredData:   parsed.Data,
		ConfidenceScores: parsed.ConfidenceScores,
		ModelUsed:        model,
		PromptUsed:       prompt,
	}, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
