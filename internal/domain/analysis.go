package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes markdown code fences some models wrap JSON in.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseAnalysis decodes the text provider's message content. The result must be
// a single JSON object carrying all three fields; nothing is repaired.
func ParseAnalysis(content string) (TarotAnalysis, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(StripCodeFence(content))))

	var out TarotAnalysis
	if err := dec.Decode(&out); err != nil {
		return TarotAnalysis{}, fmt.Errorf("%w: %w", ErrInvalidLLMJSON, err)
	}
	if dec.More() {
		return TarotAnalysis{}, fmt.Errorf("%w: trailing data after object", ErrInvalidLLMJSON)
	}

	var missing []string
	if strings.TrimSpace(out.CardName) == "" {
		missing = append(missing, "card_name")
	}
	if strings.TrimSpace(out.Interpretation) == "" {
		missing = append(missing, "interpretation")
	}
	if strings.TrimSpace(out.ImagePrompt) == "" {
		missing = append(missing, "image_prompt")
	}
	if len(missing) > 0 {
		return TarotAnalysis{}, fmt.Errorf("%w: missing %s", ErrInvalidLLMJSON, strings.Join(missing, ", "))
	}
	return out, nil
}
