package domain_test

import (
	"errors"
	"testing"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

func TestParseAnalysis_Valid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain", `{"card_name":"The Hermit","interpretation":"Solitude.","image_prompt":"an old man with a lantern"}`},
		{"fenced", "```json\n{\"card_name\":\"The Hermit\",\"interpretation\":\"Solitude.\",\"image_prompt\":\"an old man with a lantern\"}\n```"},
		{"bare fence", "```\n{\"card_name\":\"The Hermit\",\"interpretation\":\"Solitude.\",\"image_prompt\":\"an old man with a lantern\"}```"},
		{"extra field", `{"card_name":"The Hermit","interpretation":"Solitude.","image_prompt":"an old man with a lantern","mood":"calm"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAnalysis(tt.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.CardName != "The Hermit" {
				t.Errorf("card_name: %q", got.CardName)
			}
			if got.ImagePrompt != "an old man with a lantern" {
				t.Errorf("image_prompt: %q", got.ImagePrompt)
			}
		})
	}
}

func TestParseAnalysis_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"prose", "The Hermit speaks of solitude."},
		{"array", `[{"card_name":"x"}]`},
		{"missing image_prompt", `{"card_name":"The Hermit","interpretation":"Solitude."}`},
		{"blank card_name", `{"card_name":"  ","interpretation":"Solitude.","image_prompt":"lantern"}`},
		{"two objects", `{"card_name":"a","interpretation":"b","image_prompt":"c"}{"card_name":"a"}`},
		{"truncated", `{"card_name":"The Hermit","interpre`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseAnalysis(tt.content)
			if !errors.Is(err, domain.ErrInvalidLLMJSON) {
				t.Errorf("expected ErrInvalidLLMJSON, got %v", err)
			}
		})
	}
}
