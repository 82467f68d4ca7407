package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Language selects the natural language of card_name and interpretation.
type Language string

const (
	English Language = "en"
	Russian Language = "ru"
)

// ParseLanguage accepts a BCP 47 tag and reduces it to a supported language.
// An empty string yields def.
func ParseLanguage(raw string, def Language) (Language, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", ErrInvalidLanguage
	}
	base, _ := tag.Base()
	switch Language(base.String()) {
	case English:
		return English, nil
	case Russian:
		return Russian, nil
	default:
		return "", ErrInvalidLanguage
	}
}

// Tag returns the x/text tag for l.
func (l Language) Tag() language.Tag {
	if l == Russian {
		return language.Russian
	}
	return language.English
}

// AnalysisRequest is the user's submission.
type AnalysisRequest struct {
	Text     string
	Language Language
}

// TarotAnalysis is the structured output of the text provider.
// ImagePrompt is always English.
type TarotAnalysis struct {
	CardName       string `json:"card_name"`
	Interpretation string `json:"interpretation"`
	ImagePrompt    string `json:"image_prompt"`
}

// FullAnalysisResult is a TarotAnalysis with its rendered illustration.
type FullAnalysisResult struct {
	TarotAnalysis
	ImageURL string `json:"image_url"`
}
