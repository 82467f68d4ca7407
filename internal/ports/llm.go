package ports

import (
	"context"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// AnalyzeInput holds everything the text provider needs for one reading.
type AnalyzeInput struct {
	APIKey   string
	Text     string
	Language domain.Language
}

// Analyzer turns free text into a structured tarot analysis.
type Analyzer interface {
	Analyze(ctx context.Context, in AnalyzeInput) (domain.TarotAnalysis, error)
}
