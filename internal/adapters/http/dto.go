package http

import "github.com/marataitester-blip/psy-color/internal/domain"

// AnalyzeRequest is the JSON body of POST /api/analyze and /api/analysis.
type AnalyzeRequest struct {
	UserInput string `json:"userInput"`
	Language  string `json:"language"`
}

// ImageRequest is the JSON body of POST /api/image.
type ImageRequest struct {
	ImagePrompt string `json:"image_prompt"`
}

// AnalyzeResponse is the JSON shape returned by POST /api/analyze.
type AnalyzeResponse struct {
	CardName       string `json:"card_name"`
	Interpretation string `json:"interpretation"`
	ImagePrompt    string `json:"image_prompt,omitempty"`
	ImageURL       string `json:"image_url"`
}

// AnalysisResponse is the text-only result of POST /api/analysis.
type AnalysisResponse struct {
	CardName       string `json:"card_name"`
	Interpretation string `json:"interpretation"`
	ImagePrompt    string `json:"image_prompt"`
}

type ImageResponse struct {
	ImageURL string `json:"image_url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toAnalyzeResponse(r domain.FullAnalysisResult) AnalyzeResponse {
	return AnalyzeResponse{
		CardName:       r.CardName,
		Interpretation: r.Interpretation,
		ImagePrompt:    r.ImagePrompt,
		ImageURL:       r.ImageURL,
	}
}

func toAnalysisResponse(a domain.TarotAnalysis) AnalysisResponse {
	return AnalysisResponse{
		CardName:       a.CardName,
		Interpretation: a.Interpretation,
		ImagePrompt:    a.ImagePrompt,
	}
}
