package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// OracleError is the single user-facing failure of a submission.
type OracleError struct {
	Status  int
	Message string
	// Err is the transport failure, if any. It is never shown to the user.
	Err error
}

func (e *OracleError) Error() string { return e.Message }

func (e *OracleError) Unwrap() error { return e.Err }

// Client talks to the orchestration endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type analyzeBody struct {
	UserInput string `json:"userInput"`
	Language  string `json:"language"`
}

type imageBody struct {
	ImagePrompt string `json:"image_prompt"`
}

type imageResult struct {
	ImageURL string `json:"image_url"`
}

// Analyze sends one request to /api/analyze and returns the combined result.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.FullAnalysisResult, error) {
	var out domain.FullAnalysisResult
	err := c.post(ctx, "/api/analyze", req.Language, analyzeBody{UserInput: req.Text, Language: string(req.Language)}, &out)
	return out, err
}

// AnalyzeText asks for the text step only.
func (c *Client) AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (domain.TarotAnalysis, error) {
	var out domain.TarotAnalysis
	err := c.post(ctx, "/api/analysis", req.Language, analyzeBody{UserInput: req.Text, Language: string(req.Language)}, &out)
	return out, err
}

// GenerateImage asks for the illustration of an existing analysis.
func (c *Client) GenerateImage(ctx context.Context, lang domain.Language, prompt string) (string, error) {
	var out imageResult
	if err := c.post(ctx, "/api/image", lang, imageBody{ImagePrompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

func (c *Client) post(ctx context.Context, path string, lang domain.Language, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &OracleError{Message: Localize(lang, msgNetworkError), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &OracleError{Status: resp.StatusCode, Message: Localize(lang, msgNetworkError)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &e)
		msg := strings.TrimSpace(e.Error)
		if msg == "" {
			msg = Localize(lang, msgGenericError)
		}
		return &OracleError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &OracleError{Status: resp.StatusCode, Message: Localize(lang, msgGenericError)}
	}
	return nil
}
