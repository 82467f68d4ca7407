package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language/display"

	"github.com/marataitester-blip/psy-color/internal/domain"
	"github.com/marataitester-blip/psy-color/internal/ports"
)

// Provider answers beyond this are truncated before decoding.
const maxResponseBytes = 1 << 20

// Client implements ports.Analyzer against an OpenAI-compatible
// chat completions API (Groq by default).
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL, model string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) Analyze(ctx context.Context, in ports.AnalyzeInput) (domain.TarotAnalysis, error) {
	content, err := c.complete(ctx, in.APIKey, []chatMessage{
		{Role: "system", Content: buildSystemPrompt(in.Language)},
		{Role: "user", Content: in.Text},
	})
	if err != nil {
		return domain.TarotAnalysis{}, fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}

	out, err := domain.ParseAnalysis(content)
	if err != nil {
		c.logger.WarnContext(ctx, "text provider returned unusable JSON", "model", c.model, "error", err)
		return domain.TarotAnalysis{}, err
	}
	return out, nil
}

// complete sends one chat turn and returns the first choice's content.
func (c *Client) complete(ctx context.Context, apiKey string, msgs []chatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       msgs,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}

	choice := cr.Choices[0]
	c.logger.DebugContext(ctx, "chat completion",
		"model", c.model,
		"finish_reason", choice.FinishReason,
		"total_tokens", cr.Usage.TotalTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(choice.Message.Content), nil
}

func buildSystemPrompt(lang domain.Language) string {
	name := display.English.Languages().Name(lang.Tag())

	return fmt.Sprintf(`You are a Jungian psychologist and tarot reader.
Read the user's text, choose the single tarot card that best mirrors their state, and explain why.

Rules:
- Write "card_name" and "interpretation" in %s.
- Write "image_prompt" in English only, whatever language the user wrote in.
- "image_prompt" describes an illustration of the card in the style of a mystical tarot painting.
- Never provide medical, legal, or financial advice.

Respond with ONLY a JSON object (no markdown, no code fences, no extra text) matching this exact schema:
{
  "card_name": "<card name>",
  "interpretation": "<your interpretation>",
  "image_prompt": "<English description of the card illustration>"
}`, name)
}
