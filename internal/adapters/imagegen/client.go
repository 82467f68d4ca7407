package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marataitester-blip/psy-color/internal/domain"
	"github.com/marataitester-blip/psy-color/internal/ports"
)

// Client implements ports.ImageGenerator against an OpenAI-style
// images/generations endpoint (OpenRouter by default).
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	referer    string
	title      string
	logger     *slog.Logger
}

// Option tweaks optional request headers.
type Option func(*Client)

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses
// to attribute traffic to an app.
func WithAttribution(referer, title string) Option {
	return func(c *Client) {
		c.referer = referer
		c.title = title
	}
}

func NewClient(httpClient *http.Client, baseURL, model string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	ResponseFormat string `json:"response_format"`
	NumImages      int    `json:"num_images"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

func (c *Client) GenerateImage(ctx context.Context, in ports.GenerateImageInput) (domain.ImagePayload, error) {
	body, err := json.Marshal(generationRequest{
		Model:          c.model,
		Prompt:         in.Prompt,
		ResponseFormat: "b64_json",
		NumImages:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+in.APIKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http call: %w", domain.ErrUpstreamImage, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstreamImage, err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: upstream status %d: %s", domain.ErrUpstreamImage, resp.StatusCode, string(respBody))
	}

	var genResp generationResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrUpstreamImage, err)
	}

	if len(genResp.Data) == 0 {
		c.logger.WarnContext(ctx, "image provider returned no data entries", "model", c.model)
		return nil, domain.ErrNoImageData
	}

	return domain.NormalizeImage(genResp.Data[0].B64JSON, genResp.Data[0].URL)
}
