package app

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/marataitester-blip/psy-color/internal/domain"
	"github.com/marataitester-blip/psy-color/internal/ports"
)

// RemoteImagePolicy decides what happens when the image provider answers
// with a URL instead of inline data.
type RemoteImagePolicy string

const (
	// RemoteFetch downloads the image and returns it as a data URI.
	RemoteFetch RemoteImagePolicy = "fetch"
	// RemotePassthrough returns the provider URL unchanged.
	RemotePassthrough RemoteImagePolicy = "passthrough"
)

// ParseRemoteImagePolicy maps a config value to a policy.
func ParseRemoteImagePolicy(s string) (RemoteImagePolicy, error) {
	switch RemoteImagePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case RemoteFetch, "":
		return RemoteFetch, nil
	case RemotePassthrough:
		return RemotePassthrough, nil
	default:
		return "", fmt.Errorf("invalid remote image policy %q", s)
	}
}

// OracleService sequences the text and image providers into one reading.
// It holds no per-request state.
type OracleService struct {
	secrets     ports.SecretSource
	analyzer    ports.Analyzer
	images      ports.ImageGenerator
	fetcher     ports.ImageFetcher
	policy      RemoteImagePolicy
	defaultLang domain.Language
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
}

// Options configures an OracleService.
type Options struct {
	Policy          RemoteImagePolicy
	DefaultLanguage domain.Language
	Logger          *slog.Logger
}

func NewOracleService(secrets ports.SecretSource, analyzer ports.Analyzer, images ports.ImageGenerator, fetcher ports.ImageFetcher, opts Options) *OracleService {
	if opts.Policy == "" {
		opts.Policy = RemoteFetch
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = domain.Russian
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &OracleService{
		secrets:     secrets,
		analyzer:    analyzer,
		images:      images,
		fetcher:     fetcher,
		policy:      opts.Policy,
		defaultLang: opts.DefaultLanguage,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      opts.Logger,
	}
}

// DefaultLanguage is used when a request does not name one.
func (s *OracleService) DefaultLanguage() domain.Language {
	return s.defaultLang
}

// Analyze runs the full pipeline. Any failure is terminal; a text-only
// result is never returned.
func (s *OracleService) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.FullAnalysisResult, error) {
	creds, err := s.credentials(req)
	if err != nil {
		return domain.FullAnalysisResult{}, err
	}

	analysis, err := s.analyze(ctx, creds, req)
	if err != nil {
		return domain.FullAnalysisResult{}, err
	}

	imageURL, err := s.render(ctx, creds, analysis.ImagePrompt)
	if err != nil {
		return domain.FullAnalysisResult{}, err
	}

	return domain.FullAnalysisResult{
		TarotAnalysis: analysis,
		ImageURL:      imageURL,
	}, nil
}

// AnalyzeText runs only the text step.
func (s *OracleService) AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (domain.TarotAnalysis, error) {
	creds, err := s.credentials(req)
	if err != nil {
		return domain.TarotAnalysis{}, err
	}
	analysis, err := s.analyze(ctx, creds, req)
	if err != nil {
		return domain.TarotAnalysis{}, err
	}
	return analysis, nil
}

// RenderImage runs only the image step for an already derived prompt.
func (s *OracleService) RenderImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: image_prompt", domain.ErrEmptyInput)
	}
	creds := s.secrets.Credentials()
	if creds.ImageAPIKey == "" {
		return "", domain.ErrMissingAPIKeys
	}
	return s.render(ctx, creds, prompt)
}

func (s *OracleService) credentials(req domain.AnalysisRequest) (ports.Credentials, error) {
	if strings.TrimSpace(req.Text) == "" {
		return ports.Credentials{}, domain.ErrEmptyInput
	}
	creds := s.secrets.Credentials()
	if creds.TextAPIKey == "" || creds.ImageAPIKey == "" {
		return ports.Credentials{}, domain.ErrMissingAPIKeys
	}
	return creds, nil
}

func (s *OracleService) analyze(ctx context.Context, creds ports.Credentials, req domain.AnalysisRequest) (domain.TarotAnalysis, error) {
	lang := req.Language
	if lang == "" {
		lang = s.defaultLang
	}

	start := time.Now()
	analysis, err := s.analyzer.Analyze(ctx, ports.AnalyzeInput{
		APIKey:   creds.TextAPIKey,
		Text:     req.Text,
		Language: lang,
	})
	if err != nil {
		return domain.TarotAnalysis{}, fmt.Errorf("analyze: %w", err)
	}
	analysis, err = s.clean(analysis)
	if err != nil {
		return domain.TarotAnalysis{}, fmt.Errorf("analyze: %w", err)
	}
	s.logger.DebugContext(ctx, "text analysis done",
		"card_name", analysis.CardName,
		"language", lang,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return analysis, nil
}

func (s *OracleService) render(ctx context.Context, creds ports.Credentials, prompt string) (string, error) {
	start := time.Now()
	payload, err := s.images.GenerateImage(ctx, ports.GenerateImageInput{
		APIKey: creds.ImageAPIKey,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	s.logger.DebugContext(ctx, "image generated", "latency_ms", time.Since(start).Milliseconds())

	return s.resolve(ctx, payload)
}

func (s *OracleService) resolve(ctx context.Context, payload domain.ImagePayload) (string, error) {
	switch p := payload.(type) {
	case domain.InlineImage:
		return p.DataURI(), nil
	case domain.RemoteImage:
		if s.policy == RemotePassthrough {
			return p.URL, nil
		}
		inline, err := s.fetcher.FetchImage(ctx, p.URL)
		if err != nil {
			return "", fmt.Errorf("fetch image: %w", err)
		}
		return inline.DataURI(), nil
	default:
		return "", domain.ErrNoImageData
	}
}

// clean strips any markup the model put into the display fields. Entities are
// decoded first so encoded tags are stripped too. A field left blank is an
// invalid answer.
func (s *OracleService) clean(a domain.TarotAnalysis) (domain.TarotAnalysis, error) {
	a.CardName = s.plain(a.CardName)
	a.Interpretation = s.plain(a.Interpretation)
	if a.CardName == "" || a.Interpretation == "" {
		return domain.TarotAnalysis{}, fmt.Errorf("%w: blank after removing markup", domain.ErrInvalidLLMJSON)
	}
	return a, nil
}

func (s *OracleService) plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(html.UnescapeString(text))))
}
