package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marataitester-blip/psy-color/internal/app"
	"github.com/marataitester-blip/psy-color/internal/domain"
)

type Config struct {
	HTTPAddr           string
	LogLevel           slog.Level
	DefaultLanguage    domain.Language
	TextBaseURL        string
	TextModel          string
	TextTimeout        time.Duration
	ImageBaseURL       string
	ImageModel         string
	ImageTimeout       time.Duration
	ImageReferer       string
	ImageTitle         string
	RemoteImagePolicy  app.RemoteImagePolicy
	ImageFetchTimeout  time.Duration
	ImageFetchMaxBytes int64
	MaxInputChars      int
	CORSOrigins        []string
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
// Environment variables win over file values.
type fileConfig struct {
	HTTPAddr           string   `yaml:"http_addr"`
	LogLevel           string   `yaml:"log_level"`
	DefaultLanguage    string   `yaml:"default_language"`
	TextBaseURL        string   `yaml:"text_base_url"`
	TextModel          string   `yaml:"text_model"`
	TextTimeout        string   `yaml:"text_timeout"`
	ImageBaseURL       string   `yaml:"image_base_url"`
	ImageModel         string   `yaml:"image_model"`
	ImageTimeout       string   `yaml:"image_timeout"`
	ImageReferer       string   `yaml:"image_referer"`
	ImageTitle         string   `yaml:"image_title"`
	RemoteImagePolicy  string   `yaml:"remote_image_policy"`
	ImageFetchTimeout  string   `yaml:"image_fetch_timeout"`
	ImageFetchMaxBytes string   `yaml:"image_fetch_max_bytes"`
	MaxInputChars      string   `yaml:"max_input_chars"`
	CORSOrigins        []string `yaml:"cors_origins"`
}

// Load reads configuration from the environment, layered over CONFIG_FILE
// when set. API keys are not part of Config; see EnvSecrets.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
		}
	}

	c := Config{
		HTTPAddr:     envOr("HTTP_ADDR", file.HTTPAddr, ":8080"),
		TextBaseURL:  envOr("TEXT_BASE_URL", file.TextBaseURL, "https://api.groq.com/openai/v1"),
		TextModel:    envOr("TEXT_MODEL", file.TextModel, "llama-3.3-70b-versatile"),
		ImageBaseURL: envOr("IMAGE_BASE_URL", file.ImageBaseURL, "https://openrouter.ai/api/v1"),
		ImageModel:   envOr("IMAGE_MODEL", file.ImageModel, "black-forest-labs/flux.2-pro"),
		ImageReferer: envOr("IMAGE_REFERER", file.ImageReferer, ""),
		ImageTitle:   envOr("IMAGE_TITLE", file.ImageTitle, ""),
		CORSOrigins:  file.CORSOrigins,
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	var err error
	if c.TextTimeout, err = parseDuration("TEXT_TIMEOUT", envOr("TEXT_TIMEOUT", file.TextTimeout, "30s")); err != nil {
		return Config{}, err
	}
	if c.ImageTimeout, err = parseDuration("IMAGE_TIMEOUT", envOr("IMAGE_TIMEOUT", file.ImageTimeout, "60s")); err != nil {
		return Config{}, err
	}
	if c.ImageFetchTimeout, err = parseDuration("IMAGE_FETCH_TIMEOUT", envOr("IMAGE_FETCH_TIMEOUT", file.ImageFetchTimeout, "20s")); err != nil {
		return Config{}, err
	}

	if c.ImageFetchMaxBytes, err = parseInt("IMAGE_FETCH_MAX_BYTES", envOr("IMAGE_FETCH_MAX_BYTES", file.ImageFetchMaxBytes, "20971520")); err != nil {
		return Config{}, err
	}
	maxChars, err := parseInt("MAX_INPUT_CHARS", envOr("MAX_INPUT_CHARS", file.MaxInputChars, "4000"))
	if err != nil {
		return Config{}, err
	}
	c.MaxInputChars = int(maxChars)

	if c.RemoteImagePolicy, err = app.ParseRemoteImagePolicy(envOr("REMOTE_IMAGE_POLICY", file.RemoteImagePolicy, "fetch")); err != nil {
		return Config{}, err
	}

	if c.DefaultLanguage, err = domain.ParseLanguage(envOr("DEFAULT_LANGUAGE", file.DefaultLanguage, "ru"), domain.Russian); err != nil {
		return Config{}, fmt.Errorf("invalid DEFAULT_LANGUAGE: %w", err)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", file.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fromFile, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return fallback
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func parseInt(key, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
