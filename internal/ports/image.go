package ports

import (
	"context"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// GenerateImageInput is a single image request.
type GenerateImageInput struct {
	APIKey string
	Prompt string
}

// ImageGenerator renders a prompt into an image payload.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, in GenerateImageInput) (domain.ImagePayload, error)
}

// ImageFetcher downloads a remote image so it can be inlined.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (domain.InlineImage, error)
}
