package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// DefaultMaxImageBytes caps a downloaded image.
const DefaultMaxImageBytes = 20 << 20

// Fetcher implements ports.ImageFetcher by downloading the image and
// re-encoding it as base64.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewFetcher(httpClient *http.Client, maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Fetcher{httpClient: httpClient, maxBytes: maxBytes}
}

func (f *Fetcher) FetchImage(ctx context.Context, url string) (domain.InlineImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.InlineImage{}, fmt.Errorf("%w: build request: %w", domain.ErrUpstreamImage, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domain.InlineImage{}, fmt.Errorf("%w: http call: %w", domain.ErrUpstreamImage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return domain.InlineImage{}, fmt.Errorf("%w: image download status %d: %s", domain.ErrUpstreamImage, resp.StatusCode, string(b))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return domain.InlineImage{}, fmt.Errorf("%w: read image: %w", domain.ErrUpstreamImage, err)
	}
	if int64(len(data)) > f.maxBytes {
		return domain.InlineImage{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrUpstreamImage, f.maxBytes)
	}
	if len(data) == 0 {
		return domain.InlineImage{}, domain.ErrNoImageData
	}

	return domain.InlineImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: imageMIME(data),
	}, nil
}

// imageMIME sniffs the content type, falling back to PNG for anything that
// does not look like an image.
func imageMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/png"
}
