package domain

import "strings"

const defaultImageMIME = "image/png"

// ImagePayload is what an image provider handed back: either the bytes
// themselves (base64) or a link to them.
type ImagePayload interface {
	imagePayload()
}

// InlineImage carries base64-encoded image data.
type InlineImage struct {
	Base64   string
	MIMEType string
}

// RemoteImage points at an image hosted by the provider.
type RemoteImage struct {
	URL string
}

func (InlineImage) imagePayload() {}
func (RemoteImage) imagePayload() {}

// DataURI renders the inline payload as a self-contained data URI.
func (i InlineImage) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + i.Base64
}

// NormalizeImage picks the payload out of the first image entry of a provider
// response. Inline data wins over a URL; neither is ErrNoImageData.
func NormalizeImage(b64JSON, url string) (ImagePayload, error) {
	if b := strings.TrimSpace(b64JSON); b != "" {
		return InlineImage{Base64: b, MIMEType: defaultImageMIME}, nil
	}
	if u := strings.TrimSpace(url); u != "" {
		return RemoteImage{URL: u}, nil
	}
	return nil, ErrNoImageData
}
