package domain_test

import (
	"errors"
	"testing"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

func TestNormalizeImage_InlineWins(t *testing.T) {
	p, err := domain.NormalizeImage("AAAA", "https://img.example/x.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inline, ok := p.(domain.InlineImage)
	if !ok {
		t.Fatalf("expected InlineImage, got %T", p)
	}
	if got := inline.DataURI(); got != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected data URI: %s", got)
	}
}

func TestNormalizeImage_Remote(t *testing.T) {
	p, err := domain.NormalizeImage("", " https://img.example/x.png ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remote, ok := p.(domain.RemoteImage)
	if !ok {
		t.Fatalf("expected RemoteImage, got %T", p)
	}
	if remote.URL != "https://img.example/x.png" {
		t.Errorf("unexpected url: %s", remote.URL)
	}
}

func TestNormalizeImage_Neither(t *testing.T) {
	_, err := domain.NormalizeImage("", "")
	if !errors.Is(err, domain.ErrNoImageData) {
		t.Errorf("expected ErrNoImageData, got %v", err)
	}
}

func TestNormalizeImage_BlankInlineFallsBackToURL(t *testing.T) {
	p, err := domain.NormalizeImage("   ", "https://img.example/x.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(domain.RemoteImage); !ok {
		t.Fatalf("expected RemoteImage, got %T", p)
	}

	_, err = domain.NormalizeImage(" \n", " ")
	if !errors.Is(err, domain.ErrNoImageData) {
		t.Errorf("expected ErrNoImageData, got %v", err)
	}
}

func TestInlineImage_DataURIMime(t *testing.T) {
	img := domain.InlineImage{Base64: "QUJD", MIMEType: "image/jpeg"}
	if got := img.DataURI(); got != "data:image/jpeg;base64,QUJD" {
		t.Errorf("unexpected data URI: %s", got)
	}
}
