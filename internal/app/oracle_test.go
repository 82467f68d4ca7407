package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marataitester-blip/psy-color/internal/app"
	"github.com/marataitester-blip/psy-color/internal/domain"
	"github.com/marataitester-blip/psy-color/internal/ports"
)

type staticSecrets ports.Credentials

func (s staticSecrets) Credentials() ports.Credentials { return ports.Credentials(s) }

type mockAnalyzer struct {
	out   domain.TarotAnalysis
	err   error
	calls int
	got   ports.AnalyzeInput
}

func (m *mockAnalyzer) Analyze(_ context.Context, in ports.AnalyzeInput) (domain.TarotAnalysis, error) {
	m.calls++
	m.got = in
	return m.out, m.err
}

type mockImages struct {
	out   domain.ImagePayload
	err   error
	calls int
	got   ports.GenerateImageInput
}

func (m *mockImages) GenerateImage(_ context.Context, in ports.GenerateImageInput) (domain.ImagePayload, error) {
	m.calls++
	m.got = in
	return m.out, m.err
}

type mockFetcher struct {
	out   domain.InlineImage
	err   error
	calls int
}

func (m *mockFetcher) FetchImage(_ context.Context, _ string) (domain.InlineImage, error) {
	m.calls++
	return m.out, m.err
}

var keys = staticSecrets{TextAPIKey: "text-key", ImageAPIKey: "image-key"}

func hermit() domain.TarotAnalysis {
	return domain.TarotAnalysis{
		CardName:       "The Hermit",
		Interpretation: "A time to turn inward.",
		ImagePrompt:    "An old man holding a lantern on a snowy peak, tarot card art",
	}
}

func TestAnalyze_Success(t *testing.T) {
	analyzer := &mockAnalyzer{out: hermit()}
	images := &mockImages{out: domain.InlineImage{Base64: "AAAA"}}
	svc := app.NewOracleService(keys, analyzer, images, &mockFetcher{}, app.Options{})

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "I feel lost", Language: domain.English})
	require.NoError(t, err)

	want := domain.FullAnalysisResult{TarotAnalysis: hermit(), ImageURL: "data:image/png;base64,AAAA"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "text-key", analyzer.got.APIKey)
	assert.Equal(t, domain.English, analyzer.got.Language)
	assert.Equal(t, "image-key", images.got.APIKey)
}

func TestAnalyze_ForwardsImagePromptVerbatim(t *testing.T) {
	a := hermit()
	a.ImagePrompt = "  <b>moon</b> over water, \"wet\" ink  "
	images := &mockImages{out: domain.InlineImage{Base64: "AAAA"}}
	svc := app.NewOracleService(keys, &mockAnalyzer{out: a}, images, &mockFetcher{}, app.Options{})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x", Language: domain.English})
	require.NoError(t, err)
	assert.Equal(t, a.ImagePrompt, images.got.Prompt)
}

func TestAnalyze_DefaultLanguage(t *testing.T) {
	analyzer := &mockAnalyzer{out: hermit()}
	svc := app.NewOracleService(keys, analyzer, &mockImages{out: domain.InlineImage{Base64: "AAAA"}}, &mockFetcher{}, app.Options{})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.Russian, analyzer.got.Language)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	analyzer := &mockAnalyzer{out: hermit()}
	images := &mockImages{}
	svc := app.NewOracleService(keys, analyzer, images, &mockFetcher{}, app.Options{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: text})
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	}
	assert.Zero(t, analyzer.calls)
	assert.Zero(t, images.calls)
}

func TestAnalyze_MissingCredentials(t *testing.T) {
	for _, creds := range []staticSecrets{
		{},
		{TextAPIKey: "t"},
		{ImageAPIKey: "i"},
	} {
		analyzer := &mockAnalyzer{out: hermit()}
		images := &mockImages{}
		svc := app.NewOracleService(creds, analyzer, images, &mockFetcher{}, app.Options{})

		_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
		assert.ErrorIs(t, err, domain.ErrMissingAPIKeys)
		assert.Zero(t, analyzer.calls)
		assert.Zero(t, images.calls)
	}
}

func TestAnalyze_TextFailureSkipsImage(t *testing.T) {
	for _, cause := range []error{domain.ErrUpstreamLLM, domain.ErrInvalidLLMJSON} {
		images := &mockImages{}
		svc := app.NewOracleService(keys, &mockAnalyzer{err: cause}, images, &mockFetcher{}, app.Options{})

		_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
		assert.ErrorIs(t, err, cause)
		assert.Zero(t, images.calls)
	}
}

func TestAnalyze_ImageFailureIsFatal(t *testing.T) {
	svc := app.NewOracleService(keys, &mockAnalyzer{out: hermit()}, &mockImages{err: domain.ErrUpstreamImage}, &mockFetcher{}, app.Options{})

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrUpstreamImage)
	assert.Empty(t, res.CardName)
}

func TestAnalyze_RemoteFetchPolicy(t *testing.T) {
	fetcher := &mockFetcher{out: domain.InlineImage{Base64: "iVBOR", MIMEType: "image/png"}}
	images := &mockImages{out: domain.RemoteImage{URL: "https://cdn.example/card.png"}}
	svc := app.NewOracleService(keys, &mockAnalyzer{out: hermit()}, images, fetcher, app.Options{Policy: app.RemoteFetch})

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBOR", res.ImageURL)
	assert.Equal(t, 1, fetcher.calls)
}

func TestAnalyze_RemotePassthroughPolicy(t *testing.T) {
	fetcher := &mockFetcher{}
	images := &mockImages{out: domain.RemoteImage{URL: "https://cdn.example/card.png"}}
	svc := app.NewOracleService(keys, &mockAnalyzer{out: hermit()}, images, fetcher, app.Options{Policy: app.RemotePassthrough})

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/card.png", res.ImageURL)
	assert.Zero(t, fetcher.calls)
}

func TestAnalyze_FetchFailure(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("connection reset")}
	images := &mockImages{out: domain.RemoteImage{URL: "https://cdn.example/card.png"}}
	svc := app.NewOracleService(keys, &mockAnalyzer{out: hermit()}, images, fetcher, app.Options{})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestAnalyze_NilPayload(t *testing.T) {
	svc := app.NewOracleService(keys, &mockAnalyzer{out: hermit()}, &mockImages{}, &mockFetcher{}, app.Options{})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrNoImageData)
}

func TestAnalyze_StripsMarkupFromText(t *testing.T) {
	tests := []struct {
		name               string
		card, text         string
		wantCard, wantText string
	}{
		{"tags", "<b>The Hermit</b>", "Turn <script>alert(1)</script>inward & rest.", "The Hermit", "Turn inward & rest."},
		{"entity encoded tags", "The &lt;b&gt;Hermit&lt;/b&gt;", "Look &lt;i&gt;within&lt;/i&gt;.", "The Hermit", "Look within."},
		{"plain entities kept as text", "Sun &amp; Moon", "1 &lt; 2", "Sun & Moon", "1 < 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := hermit()
			a.CardName = tt.card
			a.Interpretation = tt.text
			svc := app.NewOracleService(keys, &mockAnalyzer{out: a}, &mockImages{out: domain.InlineImage{Base64: "AAAA"}}, &mockFetcher{}, app.Options{})

			res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCard, res.CardName)
			assert.Equal(t, tt.wantText, res.Interpretation)
			assert.Equal(t, a.ImagePrompt, res.ImagePrompt)
		})
	}
}

func TestAnalyze_MarkupOnlyFieldIsInvalid(t *testing.T) {
	tests := map[string]domain.TarotAnalysis{
		"card name":      {CardName: "<b></b>", Interpretation: "Rest.", ImagePrompt: "x"},
		"interpretation": {CardName: "The Hermit", Interpretation: "&lt;script&gt;alert(1)&lt;/script&gt;", ImagePrompt: "x"},
	}
	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			images := &mockImages{out: domain.InlineImage{Base64: "AAAA"}}
			svc := app.NewOracleService(keys, &mockAnalyzer{out: a}, images, &mockFetcher{}, app.Options{})

			_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Text: "x"})
			assert.ErrorIs(t, err, domain.ErrInvalidLLMJSON)
			assert.Equal(t, 0, images.calls)

			_, err = svc.AnalyzeText(context.Background(), domain.AnalysisRequest{Text: "x"})
			assert.ErrorIs(t, err, domain.ErrInvalidLLMJSON)
		})
	}
}

func TestRenderImage(t *testing.T) {
	images := &mockImages{out: domain.InlineImage{Base64: "AAAA"}}
	svc := app.NewOracleService(staticSecrets{ImageAPIKey: "image-key"}, &mockAnalyzer{}, images, &mockFetcher{}, app.Options{})

	url, err := svc.RenderImage(context.Background(), "a lantern")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", url)

	_, err = svc.RenderImage(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestParseRemoteImagePolicy(t *testing.T) {
	p, err := app.ParseRemoteImagePolicy("")
	require.NoError(t, err)
	assert.Equal(t, app.RemoteFetch, p)

	p, err = app.ParseRemoteImagePolicy("PassThrough")
	require.NoError(t, err)
	assert.Equal(t, app.RemotePassthrough, p)

	_, err = app.ParseRemoteImagePolicy("hotlink")
	assert.Error(t, err)
}
