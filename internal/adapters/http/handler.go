package http

import (
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/marataitester-blip/psy-color/internal/app"
	"github.com/marataitester-blip/psy-color/internal/domain"
)

//go:embed web/index.html
var webFS embed.FS

type Handler struct {
	svc           *app.OracleService
	maxInputChars int
}

func NewHandler(svc *app.OracleService, maxInputChars int) *Handler {
	return &Handler{svc: svc, maxInputChars: maxInputChars}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Healthz)
	e.POST("/api/analyze", h.Analyze)
	e.POST("/api/analysis", h.AnalyzeText)
	e.POST("/api/image", h.RenderImage)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Index(c echo.Context) error {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// Analyze runs the text and image steps and returns both in one payload.
func (h *Handler) Analyze(c echo.Context) error {
	req, err := h.bindAnalysis(c)
	if err != nil {
		return mapError(c, err)
	}

	res, err := h.svc.Analyze(c.Request().Context(), req)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toAnalyzeResponse(res))
}

// AnalyzeText runs only the text step so a client can show progress
// between the two provider calls.
func (h *Handler) AnalyzeText(c echo.Context) error {
	req, err := h.bindAnalysis(c)
	if err != nil {
		return mapError(c, err)
	}

	analysis, err := h.svc.AnalyzeText(c.Request().Context(), req)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toAnalysisResponse(analysis))
}

func (h *Handler) RenderImage(c echo.Context) error {
	var body ImageRequest
	if err := c.Bind(&body); err != nil {
		return mapError(c, errBadBody)
	}

	url, err := h.svc.RenderImage(c.Request().Context(), body.ImagePrompt)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, ImageResponse{ImageURL: url})
}

var (
	errBadBody      = errors.New("request body must be JSON")
	errInputTooLong = errors.New("user input is too long")
)

func (h *Handler) bindAnalysis(c echo.Context) (domain.AnalysisRequest, error) {
	var body AnalyzeRequest
	if err := c.Bind(&body); err != nil {
		return domain.AnalysisRequest{}, errBadBody
	}
	if strings.TrimSpace(body.UserInput) == "" {
		return domain.AnalysisRequest{}, domain.ErrEmptyInput
	}
	if h.maxInputChars > 0 && utf8.RuneCountInString(body.UserInput) > h.maxInputChars {
		return domain.AnalysisRequest{}, errInputTooLong
	}

	lang, err := domain.ParseLanguage(body.Language, h.svc.DefaultLanguage())
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	return domain.AnalysisRequest{Text: body.UserInput, Language: lang}, nil
}

func mapError(c echo.Context, err error) error {
	reqID := requestID(c)

	switch {
	case domain.IsValidation(err), errors.Is(err, errBadBody), errors.Is(err, errInputTooLong):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMissingAPIKeys):
		slog.Error("provider credentials missing", "request_id", reqID)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	case domain.IsUpstream(err), errors.Is(err, domain.ErrNoImageData):
		slog.Error("upstream failure", "request_id", reqID, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", reqID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
