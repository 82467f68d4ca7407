package domain

import "errors"

var (
	ErrEmptyInput      = errors.New("user input is required")
	ErrInvalidLanguage = errors.New("language must be one of: en, ru")
	ErrMissingAPIKeys  = errors.New("server configuration error: missing API keys")
	ErrUpstreamLLM     = errors.New("text provider error")
	ErrInvalidLLMJSON  = errors.New("failed to parse JSON from text provider response")
	ErrUpstreamImage   = errors.New("image provider error")
	ErrNoImageData     = errors.New("no image data received from image provider")
)

// IsValidation reports errors caused by the caller's input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrInvalidLanguage)
}

// IsUpstream reports failures of either provider, including unusable bodies.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamLLM) ||
		errors.Is(err, ErrInvalidLLMJSON) ||
		errors.Is(err, ErrUpstreamImage)
}
