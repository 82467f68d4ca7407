package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// DefaultRevealDelay gives the result view time to render before it is
// brought into view.
const DefaultRevealDelay = 100 * time.Millisecond

// ErrSuperseded is returned when a response arrives for a submission that was
// cleared in the meantime. The response is dropped.
var ErrSuperseded = errors.New("submission superseded")

// Backend is the server surface the submitter needs.
type Backend interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.FullAnalysisResult, error)
	AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (domain.TarotAnalysis, error)
	GenerateImage(ctx context.Context, lang domain.Language, prompt string) (string, error)
}

// Revealer brings a completed result into view.
type Revealer interface {
	Reveal(result domain.FullAnalysisResult)
}

// RevealFunc adapts a function to Revealer.
type RevealFunc func(domain.FullAnalysisResult)

func (f RevealFunc) Reveal(r domain.FullAnalysisResult) { f(r) }

type SubmitterOptions struct {
	// Staged makes two backend calls so GeneratingImage is observable.
	Staged      bool
	RevealDelay time.Duration
	Revealer    Revealer
	// OnChange is called with every new View, outside the lock.
	OnChange func(View)
}

// Submitter drives one form: a single View, one submission at a time.
type Submitter struct {
	backend Backend
	opts    SubmitterOptions

	mu   sync.Mutex
	view View
}

func NewSubmitter(backend Backend, lang domain.Language, opts SubmitterOptions) *Submitter {
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	return &Submitter{backend: backend, opts: opts, view: NewView(lang)}
}

// View returns the current state.
func (s *Submitter) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Submit sends text for a reading. Blank text, or a submission while another
// is running, is a no-op returning (nil, nil).
func (s *Submitter) Submit(ctx context.Context, text string) (*domain.FullAnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var (
		seq  uint64
		lang domain.Language
	)
	started := s.update(func(v View) (View, bool) {
		next, ok := v.Begin()
		seq, lang = next.Seq, next.Language
		return next, ok
	})
	if !started {
		return nil, nil
	}

	req := domain.AnalysisRequest{Text: text, Language: lang}
	var (
		res domain.FullAnalysisResult
		err error
	)
	if s.opts.Staged {
		res, err = s.staged(ctx, seq, req)
	} else {
		res, err = s.backend.Analyze(ctx, req)
	}
	if errors.Is(err, ErrSuperseded) {
		return nil, err
	}
	if err != nil {
		msg := errorMessage(lang, err)
		if !s.update(func(v View) (View, bool) { return v.Fail(seq, msg) }) {
			return nil, ErrSuperseded
		}
		var oe *OracleError
		if !errors.As(err, &oe) {
			oe = &OracleError{Message: msg}
		}
		return nil, oe
	}

	if !s.update(func(v View) (View, bool) { return v.Complete(seq, res) }) {
		return nil, ErrSuperseded
	}
	s.scheduleReveal(seq, res)
	return &res, nil
}

func (s *Submitter) staged(ctx context.Context, seq uint64, req domain.AnalysisRequest) (domain.FullAnalysisResult, error) {
	analysis, err := s.backend.AnalyzeText(ctx, req)
	if err != nil {
		return domain.FullAnalysisResult{}, err
	}
	if !s.update(func(v View) (View, bool) { return v.TextReady(seq, analysis) }) {
		return domain.FullAnalysisResult{}, ErrSuperseded
	}

	url, err := s.backend.GenerateImage(ctx, req.Language, analysis.ImagePrompt)
	if err != nil {
		return domain.FullAnalysisResult{}, err
	}
	return domain.FullAnalysisResult{TarotAnalysis: analysis, ImageURL: url}, nil
}

// Clear resets the form to Idle, even mid-flight. The running request is not
// cancelled; its response is dropped when it lands.
func (s *Submitter) Clear() {
	s.update(func(v View) (View, bool) { return v.Clear(), true })
}

// ToggleLanguage flips the language used by the next submission.
func (s *Submitter) ToggleLanguage() domain.Language {
	var lang domain.Language
	s.update(func(v View) (View, bool) {
		next := v.ToggleLanguage()
		lang = next.Language
		return next, true
	})
	return lang
}

func (s *Submitter) update(fn func(View) (View, bool)) bool {
	s.mu.Lock()
	next, ok := fn(s.view)
	if ok {
		s.view = next
	}
	s.mu.Unlock()

	if ok && s.opts.OnChange != nil {
		s.opts.OnChange(next)
	}
	return ok
}

func (s *Submitter) scheduleReveal(seq uint64, res domain.FullAnalysisResult) {
	if s.opts.Revealer == nil {
		return
	}
	time.AfterFunc(s.opts.RevealDelay, func() {
		v := s.View()
		if v.Seq != seq || v.Status != Complete {
			return
		}
		s.opts.Revealer.Reveal(res)
	})
}

func errorMessage(lang domain.Language, err error) string {
	var oe *OracleError
	if errors.As(err, &oe) && oe.Message != "" {
		return oe.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return Localize(lang, msgGenericError)
}
