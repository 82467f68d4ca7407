package client

import "github.com/marataitester-blip/psy-color/internal/domain"

// Status is the phase of the form.
type Status int

const (
	Idle Status = iota
	Analyzing
	GeneratingImage
	Complete
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Analyzing:
		return "analyzing"
	case GeneratingImage:
		return "generating_image"
	case Complete:
		return "complete"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// InFlight reports whether a submission is running; input is inert then.
func (s Status) InFlight() bool {
	return s == Analyzing || s == GeneratingImage
}

// View is the whole client state. Transitions return a new View and never
// mutate the receiver.
type View struct {
	Status   Status
	Language domain.Language
	Seq      uint64
	Analysis *domain.TarotAnalysis
	Result   *domain.FullAnalysisResult
	Err      string
}

// NewView starts in Idle with the given language.
func NewView(lang domain.Language) View {
	return View{Status: Idle, Language: lang}
}

// CanSubmit reports whether a new submission may start: only from Idle or
// after an error. A completed reading has to be cleared first.
func (v View) CanSubmit() bool {
	return v.Status == Idle || v.Status == Failed
}

// Begin starts a submission. It reports false when one may not start.
func (v View) Begin() (View, bool) {
	if !v.CanSubmit() {
		return v, false
	}
	return View{Status: Analyzing, Language: v.Language, Seq: v.Seq + 1}, true
}

// TextReady records the text analysis of submission seq.
func (v View) TextReady(seq uint64, a domain.TarotAnalysis) (View, bool) {
	if seq != v.Seq || v.Status != Analyzing {
		return v, false
	}
	v.Status = GeneratingImage
	v.Analysis = &a
	return v, true
}

// Complete records the final result of submission seq.
func (v View) Complete(seq uint64, r domain.FullAnalysisResult) (View, bool) {
	if seq != v.Seq || !v.Status.InFlight() {
		return v, false
	}
	v.Status = Complete
	v.Analysis = &r.TarotAnalysis
	v.Result = &r
	v.Err = ""
	return v, true
}

// Fail records an error for submission seq.
func (v View) Fail(seq uint64, msg string) (View, bool) {
	if seq != v.Seq || !v.Status.InFlight() {
		return v, false
	}
	return View{Status: Failed, Language: v.Language, Seq: v.Seq, Err: msg}, true
}

// Clear drops any result or error and bumps the sequence so a response still
// in flight is ignored when it lands.
func (v View) Clear() View {
	return View{Status: Idle, Language: v.Language, Seq: v.Seq + 1}
}

// WithLanguage switches the language.
func (v View) WithLanguage(lang domain.Language) View {
	v.Language = lang
	return v
}

// ToggleLanguage flips between English and Russian.
func (v View) ToggleLanguage() View {
	if v.Language == domain.English {
		return v.WithLanguage(domain.Russian)
	}
	return v.WithLanguage(domain.English)
}
