package client

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/marataitester-blip/psy-color/internal/domain"
)

// Message keys.
const (
	msgGenericError = "Failed to consult the Oracle."
	msgNetworkError = "The connection to the ethereal realm was severed."
	msgAnalyzing    = "Reading the signs..."
	msgGenerating   = "Painting the card..."
	msgCardTitle    = "Archetype manifested: %s"
	msgRevelation   = "The revelation"
)

func init() {
	ru := language.Russian
	_ = message.SetString(ru, msgGenericError, "Не удалось связаться с Оракулом.")
	_ = message.SetString(ru, msgNetworkError, "Связь с потусторонним миром прервалась.")
	_ = message.SetString(ru, msgAnalyzing, "Читаю знаки...")
	_ = message.SetString(ru, msgGenerating, "Рисую карту...")
	_ = message.SetString(ru, msgCardTitle, "Проявленный архетип: %s")
	_ = message.SetString(ru, msgRevelation, "Откровение")
}

// Localize formats key in lang; English keys are their own translation.
func Localize(lang domain.Language, key string, args ...any) string {
	return message.NewPrinter(lang.Tag()).Sprintf(key, args...)
}

// StatusLabel is the progress text shown while a submission runs.
func StatusLabel(lang domain.Language, s Status) string {
	switch s {
	case Analyzing:
		return Localize(lang, msgAnalyzing)
	case GeneratingImage:
		return Localize(lang, msgGenerating)
	default:
		return ""
	}
}

// CardTitle and RevelationLabel label the result view.
func CardTitle(lang domain.Language, card string) string {
	return Localize(lang, msgCardTitle, card)
}

func RevelationLabel(lang domain.Language) string {
	return Localize(lang, msgRevelation)
}
