package docgen

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// pageLanguages are the languages articles are written in.
var pageLanguages = []lingua.Language{lingua.English, lingua.Japanese}

type languageDetector struct {
	detector lingua.LanguageDetector
	fallback string
}

func newLanguageDetector(fallback string) *languageDetector {
	if fallback == "" {
		fallback = "en"
	}
	return &languageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(pageLanguages...).
			Build(),
		fallback: fallback,
	}
}

// Detect returns the lowercase ISO 639-1 code for text, or the fallback.
func (d *languageDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return d.fallback
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return d.fallback
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
