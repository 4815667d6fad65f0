// Package detector guesses the natural language of document prose. Code
// blocks are excluded by the caller; the guess is metadata for the run
// summary and the run log, never a processing decision.
package detector

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// minProseLength guards against detecting on a handful of words, where
// lingua's accuracy drops sharply.
const minProseLength = 40

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over the languages the two sources realistically
// contain. Building the underlying models is relatively expensive, so one
// Detector should be shared across a run.
func New() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.French,
		lingua.German,
		lingua.Spanish,
		lingua.Portuguese,
		lingua.Chinese,
		lingua.Japanese,
		lingua.Korean,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// DetectProse returns a lowercase ISO 639-1 code for the prose, or "" when
// the text is too short or no language is confidently detected.
func (d *Detector) DetectProse(prose []string) string {
	text := strings.TrimSpace(strings.Join(prose, " "))
	if len(text) < minProseLength {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
