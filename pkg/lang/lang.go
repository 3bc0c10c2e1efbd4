// Package lang identifies the language of extracted document text.
package lang

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Sampling bounds: enough text for stable n-gram statistics without
// scanning whole documents.
const (
	minSampleBytes = 20
	maxSampleBytes = 8192
)

// candidates restricts detection to languages documents actually arrive
// in; a narrower set keeps memory bounded and accuracy high.
var candidates = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.Arabic,
	lingua.Hindi,
	lingua.Polish,
	lingua.Swedish,
	lingua.Turkish,
}

// Result is one language call for a document.
type Result struct {
	Code       string  // ISO 639-1, lowercase ("en")
	Name       string  // human-readable ("English")
	Confidence float64 // 0.0 to 1.0
}

// Detector wraps a lingua detector built once and shared across workers.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds a detector over the candidate set. Language models
// load lazily on first use.
func NewDetector() *Detector {
	return &Detector{
		inner: lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			Build(),
	}
}

// Detect reports the most likely language of text. The second return is
// false when the text is too short to call or no candidate fits.
func (d *Detector) Detect(text string) (Result, bool) {
	sample := strings.TrimSpace(text)
	if len(sample) < minSampleBytes {
		return Result{}, false
	}
	if len(sample) > maxSampleBytes {
		cut := maxSampleBytes
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}

	language, exists := d.inner.DetectLanguageOf(sample)
	if !exists {
		return Result{}, false
	}
	return Result{
		Code:       strings.ToLower(language.IsoCode639_1().String()),
		Name:       language.String(),
		Confidence: d.inner.ComputeLanguageConfidence(sample, language),
	}, true
}
