package lang

import (
	"strings"
	"testing"
)

func TestDetectLanguages(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		text string
		code string
	}{
		{
			name: "english",
			text: "The quarterly report outlines revenue growth across all regions and describes the budget plan for the upcoming fiscal year.",
			code: "en",
		},
		{
			name: "spanish",
			text: "El informe anual describe los resultados financieros de la empresa y las perspectivas de crecimiento para el próximo año.",
			code: "es",
		},
		{
			name: "german",
			text: "Der Bericht beschreibt die wirtschaftliche Entwicklung des Unternehmens im vergangenen Geschäftsjahr ausführlich.",
			code: "de",
		},
		{
			name: "russian",
			text: "Ежеквартальный отчет описывает финансовые результаты компании и планы развития на следующий год.",
			code: "ru",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := d.Detect(tt.text)
			if !ok {
				t.Fatal("Detect() ok = false")
			}
			if res.Code != tt.code {
				t.Errorf("Code = %q, want %q", res.Code, tt.code)
			}
			if res.Name == "" {
				t.Error("Name is empty")
			}
			if res.Confidence <= 0 || res.Confidence > 1 {
				t.Errorf("Confidence = %f, want in (0, 1]", res.Confidence)
			}
		})
	}
}

func TestDetectShortText(t *testing.T) {
	d := NewDetector()

	for _, text := range []string{"", "   ", "hi", "ok then"} {
		if _, ok := d.Detect(text); ok {
			t.Errorf("Detect(%q) ok = true, want false", text)
		}
	}
}

func TestDetectSamplesLongText(t *testing.T) {
	d := NewDetector()

	// Multi-byte runes past the sample limit must not break detection.
	sentence := "Ежеквартальный отчет описывает финансовые результаты компании и планы развития на следующий год. "
	long := strings.Repeat(sentence, 60)
	if len(long) <= maxSampleBytes {
		t.Fatalf("fixture too short: %d bytes", len(long))
	}

	res, ok := d.Detect(long)
	if !ok {
		t.Fatal("Detect() ok = false")
	}
	if res.Code != "ru" {
		t.Errorf("Code = %q, want ru", res.Code)
	}
}
