package mapreduce

import "github.com/tovenaar/docsum/pkg/analytics"

// Map generates a word frequency map for a single document's text.
func Map(text string, a *analytics.Analytics) map[string]int {
	return a.WordFrequency(text)
}

// Reduce aggregates per-document frequency maps into one corpus-wide map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for word, count := range counts {
			finalResults[word] += count
		}
	}

	return finalResults
}
