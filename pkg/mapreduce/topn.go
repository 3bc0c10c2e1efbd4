package mapreduce

import (
	"fmt"
	"sort"
	"strings"
)

// isValidKeyword checks if a keyword should be included in results.
// Filters malformed tokens (unmatched delimiters, trailing special chars, unmatched quotes).
// Conservative approach: only removes obviously broken tokens, keeps technical terms like x_train.
func isValidKeyword(word string) bool {
	// Remove trailing special characters (likely incomplete tokens)
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}

	// Check for unmatched opening delimiters
	if strings.Contains(word, "(") && !strings.Contains(word, ")") {
		return false
	}
	if strings.Contains(word, "[") && !strings.Contains(word, "]") {
		return false
	}
	if strings.Contains(word, "{") && !strings.Contains(word, "}") {
		return false
	}

	// Check for unmatched quotes (injection/malformed strings)
	quoteCount := strings.Count(word, "\"")
	if quoteCount%2 != 0 {
		return false
	}
	singleQuoteCount := strings.Count(word, "'")
	if singleQuoteCount%2 != 0 {
		return false
	}

	return true
}

type rankedWord struct {
	Word  string
	Count int
}

// rank filters malformed tokens and orders the remainder by count descending.
// Ties break alphabetically so the result is stable across runs; the ranking
// lands in the database and run artifacts.
func rank(wordCounts map[string]int, n int) []rankedWord {
	ranked := make([]rankedWord, 0, len(wordCounts))
	for word, count := range wordCounts {
		if isValidKeyword(word) {
			ranked = append(ranked, rankedWord{word, count})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopKeywords returns the top N keywords from aggregated word counts as formatted strings.
// Each string is formatted as "word:count" (e.g., "revenue:42").
func TopKeywords(wordCounts map[string]int, n int) []string {
	ranked := rank(wordCounts, n)

	keywords := make([]string, len(ranked))
	for i, rw := range ranked {
		keywords[i] = fmt.Sprintf("%s:%d", rw.Word, rw.Count)
	}
	return keywords
}

// PrintTopKeywords prints the top N keywords in a numbered list format.
func PrintTopKeywords(wordCounts map[string]int, n int) {
	for i, rw := range rank(wordCounts, n) {
		fmt.Printf("%d. %s: %d\n", i+1, rw.Word, rw.Count)
	}
}
