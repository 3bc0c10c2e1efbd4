// Package chunk enforces the model token budget on outgoing text.
//
// Token counts are estimated from character length; the upstream models
// average roughly four characters per token on English prose, which is
// close enough for a safety margin that the budget carries anyway.
package chunk

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultTokenBudget   = 8000
	DefaultCharsPerToken = 4
	DefaultLookback      = 200
	DefaultMarker        = "..."
)

// Policy controls how oversized text is cut down to budget. The zero
// value behaves like DefaultPolicy.
type Policy struct {
	TokenBudget   int
	CharsPerToken int
	Lookback      int
	Marker        string
}

// DefaultPolicy returns the standard budget: 8000 tokens at four
// characters each, cutting at whitespace within a 200-character window.
func DefaultPolicy() Policy {
	return Policy{
		TokenBudget:   DefaultTokenBudget,
		CharsPerToken: DefaultCharsPerToken,
		Lookback:      DefaultLookback,
		Marker:        DefaultMarker,
	}
}

func (p Policy) withDefaults() Policy {
	if p.TokenBudget <= 0 {
		p.TokenBudget = DefaultTokenBudget
	}
	if p.CharsPerToken <= 0 {
		p.CharsPerToken = DefaultCharsPerToken
	}
	if p.Lookback <= 0 {
		p.Lookback = DefaultLookback
	}
	if p.Marker == "" {
		p.Marker = DefaultMarker
	}
	return p
}

// CharBudget is the character allowance implied by the token budget.
func (p Policy) CharBudget() int {
	p = p.withDefaults()
	return p.TokenBudget * p.CharsPerToken
}

// EstimateTokens approximates the token count of text.
func (p Policy) EstimateTokens(text string) int {
	p = p.withDefaults()
	return len(text) / p.CharsPerToken
}

// Fit returns text unchanged when it fits the budget, otherwise a
// truncated copy ending in the marker. The cut lands on the nearest
// preceding whitespace within the lookback window, falling back to a hard
// cut when none is found, and never splits a rune. The result always fits
// the budget, so Fit(Fit(x)) == Fit(x).
func (p Policy) Fit(text string) string {
	p = p.withDefaults()
	budget := p.CharBudget()
	if len(text) <= budget {
		return text
	}

	cut := budget - len(p.Marker)
	if cut <= 0 {
		return p.Marker[:budget]
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	if ws := lastWhitespace(text, cut, p.Lookback); ws >= 0 {
		cut = ws
	}

	return strings.TrimRight(text[:cut], " \t\r\n") + p.Marker
}

// lastWhitespace finds the byte index of the last whitespace character in
// (limit-window, limit], or -1. Whitespace is ASCII, so byte scanning is
// rune-safe.
func lastWhitespace(text string, limit, window int) int {
	low := limit - window
	if low < 0 {
		low = 0
	}
	for i := limit; i > low; i-- {
		switch text[i-1] {
		case ' ', '\t', '\n', '\r':
			return i - 1
		}
	}
	return -1
}
