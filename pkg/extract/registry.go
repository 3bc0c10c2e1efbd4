// Package extract turns documents of many formats into plain text.
//
// Each format is a Strategy. The Registry tries strategies in priority
// order against a document's declared type or filename extension, then
// falls back to content sniffing for extensionless inputs. Adding a format
// means registering a strategy; nothing else changes.
package extract

import (
	"errors"
	"strings"

	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/detect"
)

// Strategy converts one document format into plain text.
type Strategy interface {
	// Name is a short stable identifier, e.g. "pdf".
	Name() string
	// Match reports whether this strategy handles the document's
	// effective extension.
	Match(doc models.Document) bool
	// Extract returns the plain text content. The document's bytes are
	// loaded before this is called.
	Extract(doc models.Document) (string, error)
}

// Registry holds strategies in priority order, most specific first.
type Registry struct {
	strategies []Strategy
}

// NewRegistry builds a registry from the given strategies, keeping order.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// Default returns the standard strategy set. Container and binary formats
// come before the text catch-alls so sniffed documents land on the most
// specific match.
func Default() *Registry {
	return NewRegistry(
		PDF{},
		DOCX{},
		XLSX{},
		Legacy{},
		RTF{},
		HTML{},
		CSV{},
		Plain{},
	)
}

// Register appends a strategy at the lowest priority.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Strategies returns the registered strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Resolve picks the strategy for a document. The declared type or filename
// extension is consulted first; when neither matches, the content is
// sniffed and the match repeated with the sniffed type. Returns nil when
// nothing matches.
func (r *Registry) Resolve(doc models.Document) Strategy {
	for _, s := range r.strategies {
		if s.Match(doc) {
			return s
		}
	}
	if kind := detect.Sniff(doc.Content); kind != "" {
		sniffed := doc
		sniffed.Type = kind
		for _, s := range r.strategies {
			if s.Match(sniffed) {
				return s
			}
		}
	}
	return nil
}

// Extract resolves a strategy and runs it, normalizing every failure mode
// into an *Error. The returned name identifies the strategy that ran
// ("" when none matched). A success never returns blank text: output that
// trims to nothing is an empty_content failure.
func (r *Registry) Extract(doc models.Document) (text, name string, err error) {
	if doc.Content == nil && doc.Path != "" {
		if loadErr := doc.Load(); loadErr != nil {
			return "", "", failf(KindCorruptInput, "", "failed to read document: %w", loadErr)
		}
	}

	s := r.Resolve(doc)
	if s == nil {
		return "", "", failf(KindUnsupportedFormat, "", "no strategy for %q", doc.Ext())
	}

	text, err = runStrategy(s, doc)
	if err != nil {
		var ee *Error
		if errors.As(err, &ee) {
			return "", s.Name(), err
		}
		return "", s.Name(), &Error{Kind: KindCorruptInput, Strategy: s.Name(), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", s.Name(), &Error{Kind: KindEmptyContent, Strategy: s.Name()}
	}
	return text, s.Name(), nil
}

// runStrategy guards against panics inside format libraries. Malformed
// input must surface as a corrupt_input error, not a crash.
func runStrategy(s Strategy, doc models.Document) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = failf(KindCorruptInput, s.Name(), "parser panic: %v", rec)
		}
	}()
	return s.Extract(doc)
}
