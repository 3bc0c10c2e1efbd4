package extract

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure.
type Kind string

const (
	// KindUnsupportedFormat means no registered strategy matched.
	KindUnsupportedFormat Kind = "unsupported_format"
	// KindCorruptInput means a strategy matched but could not decode the
	// bytes (including parser panics from format libraries).
	KindCorruptInput Kind = "corrupt_input"
	// KindDependencyMissing means the format is recognized but needs
	// tooling this build does not carry (legacy .doc/.xls).
	KindDependencyMissing Kind = "dependency_missing"
	// KindEmptyContent means extraction succeeded but produced no text.
	KindEmptyContent Kind = "empty_content"
)

// Error is the typed failure returned by strategies and the registry.
// Callers branch on Kind via errors.As or KindOf.
type Error struct {
	Kind     Kind
	Strategy string
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Strategy != "" {
		msg = e.Strategy + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "extract: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind, or "" for non-extraction errors.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

func failf(kind Kind, strategy, format string, args ...any) error {
	return &Error{Kind: kind, Strategy: strategy, Err: fmt.Errorf(format, args...)}
}
