package llm

import (
	"errors"
	"fmt"
)

// Kind classifies a completion failure.
type Kind string

const (
	// KindRateLimited means the service returned 429.
	KindRateLimited Kind = "rate_limited"
	// KindAuthFailed means the API key was rejected (401/403).
	KindAuthFailed Kind = "auth_failed"
	// KindModelUnavailable covers 5xx, unknown models, and unreachable
	// services.
	KindModelUnavailable Kind = "model_unavailable"
	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindMalformedResponse means the body was not a usable completion.
	KindMalformedResponse Kind = "malformed_response"
)

// Error is the typed failure returned by the client. Callers branch on
// Kind via errors.As or KindOf.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "llm: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether one more attempt could plausibly succeed.
// Auth failures and malformed responses never clear on retry.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindModelUnavailable:
		return true
	}
	return false
}

// KindOf returns the failure kind, or "" for non-client errors.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
