package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind categorizes a completion failure so callers can distinguish
// transient conditions from configuration problems.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindAuth      Kind = "auth"
	KindRateLimit Kind = "rate_limit"
	KindMalformed Kind = "malformed_response"
	KindUnknown   Kind = "unknown"
)

// Error is a completion failure with its classified kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps err in an *Error with the kind inferred from the
// underlying failure. Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	return &Error{Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	// The transport libraries fold HTTP status codes into error text, so
	// classification falls back to string matching.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		return KindAuth
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota"):
		return KindRateLimit
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof"):
		return KindNetwork
	case strings.Contains(msg, "decode") || strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "no choices") || strings.Contains(msg, "empty response"):
		return KindMalformed
	default:
		return KindUnknown
	}
}
