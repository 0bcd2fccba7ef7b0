// Package resilience classifies provider faults. Nothing here retries: a
// failed call is reported once and the resolver moves on.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Fault classes attached to recorded provider failures.
const (
	FaultTransient = "transient"
	FaultPermanent = "permanent"
)

// TransientError marks a provider fault that is likely to clear on its own
// (429, 5xx, network timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"transport connection broken",
	"unexpected eof",
}

// IsTransient reports whether err, or anything in its chain, is a
// TransientError, a network timeout, a deadline, or a reset/refused
// connection. Wrapped transport errors are also matched by message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether a status code points at a
// server-side condition rather than a bad request.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 425, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ClassifyError returns FaultTransient or FaultPermanent.
func ClassifyError(err error) string {
	if IsTransient(err) {
		return FaultTransient
	}
	return FaultPermanent
}
