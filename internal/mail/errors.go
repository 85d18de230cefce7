package mail

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
)

// FailureKind classifies a fetch failure for the caller.
type FailureKind int

const (
	// FailTimeout means a bounded network step exceeded its deadline.
	FailTimeout FailureKind = iota
	// FailConnection means connecting or authenticating failed.
	FailConnection
	// FailFetch means the server rejected or broke the fetch itself.
	FailFetch
	// FailConfiguration means no usable sender filter could be resolved.
	FailConfiguration
)

// Error wraps an underlying error with its failure kind. The wrapped error is
// for logging only; callers present their own user-safe message per kind.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case FailTimeout:
		return "mail: timeout: " + e.Err.Error()
	case FailConnection:
		return "mail: connection: " + e.Err.Error()
	case FailConfiguration:
		return "mail: configuration: " + e.Err.Error()
	default:
		return "mail: fetch: " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error, defaulting to FailFetch.
func KindOf(err error) FailureKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return FailFetch
}

// isTimeout reports whether err is a network deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTransport reports whether err comes from the connection itself rather
// than from a server status response.
func isTransport(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
