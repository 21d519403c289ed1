package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so controllers can pick a response status and
// callers can decide whether a retry makes sense.
type Kind int

const (
	// InvalidURL means the supplied URL does not parse as an absolute http(s) URL.
	InvalidURL Kind = iota + 1
	// InvalidCode means a custom short code violates the charset/length rules.
	InvalidCode
	// CodeConflict means the requested short code is already taken.
	CodeConflict
	// GenerationExhausted means random code generation kept colliding.
	GenerationExhausted
	// NotFound means no record exists for the given key.
	NotFound
	// Expired means the record exists but its expiry has passed.
	Expired
	// Forbidden means the caller does not own the resource.
	Forbidden
	// QREncodingFailed means the payload could not be encoded as a QR code.
	QREncodingFailed
	// StoreUnavailable means the persistence layer failed.
	StoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidURL:
		return "invalid_url"
	case InvalidCode:
		return "invalid_code"
	case CodeConflict:
		return "code_conflict"
	case GenerationExhausted:
		return "generation_exhausted"
	case NotFound:
		return "not_found"
	case Expired:
		return "expired"
	case Forbidden:
		return "forbidden"
	case QREncodingFailed:
		return "qr_encoding_failed"
	case StoreUnavailable:
		return "store_unavailable"
	}
	return "unknown"
}

// HTTPStatus returns the suggested response status for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidURL, InvalidCode:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Expired:
		return http.StatusGone
	case Forbidden:
		return http.StatusForbidden
	case GenerationExhausted, QREncodingFailed:
		return http.StatusInternalServerError
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Retryable reports whether a bounded local retry is allowed for the kind.
// Conflicts on custom codes are client errors and must not be retried.
func (k Kind) Retryable() bool {
	return k == GenerationExhausted || k == StoreUnavailable
}

// Error is a structured error: a kind, a caller-facing message, and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, or 0 when the chain carries
// no structured error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
