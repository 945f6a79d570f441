// Package apperr defines the error taxonomy shared by the synthesis pipeline
// and its translation to client-facing HTTP statuses.
//
// Every error raised inside the core carries a Kind. Validation, format,
// compatibility and missing-input errors describe a request that cannot
// succeed as given and must be corrected by the caller; they are never
// retried. Engine errors wrap opaque failures from the synthesis engine.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindCompatibility     Kind = "compatibility"
	KindMissingInput      Kind = "missing_input"
	KindEngine            Kind = "engine"
	KindUnknown           Kind = "unknown"
)

// Error is a Kind-tagged error with optional remediation data.
type Error struct {
	Kind    Kind
	Op      string
	Message string

	// Supported lists the values the caller may choose from instead
	// (e.g. languages a model accepts).
	Supported []string

	// Alternatives lists model ids known to satisfy the request.
	Alternatives []string

	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s", e.Kind, e.Op, e.Message)
	if len(e.Supported) > 0 {
		fmt.Fprintf(&b, " (supported: %s)", strings.Join(e.Supported, ", "))
	}
	if len(e.Alternatives) > 0 {
		fmt.Fprintf(&b, " (alternatives: %s)", strings.Join(e.Alternatives, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error without a cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap tags err with kind. Errors that already carry a Kind are returned
// unchanged so the innermost classification wins.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{Kind: kind, Op: op, Message: message, Cause: err}
}

// Validation reports malformed input: empty text, empty filename, unknown model.
func Validation(op, format string, args ...any) *Error {
	return New(KindValidation, op, fmt.Sprintf(format, args...))
}

// UnsupportedFormat reports an uploaded voice sample with a disallowed extension.
func UnsupportedFormat(op string, allowed []string) *Error {
	e := New(KindUnsupportedFormat, op,
		"unsupported voice sample format, allowed: "+strings.Join(allowed, ", "))
	e.Supported = append([]string(nil), allowed...)
	return e
}

// Compatibility reports a language the chosen model cannot speak.
func Compatibility(op, message string, supported, alternatives []string) *Error {
	e := New(KindCompatibility, op, message)
	e.Supported = append([]string(nil), supported...)
	e.Alternatives = append([]string(nil), alternatives...)
	return e
}

// MissingInput reports a voice-cloning model that has neither a sample nor a speaker.
func MissingInput(op, message string) *Error {
	return New(KindMissingInput, op, message)
}

// Engine wraps an opaque synthesis engine failure.
func Engine(op string, err error) *Error {
	return Wrap(KindEngine, op, "synthesis engine failure", err)
}

// KindOf returns the Kind of the first Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain carries an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsClientError reports whether err must be corrected by the caller.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindUnsupportedFormat, KindCompatibility, KindMissingInput:
		return true
	default:
		return false
	}
}

// HTTPStatus maps err to the status code returned at the HTTP boundary.
func HTTPStatus(err error) int {
	if IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
