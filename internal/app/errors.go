package app

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification carried by every failure
// returned from a use case.
type ErrorKind string

const (
	ErrInvalidProgress          ErrorKind = "INVALID_PROGRESS"
	ErrMissingDelayReason       ErrorKind = "MISSING_DELAY_REASON"
	ErrForbidden                ErrorKind = "FORBIDDEN"
	ErrUnknownRole              ErrorKind = "UNKNOWN_ROLE"
	ErrNotFound                 ErrorKind = "NOT_FOUND"
	ErrCodeGenerationFailed     ErrorKind = "CODE_GENERATION_FAILED"
	ErrStoreUnavailable         ErrorKind = "STORE_UNAVAILABLE"
	ErrConcurrentUpdateConflict ErrorKind = "CONCURRENT_UPDATE_CONFLICT"
	ErrInvalidInput             ErrorKind = "INVALID_INPUT"
	ErrInternal                 ErrorKind = "INTERNAL"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == ErrStoreUnavailable || e.Kind == ErrConcurrentUpdateConflict
}

// Is matches another *Error of the same kind, so errors.Is(err, app.Forbidden(""))
// style checks work against kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to err, keeping err reachable through errors.Unwrap.
func Wrap(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of err, or ErrInternal for untagged errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Sentinels usable as errors.Is targets.
var (
	Forbidden        = &Error{Kind: ErrForbidden}
	NotFound         = &Error{Kind: ErrNotFound}
	StoreUnavailable = &Error{Kind: ErrStoreUnavailable}
)
