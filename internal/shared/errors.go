package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrListNotFound       = fmt.Errorf("list not found")
	ErrNoMatch            = fmt.Errorf("no matching film")
	ErrUpdateRejected     = fmt.Errorf("list update rejected")
	ErrPaginationLimit    = fmt.Errorf("pagination exceeded page limit")
	ErrPaginationStalled  = fmt.Errorf("pagination cursor did not advance")

	// Local state errors
	ErrMalformedCache = fmt.Errorf("malformed cache file")
	ErrUnreadableDir  = fmt.Errorf("unreadable directory")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrorKind tags a remote failure so callers can decide between absorbing and propagating it.
type ErrorKind int

const (
	// KindTransient covers transport failures, throttling and server errors.
	KindTransient ErrorKind = iota
	// KindNoMatch means the call succeeded but found nothing.
	KindNoMatch
	// KindFatal aborts the run (expired or rejected authentication, missing list).
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNoMatch:
		return "no_match"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ServiceError is the tagged result of a failed remote call.
type ServiceError struct {
	Kind   ErrorKind
	Op     string // e.g. "search", "list_entries", "update_list"
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

// NewServiceError wraps err with a kind and operation name.
func NewServiceError(kind ErrorKind, op string, status int, err error) *ServiceError {
	return &ServiceError{Kind: kind, Op: op, Status: status, Err: err}
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf classifies err.
//
// A [ServiceError] reports its own kind. Bare [ErrNoMatch] is a no-match, authentication
// sentinels and context cancellation are fatal, and everything else is transient.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindTransient
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}

	switch {
	case errors.Is(err, ErrNoMatch):
		return KindNoMatch
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrAuthFailed):
		return KindFatal
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindFatal
	default:
		return KindTransient
	}
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	return err != nil && KindOf(err) == KindFatal
}
