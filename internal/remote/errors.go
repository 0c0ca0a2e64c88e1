package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors are retried with exponential backoff on idempotent calls.
	Recoverable ErrorCategory = iota
	// Irrecoverable errors fail immediately.
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps a transport or HTTP failure with retry metadata. Its
// chain includes the matching model sentinel (ErrNotFound, ErrValidation,
// ErrUnauthorized, ErrConflict) when the status maps to one.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // 0 for network errors
	Body       string // Response body for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	return false
}

func categoryFor(status int) ErrorCategory {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return Recoverable
	case status >= 400 && status < 500:
		return Irrecoverable
	default:
		return Recoverable
	}
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrUnauthorized
	case http.StatusConflict:
		return model.ErrConflict
	}
	return nil
}

// newHTTPError classifies a non-2xx response for op.
func newHTTPError(op string, status int, body string) *ClassifiedError {
	var underlying error
	if s := sentinelFor(status); s != nil {
		underlying = fmt.Errorf("%s: %w", op, s)
	} else {
		underlying = fmt.Errorf("%s failed: HTTP %d", op, status)
	}
	return &ClassifiedError{Category: categoryFor(status), StatusCode: status, Body: body, Underlying: underlying}
}

// newNetworkError classifies a transport failure. Network errors are recoverable.
func newNetworkError(op string, err error) *ClassifiedError {
	return &ClassifiedError{Category: Recoverable, Underlying: fmt.Errorf("%s network error: %w", op, err)}
}
