package qa

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrValidation = errors.New("validation failed")
	ErrNetwork    = errors.New("service unreachable")
	ErrTimeout    = errors.New("request timed out")
	ErrService    = errors.New("service returned an error")
)

type (
	// ValidationError rejects input before or instead of a network round trip.
	// Message names the violated rule and is safe to show verbatim.
	ValidationError struct {
		Field   string
		Message string
	}

	// NetworkError means the transport never reached the service.
	NetworkError struct {
		URL string
		Err error
	}

	// TimeoutError means no response arrived inside the request window.
	TimeoutError struct {
		Op    string
		After time.Duration
		Err   error
	}

	// ServiceError is any non-success response, or a success response whose
	// body could not be decoded.
	ServiceError struct {
		Status int
		Body   string
	}
)

func (e *ValidationError) Error() string { return e.Message }

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to reach %s: %v", e.URL, e.Err)
}

func (e *TimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
	}
	return fmt.Sprintf("%s timed out", e.Op)
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("service error (%d)", e.Status)
	}
	return fmt.Sprintf("service error (%d): %s", e.Status, e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }
func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *NetworkError) Is(target error) bool    { return target == ErrNetwork }
func (e *TimeoutError) Is(target error) bool    { return target == ErrTimeout }
func (e *ServiceError) Is(target error) bool    { return target == ErrService }

// Retryable reports whether another attempt could plausibly succeed.
// Validation failures and client-side 4xx responses never are.
func Retryable(err error) bool {
	var svc *ServiceError
	switch {
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrTimeout):
		return true
	case errors.As(err, &svc):
		return svc.Status >= 500 || svc.Status == 429
	default:
		return false
	}
}
