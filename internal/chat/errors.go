package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/csheth/polysumm/internal/qa"
	"github.com/csheth/polysumm/internal/session"
)

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrBusy       = errors.New("a question is already in flight")
)

// ErrorKind classifies a failed turn for presentation.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindService    ErrorKind = "service"
	KindCanceled   ErrorKind = "canceled"
	KindUnknown    ErrorKind = "unknown"
)

// TurnError is the structured form of a failed turn, meant for a banner. The
// conversation itself carries the same text as an error message.
type TurnError struct {
	Kind    ErrorKind
	Message string
	Query   string
	Err     error
}

func (e *TurnError) Error() string { return e.Message }
func (e *TurnError) Unwrap() error { return e.Err }

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, qa.ErrValidation):
		return KindValidation
	case errors.Is(err, qa.ErrTimeout):
		return KindTimeout
	case errors.Is(err, qa.ErrNetwork):
		return KindNetwork
	case errors.Is(err, qa.ErrService):
		return KindService
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindUnknown
	}
}

// Explain renders err as text a user can act on.
func Explain(err error) string {
	var (
		validation *qa.ValidationError
		network    *qa.NetworkError
		service    *qa.ServiceError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &network):
		return fmt.Sprintf("Network error: unable to connect to the API server at %s. Please ensure the server is running.", network.URL)
	case KindOf(err) == KindTimeout:
		return "Request timed out. The server might be busy or your question might be too complex. Try again or simplify the question."
	case errors.As(err, &service):
		if service.Body == "" {
			return fmt.Sprintf("The service returned an error (status %d).", service.Status)
		}
		return fmt.Sprintf("The service returned an error (status %d): %s", service.Status, service.Body)
	case KindOf(err) == KindCanceled:
		return "The request was cancelled."
	case errors.Is(err, session.ErrNotFound):
		return err.Error()
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

func newTurnError(err error, query string) *TurnError {
	return &TurnError{
		Kind:    KindOf(err),
		Message: Explain(err),
		Query:   query,
		Err:     err,
	}
}
