package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidTheme = errors.New("theme must be light or dark")
)

// NotFoundError is recorded when recovery is attempted for an id that is not
// in the document history.
type NotFoundError struct {
	DocumentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found in session history", e.DocumentID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
