package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ProcessingError carries the retry classification of a failed event.
//
// A terminal failure is one that retrying can never fix: malformed input,
// a ticket that does not exist, a thread that was never registered. The
// delivery is acknowledged and the user is shown the error reaction.
//
// Every other failure (timeouts, rate limits, collaborator outages) is
// transient: the delivery is nacked and the queue's redelivery budget
// decides whether it is retried or dead-lettered.
type ProcessingError struct {
	terminal bool
	err      error
}

func (e *ProcessingError) Error() string {
	return e.err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.err
}

// Terminalf creates a terminal processing error from a format string.
func Terminalf(format string, args ...any) error {
	return &ProcessingError{terminal: true, err: fmt.Errorf(format, args...)}
}

// Transientf creates a transient processing error from a format string.
func Transientf(format string, args ...any) error {
	return &ProcessingError{terminal: false, err: fmt.Errorf(format, args...)}
}

// AsTerminal wraps an existing error as terminal, preserving the chain.
func AsTerminal(err error) error {
	if err == nil {
		return nil
	}
	return &ProcessingError{terminal: true, err: err}
}

// IsTerminal reports whether err is classified as terminal.
func IsTerminal(err error) bool {
	var pe *ProcessingError
	return errors.As(err, &pe) && pe.terminal
}

// IsTransient reports whether err should be retried. Unclassified errors
// count as transient: a misclassified transient failure only costs futile
// retries, while a misclassified terminal one silently drops work.
func IsTransient(err error) bool {
	return err != nil && !IsTerminal(err)
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
