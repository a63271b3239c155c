package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrInvalidPollID   = errors.New("invalid poll id")
	ErrInvalidOption   = errors.New("invalid option for this poll")
	ErrAlreadyVoted    = errors.New("voter has already voted on this poll")
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrResultsNotOpen  = errors.New("results are not public while the poll is active")
	ErrInternal        = errors.New("internal server error")
)

// ErrTransientStorage marks storage failures (lock timeouts, serialization
// conflicts) that were fully rolled back. Retrying is the caller's decision;
// a retried cast must re-run duplicate detection from scratch.
var ErrTransientStorage = errors.New("transient storage failure")

// ValidationError carries field-level detail for malformed poll input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PollNotActiveReason distinguishes a poll that has not opened yet from one
// that already closed, so callers can word the rejection correctly.
type PollNotActiveReason string

const (
	PollNotStarted PollNotActiveReason = "not started"
	PollClosed     PollNotActiveReason = "closed"
)

type PollNotActiveError struct {
	Reason PollNotActiveReason
}

func (e *PollNotActiveError) Error() string {
	return fmt.Sprintf("poll is not active: %s", e.Reason)
}
