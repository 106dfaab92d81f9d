package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/store"
)

var (
	// ErrUnknownStream is returned when an attempt names a stream the
	// catalog does not declare.
	ErrUnknownStream = errors.New("unknown stream")

	// ErrStaleAttempt is returned when a stored attempt references
	// questions that the loaded catalog no longer contains.
	ErrStaleAttempt = errors.New("attempt references questions missing from the catalog")
)

// InsufficientCatalogError indicates a stream has fewer questions than an
// attempt needs. It is a content problem; retrying will not help.
type InsufficientCatalogError struct {
	Stream    catalog.StreamID
	Available int
	Required  int
}

func (e *InsufficientCatalogError) Error() string {
	return fmt.Sprintf("stream %q has %d questions, attempts need %d", e.Stream, e.Available, e.Required)
}

// InvalidStateError indicates an operation is not allowed in the attempt's
// current status. Nothing was changed.
type InvalidStateError struct {
	AttemptID string
	Op        string
	Status    store.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s attempt %s: status is %s", e.Op, e.AttemptID, e.Status)
}

// QuestionMismatchError indicates an answer was submitted for a question
// other than the one the attempt is waiting on, including replays of an
// already answered question.
type QuestionMismatchError struct {
	AttemptID string
	Expected  string
	Got       string
}

func (e *QuestionMismatchError) Error() string {
	return fmt.Sprintf("attempt %s expects an answer for question %s, got %s", e.AttemptID, e.Expected, e.Got)
}

// UnknownOptionError indicates the chosen option does not belong to the
// question.
type UnknownOptionError struct {
	QuestionID string
	OptionID   string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("question %s has no option %q", e.QuestionID, e.OptionID)
}
