package session

import "github.com/abhisek/pathwise/internal/catalog"

// Rejection reasons reported to Metrics.AnswerRejected.
const (
	RejectInvalidState     = "invalid_state"
	RejectQuestionMismatch = "question_mismatch"
	RejectUnknownOption    = "unknown_option"
)

// Metrics receives engine events.
type Metrics interface {
	AttemptStarted(stream catalog.StreamID, reset bool)
	AttemptCompleted(stream catalog.StreamID)
	AttemptPaused()
	AnswerRejected(reason string)
	PersistenceRetry(op string)
}

type nopMetrics struct{}

func (nopMetrics) AttemptStarted(catalog.StreamID, bool) {}
func (nopMetrics) AttemptCompleted(catalog.StreamID)     {}
func (nopMetrics) AttemptPaused()                        {}
func (nopMetrics) AnswerRejected(string)                 {}
func (nopMetrics) PersistenceRetry(string)               {}
