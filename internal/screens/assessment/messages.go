package assessment

import (
	"github.com/abhisek/pathwise/internal/session"
)

// attemptReadyMsg is sent when an attempt has been started or resumed.
type attemptReadyMsg struct {
	Attempt *session.Attempt
	Err     error
}

// answerRecordedMsg carries the engine's reply to a submitted answer.
type answerRecordedMsg struct {
	Result *session.SubmitResult
	Err    error
}

// pauseDoneMsg is sent once the pause write has finished.
type pauseDoneMsg struct {
	Err error
}
