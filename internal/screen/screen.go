package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Screen is one view of the terminal client.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status in the
// right side of the header.
type StatusProvider interface {
	Status() string
}

// Interrupter is implemented by screens that must run cleanup before the
// program exits on Ctrl+C. The returned command must eventually quit.
type Interrupter interface {
	Interrupt() tea.Cmd
}

// AttemptPausedMsg reports that the attempt was paused and the client
// should exit.
type AttemptPausedMsg struct {
	AttemptID string
}

// AttemptCompletedMsg reports that the attempt was completed.
type AttemptCompletedMsg struct {
	AttemptID string
}
