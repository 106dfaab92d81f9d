package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

func press(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_NavigateAndSubmit(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"alpha", "beta", "gamma"})

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 0 {
		t.Errorf("up at top moved selection to %d", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2 (clamped)", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.ChosenIndex != 2 {
		t.Fatalf("Submitted=%v ChosenIndex=%d, want true and 2", m.Submitted, m.ChosenIndex)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 2 {
		t.Error("selection moved after submit")
	}

	m = m.Reset()
	if m.Submitted || m.ChosenIndex != -1 || m.Selected != 2 {
		t.Errorf("Reset = %+v", m)
	}
}

func TestMultiChoice_NumberShortcut(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"alpha", "beta"})

	m, _ = m.Update(press('2'))
	if m.Selected != 1 {
		t.Errorf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(press('9'))
	if m.Selected != 1 {
		t.Errorf("out-of-range shortcut changed selection to %d", m.Selected)
	}
}

func TestMultiChoice_View(t *testing.T) {
	m := NewMultiChoice("Your friend is stuck on a puzzle.", []string{"Explain", "Watch"})
	view := m.View(60)
	for _, want := range []string{"Your friend is stuck on a puzzle.", "▸ 1)  Explain", "2)  Watch"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var chosen string
	pick := func(s string) func() tea.Cmd {
		return func() tea.Cmd { chosen = s; return nil }
	}
	m := NewMenu([]MenuItem{
		{Label: "Arts", Disabled: true},
		{Label: "Science", Action: pick("pcm")},
		{Label: "Humanities", Disabled: true},
		{Label: "Commerce", Action: pick("commerce")},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want first enabled item", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if chosen != "commerce" {
		t.Errorf("chosen = %q, want commerce", chosen)
	}
}

func TestProgressBar_Width(t *testing.T) {
	for _, frac := range []float64{-1, 0, 0.35, 1, 2} {
		p := NewProgressBar("Progress", frac, CountSuffix(7, 20), 40)
		if w := lipgloss.Width(p.View()); w != 40 {
			t.Errorf("fraction %v: width = %d, want 40", frac, w)
		}
	}
}

func TestProgressBar_LabelPadding(t *testing.T) {
	a := NewProgressBar("analytical", 0.5, "", 40)
	a.LabelWidth = 12
	b := NewProgressBar("social", 0.5, "", 40)
	b.LabelWidth = 12

	if lipgloss.Width(a.View()) != lipgloss.Width(b.View()) {
		t.Error("padded labels should produce equal widths")
	}
}
