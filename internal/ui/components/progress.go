package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// ProgressBar displays a horizontal bar with an optional label and suffix.
type ProgressBar struct {
	Label    string
	Fraction float64
	// Suffix is printed after the bar, e.g. "7/20" or "40.0".
	Suffix string
	Width  int
	// LabelWidth pads labels so stacked bars line up. Zero means no padding.
	LabelWidth int
}

// NewProgressBar creates a progress bar.
func NewProgressBar(label string, fraction float64, suffix string, width int) ProgressBar {
	return ProgressBar{
		Label:    label,
		Fraction: fraction,
		Suffix:   suffix,
		Width:    width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "
	}

	suffix := ""
	if p.Suffix != "" {
		suffix = "  " + p.Suffix
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction)
	filled = max(0, min(filled, barWidth))

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if suffix != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
	}
	return result
}

// CountSuffix formats a done/total suffix.
func CountSuffix(done, total int) string {
	return fmt.Sprintf("%d/%d", done, total)
}
