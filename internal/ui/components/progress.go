package components

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/ui/theme"
)

// ProgressBar is a labelled horizontal bar for a fraction in [0, 1], such as
// a section's share of the exam's marks.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// fraction clamps Percent to [0, 1]; NaN counts as empty.
func (p ProgressBar) fraction() float64 {
	if math.IsNaN(p.Percent) {
		return 0
	}
	return math.Min(math.Max(p.Percent, 0), 1)
}

// View renders the label, the bar and optionally the rounded percentage.
func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(theme.Body.Render(p.Label) + "  ")
	}

	suffix := ""
	if p.ShowPercent {
		suffix = fmt.Sprintf("  %3d%%", int(math.Round(p.fraction()*100)))
	}

	barWidth := max(p.Width-lipgloss.Width(b.String())-len(suffix), 4)
	filled := int(math.Round(float64(barWidth) * p.fraction()))

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled)))
	if suffix != "" {
		b.WriteString(theme.Subtitle.Render(suffix))
	}
	return b.String()
}
