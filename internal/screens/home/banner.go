package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

const titleFull = ` ██████╗ ██████╗  █████╗ ██████╗ ███████╗██████╗
██╔═══██╗██╔══██╗██╔══██╗██╔══██╗██╔════╝██╔══██╗
██║   ██║██████╔╝███████║██████╔╝█████╗  ██████╔╝
██║▄▄ ██║██╔═══╝ ██╔══██║██╔═══╝ ██╔══╝  ██╔══██╗
╚██████╔╝██║     ██║  ██║██║     ███████╗██║  ██║
 ╚══▀▀═╝ ╚═╝     ╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝`

const titleCompact = "Q · P · A · P · E · R"

// steps is the three step workflow shown under the title.
var steps = []struct{ title, body string }{
	{"1. Create Exam", "Define your exam structure with sections, question types, and marking scheme."},
	{"2. Generate Questions", "Let AI generate high-quality questions for each section of your exam."},
	{"3. Customize Content", "Modify questions and add images to enhance your question paper."},
}

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	title := titleFull
	if compact || cw < 52 {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n" + theme.Subtitle.Render("Question Paper Generator"))
}

// renderSteps renders the workflow summary in a rounded box.
func renderSteps(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Bold(true).Render("How It Works"))
	for _, s := range steps {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(s.title))
		b.WriteString("\n" + theme.Hint.Render(s.body))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(b.String())
}

// renderStatsBar shows the exam count once it is known.
func renderStatsBar(exams int, loaded bool, cw int) string {
	var stats string
	switch {
	case !loaded:
		stats = theme.Subtitle.Render("connecting...")
	case exams < 0:
		stats = theme.ErrorText.Render("service unavailable")
	default:
		stats = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("%d exams", exams))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []components.MenuItem, selected int, cw int, compact bool) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	disabledBtn := normalBtn.Foreground(theme.TextDim)

	if compact {
		selectedBtn = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true)
		normalBtn = lipgloss.NewStyle().Foreground(theme.Text)
		disabledBtn = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	var buttons []string
	for i, item := range items {
		switch {
		case item.Disabled:
			buttons = append(buttons, disabledBtn.Render(item.Label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+item.Label))
		default:
			buttons = append(buttons, normalBtn.Render(item.Label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}
