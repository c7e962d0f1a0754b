package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette for dark terminals. Primary marks focus, Secondary marks
// informational chips, Accent marks work in progress.
var (
	Primary   = lipgloss.Color("#60A5FA")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#8B98AD")
	BgDark    = lipgloss.Color("#0B1220")
	BgCard    = lipgloss.Color("#172033")
	Border    = lipgloss.Color("#2C3A52")
)

// Text styles.
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Label is the fixed-width left column of key/value rows.
	Label = lipgloss.NewStyle().Foreground(TextDim).Width(22)

	// Marks highlights score figures such as totals and per-question marks.
	Marks = lipgloss.NewStyle().Foreground(Accent).Bold(true)
)

var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	FocusedCard = Card.BorderForeground(Primary)
)

// Selection and status.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	ErrorText  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Busy       = lipgloss.NewStyle().Foreground(Accent).Italic(true)
)

var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	Tag = lipgloss.NewStyle().
		Foreground(BgDark).
		Background(Secondary).
		Padding(0, 1)
)
