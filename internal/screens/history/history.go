package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/store"
	"github.com/qpaper/qpaper/internal/ui/layout"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Requests []store.RequestEvent
	Err      error
}

// HistoryScreen lists recent calls to the exam API.
type HistoryScreen struct {
	eventRepo  store.EventRepo
	requests   []store.RequestEvent
	selected   int
	expanded   map[int]bool
	failedOnly bool
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.eventRepo
	opts := store.QueryOpts{Limit: pageSize, Failed: s.failedOnly}
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{Err: fmt.Errorf("request log is not available")}
		}
		reqs, err := repo.QueryRequests(context.Background(), opts)
		return historyLoadedMsg{Requests: reqs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Activity"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	filter := "Failed only"
	if s.failedOnly {
		filter = "Show all"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "f", Description: filter},
		{Key: "r", Description: "Refresh"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.requests = msg.Requests
			s.expanded = make(map[int]bool)
			if s.selected >= len(s.requests) {
				s.selected = max(len(s.requests)-1, 0)
			}
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.requests)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "f":
			s.failedOnly = !s.failedOnly
			s.selected = 0
			return s, s.load()
		case "r":
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading activity...")
	}
	if len(s.requests) == 0 {
		msg := "\n\n  No requests recorded yet."
		if s.failedOnly {
			msg = "\n\n  No failed requests."
		}
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render(msg)
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, req := range s.requests {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		mark := "✓"
		if !req.Success {
			mark = "✗"
		}
		status := "---"
		if req.StatusCode > 0 {
			status = fmt.Sprintf("%d", req.StatusCode)
		}

		line := fmt.Sprintf("%s%s  %-22s %s  %6dms  %s",
			prefix, req.Timestamp.Local().Format("Jan 02 15:04:05"), req.Op, status, req.LatencyMs, mark)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == s.selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case !req.Success:
			style = style.Foreground(theme.Error)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, detail := range details(req) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+detail)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func details(req store.RequestEvent) []string {
	lines := []string{fmt.Sprintf("%s %s", req.Method, req.Path)}
	if req.RequestID != "" {
		lines = append(lines, "request id: "+req.RequestID)
	}
	if req.ErrorMessage != "" {
		lines = append(lines, "error: "+req.ErrorMessage)
	}
	return lines
}
