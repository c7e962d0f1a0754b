// Package examlist shows every exam known to the service.
package examlist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/screens/createexam"
	"github.com/qpaper/qpaper/internal/screens/examdetail"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/layout"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

const loadError = "Failed to load exams"

type examsLoadedMsg struct {
	Exams []exam.Exam
	Err   error
}

// ExamListScreen lists all exams.
type ExamListScreen struct {
	client   api.Client
	log      *zap.Logger
	exams    []exam.Exam
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ExamListScreen)(nil)
var _ screen.KeyHintProvider = (*ExamListScreen)(nil)

// New creates a new ExamListScreen.
func New(client api.Client, log *zap.Logger) *ExamListScreen {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExamListScreen{client: client, log: log}
}

func (s *ExamListScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ExamListScreen) load() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		exams, err := client.ListExams(context.Background())
		return examsLoadedMsg{Exams: exams, Err: err}
	}
}

func (s *ExamListScreen) Title() string {
	return "All Exams"
}

func (s *ExamListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "n", Description: "New exam"},
		{Key: "r", Description: "Refresh"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExamListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case examsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.log.Error("list exams", zap.Error(msg.Err))
			s.errMsg = loadError
			s.exams = nil
			return s, nil
		}
		s.errMsg = ""
		s.exams = msg.Exams
		if s.selected >= len(s.exams) {
			s.selected = max(len(s.exams)-1, 0)
		}
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
			if s.selected < len(s.exams)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.exams) {
				detail := examdetail.New(s.client, s.log, s.exams[s.selected].ID)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
			}
			return s, nil
		case "n":
			form := createexam.New(s.client, s.log)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: form} }
		case "r":
			s.loaded = false
			s.errMsg = ""
			return s, s.load()
		}
	}
	return s, nil
}

func (s *ExamListScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n%s\n\n", s.errMsg)) +
			lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
				Render(theme.Hint.Render("Press r to try again"))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading exams...")
	}
	if len(s.exams) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No exams yet. Press n to create one.")
	}

	cardWidth := components.ContentWidth(width)
	start, end := components.Window(len(s.exams), s.selected, (height-1)/4)

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < end; i++ {
		card := components.Card(examSummary(s.exams[i]), cardWidth, i == s.selected)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		b.WriteString("\n")
	}
	return b.String()
}

func examSummary(e exam.Exam) string {
	title := theme.Title.Render(e.Name)
	meta := theme.Subtitle.Render(fmt.Sprintf("Total marks: %s  │  Duration: %d minutes  │  Sections: %d",
		components.FormatNumber(e.TotalMarks), e.TimeMinutes, len(e.Sections)))
	return title + "\n" + meta
}
