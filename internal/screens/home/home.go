package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/screens/createexam"
	"github.com/qpaper/qpaper/internal/screens/examlist"
	"github.com/qpaper/qpaper/internal/screens/history"
	"github.com/qpaper/qpaper/internal/store"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/layout"
)

type examCountMsg struct {
	Count int
	Err   error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	client      api.Client
	log         *zap.Logger
	menu        components.Menu
	examCount   int
	countLoaded bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen. eventRepo may be nil, which disables the
// activity view.
func New(client api.Client, eventRepo store.EventRepo, log *zap.Logger) *HomeScreen {
	if log == nil {
		log = zap.NewNop()
	}

	items := []components.MenuItem{
		{Label: "Exams", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: examlist.New(client, log)}
			}
		}},
		{Label: "Create Exam", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: createexam.New(client, log)}
			}
		}},
		{Label: "Activity", Disabled: eventRepo == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(eventRepo)}
			}
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		client: client,
		log:    log,
		menu:   components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	client := h.client
	return func() tea.Msg {
		exams, err := client.ListExams(context.Background())
		return examCountMsg{Count: len(exams), Err: err}
	}
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(examCountMsg); ok {
		h.countLoaded = true
		h.examCount = msg.Count
		if msg.Err != nil {
			h.log.Warn("count exams", zap.Error(msg.Err))
			h.examCount = -1
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header and footer.
	termHeight := height + 8
	compact := termHeight < 36 || width < 80

	cw := contentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, renderSteps(cw))
	}
	sections = append(sections,
		renderStatsBar(h.examCount, h.countLoaded, cw),
		renderMenu(h.menu.Items, h.menu.Selected, cw, compact))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
