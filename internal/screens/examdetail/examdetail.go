// Package examdetail shows one exam with its sections and drives question
// generation and syllabus uploads.
package examdetail

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/screens/questions"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/layout"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

const (
	loadError     = "Failed to load exam details."
	generateError = "Failed to generate questions. Please try again."
	uploadError   = "Failed to upload syllabus. Please try again."
	notPDFError   = "Please select a PDF file."
)

type examLoadedMsg struct {
	Exam *exam.Exam
	Err  error
}

type generatedMsg struct {
	SectionID int64
	Result    *exam.GenerateResult
	Err       error
}

type syllabusUploadedMsg struct {
	SectionID int64
	Upload    *exam.SyllabusUpload
	Err       error
}

// ExamDetailScreen shows an exam summary and its sections.
type ExamDetailScreen struct {
	client api.Client
	log    *zap.Logger
	examID int64

	exam     *exam.Exam
	selected int
	loaded   bool
	errMsg   string

	// generating is the id of the section whose questions are being
	// generated, or 0. Only one generation runs at a time.
	generating int64
	uploading  bool
	notice     string
	actionErr  string

	pathInput    components.TextInput
	enteringPath bool
}

var _ screen.Screen = (*ExamDetailScreen)(nil)
var _ screen.KeyHintProvider = (*ExamDetailScreen)(nil)
var _ screen.InputCapturer = (*ExamDetailScreen)(nil)

// New creates a detail screen for the exam with id.
func New(client api.Client, log *zap.Logger, id int64) *ExamDetailScreen {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExamDetailScreen{
		client:    client,
		log:       log,
		examID:    id,
		pathInput: components.NewTextInput("Syllabus PDF", "/path/to/syllabus.pdf", components.ModeText, 0),
	}
}

func (s *ExamDetailScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ExamDetailScreen) load() tea.Cmd {
	client, id := s.client, s.examID
	return func() tea.Msg {
		e, err := client.GetExam(context.Background(), id)
		return examLoadedMsg{Exam: e, Err: err}
	}
}

func (s *ExamDetailScreen) Title() string {
	if s.exam != nil {
		return s.exam.Name
	}
	return "Exam Details"
}

func (s *ExamDetailScreen) CapturingInput() bool {
	return s.enteringPath
}

func (s *ExamDetailScreen) KeyHints() []layout.KeyHint {
	if s.enteringPath {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Upload"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Questions"},
		{Key: "g", Description: "Generate"},
		{Key: "u", Description: "Upload syllabus"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

// selectedSection returns the highlighted section.
func (s *ExamDetailScreen) selectedSection() (exam.Section, bool) {
	if s.exam == nil || s.selected >= len(s.exam.Sections) {
		return exam.Section{}, false
	}
	return s.exam.Sections[s.selected], true
}

func (s *ExamDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case examLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.log.Error("get exam", zap.Int64("exam_id", s.examID), zap.Error(msg.Err))
			s.errMsg = loadError
			s.exam = nil
			return s, nil
		}
		s.errMsg = ""
		s.exam = msg.Exam
		if s.selected >= len(s.exam.Sections) {
			s.selected = max(len(s.exam.Sections)-1, 0)
		}
		return s, nil

	case generatedMsg:
		s.generating = 0
		if msg.Err != nil {
			s.log.Error("generate questions", zap.Int64("section_id", msg.SectionID), zap.Error(msg.Err))
			s.actionErr = generateError
			return s, nil
		}
		s.notice = "Questions generated successfully."
		if msg.Result != nil && msg.Result.Message != "" {
			s.notice = msg.Result.Message
		}
		return s, s.load()

	case syllabusUploadedMsg:
		s.uploading = false
		if msg.Err != nil {
			s.log.Error("upload syllabus", zap.Int64("section_id", msg.SectionID), zap.Error(msg.Err))
			s.actionErr = uploadMessage(msg.Err)
			return s, nil
		}
		s.notice = "Syllabus uploaded."
		return s, s.load()

	case tea.KeyMsg:
		if s.enteringPath {
			return s.updatePath(msg)
		}
		return s.updateKeys(msg)
	}

	if s.enteringPath {
		var cmd tea.Cmd
		s.pathInput, cmd = s.pathInput.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExamDetailScreen) updateKeys(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.exam != nil && s.selected < len(s.exam.Sections)-1 {
			s.selected++
		}
	case "r":
		return s, s.load()
	case "enter":
		sec, ok := s.selectedSection()
		if !ok {
			return s, nil
		}
		qs := questions.New(s.client, s.log, sec)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: qs} }
	case "g":
		return s, s.generate()
	case "u":
		if _, ok := s.selectedSection(); !ok || s.uploading {
			return s, nil
		}
		s.enteringPath = true
		s.pathInput.SetValue("")
		s.pathInput.SetError(false)
		return s, s.pathInput.Focus()
	}
	return s, nil
}

func (s *ExamDetailScreen) generate() tea.Cmd {
	sec, ok := s.selectedSection()
	if !ok || s.generating != 0 {
		return nil
	}
	s.generating = sec.ID
	s.notice, s.actionErr = "", ""

	client := s.client
	return func() tea.Msg {
		res, err := client.GenerateQuestions(context.Background(), sec.ID)
		return generatedMsg{SectionID: sec.ID, Result: res, Err: err}
	}
}

func (s *ExamDetailScreen) updatePath(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.enteringPath = false
		s.pathInput.Blur()
		return s, nil
	case "enter":
		sec, ok := s.selectedSection()
		if !ok {
			return s, nil
		}
		path := strings.TrimSpace(s.pathInput.Value())
		if path == "" {
			s.pathInput.SetError(true)
			return s, nil
		}
		s.enteringPath = false
		s.pathInput.Blur()
		s.uploading = true
		s.notice, s.actionErr = "", ""
		return s, uploadSyllabus(s.client, sec.ID, path)
	}

	var cmd tea.Cmd
	s.pathInput, cmd = s.pathInput.Update(msg)
	return s, cmd
}

func uploadSyllabus(client api.Client, sectionID int64, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := media.Open(path)
		if err != nil {
			return syllabusUploadedMsg{SectionID: sectionID, Err: err}
		}
		if err := media.RequirePDF(f); err != nil {
			return syllabusUploadedMsg{SectionID: sectionID, Err: err}
		}
		up, err := client.UploadSyllabus(context.Background(), sectionID, f)
		return syllabusUploadedMsg{SectionID: sectionID, Upload: up, Err: err}
	}
}

func uploadMessage(err error) string {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, media.ErrUnsupported):
		return notPDFError
	case errors.As(err, &pathErr):
		return "Could not read that file."
	default:
		return uploadError
	}
}

func (s *ExamDetailScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n%s", s.errMsg))
	}
	if !s.loaded || s.exam == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading exam...")
	}

	cardWidth := components.ContentWidth(width)
	e := s.exam

	var b strings.Builder
	b.WriteString("\n")
	summary := theme.Title.Render(e.Name) + "\n" + theme.Subtitle.Render(fmt.Sprintf(
		"Duration: %d minutes  │  Total Marks: %s  │  Created On: %s  │  Sections: %d",
		e.TimeMinutes, components.FormatNumber(e.TotalMarks), components.FormatDate(e.CreatedAt), len(e.Sections)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(summary, cardWidth, false)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cardWidth).Render(theme.Subtitle.Bold(true).Render("Exam Sections"))))
	b.WriteString("\n")

	var totalSectionMarks float64
	for _, sec := range e.Sections {
		totalSectionMarks += sec.Marks()
	}

	for i, sec := range e.Sections {
		var block string
		if i == s.selected {
			block = components.Card(s.sectionDetail(sec, totalSectionMarks, cardWidth-6), cardWidth, true)
		} else {
			block = lipgloss.NewStyle().Width(cardWidth).Foreground(theme.Text).
				Render(fmt.Sprintf("    %s  %s", sec.Name, theme.Subtitle.Render(sec.QuestionKind.DisplayName())))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
		b.WriteString("\n")
	}

	if status := s.statusLine(); status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, status))
		b.WriteString("\n")
	}
	if s.enteringPath {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card(s.pathInput.View(), cardWidth, true)))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *ExamDetailScreen) sectionDetail(sec exam.Section, totalMarks float64, width int) string {
	row := func(label, value string) string {
		return theme.Label.Render(label) + theme.Body.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(sec.Name) + "\n")
	b.WriteString(row("Question Type:", sec.QuestionKind.DisplayName()))
	b.WriteString(row("Questions:", fmt.Sprintf("%d of %d to attempt", sec.QuestionsToAttempt, sec.TotalQuestions)))
	b.WriteString(row("Marks Per Question:", components.FormatNumber(sec.MarksPerQuestion)))
	negative := "No"
	if sec.NegativeMarkingAllowed {
		negative = "Yes (-" + components.FormatNumber(sec.NegativeMarks) + ")"
	}
	b.WriteString(row("Negative Marking:", negative))
	b.WriteString(theme.Label.Render("Total Section Marks:") + theme.Marks.Render(components.FormatNumber(sec.Marks())) + "\n")
	if sec.Topics != "" {
		b.WriteString(row("Topics:", sec.Topics))
	}
	if sec.SyllabusFileURI != "" {
		b.WriteString(row("Syllabus:", sec.SyllabusFileURI))
	}

	share := 0.0
	if totalMarks > 0 {
		share = sec.Marks() / totalMarks
	}
	b.WriteString(components.NewProgressBar("Share of marks", share, true, width).View())

	if s.generating == sec.ID {
		b.WriteString("\n" + theme.Busy.Render("Generating questions..."))
	}
	return b.String()
}

func (s *ExamDetailScreen) statusLine() string {
	switch {
	case s.actionErr != "":
		return theme.ErrorText.Render(s.actionErr)
	case s.uploading:
		return theme.Busy.Render("Uploading syllabus...")
	case s.generating != 0:
		return theme.Busy.Render("Generation in progress. This can take a while.")
	case s.notice != "":
		return lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice)
	}
	return ""
}
