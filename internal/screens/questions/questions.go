// Package questions lists the questions of a section and edits them one at a
// time.
package questions

import (
	"context"
	"errors"
	"io/fs"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/editor"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/layout"
)

const (
	loadError    = "Failed to load questions. Please try again."
	saveError    = "Failed to update question. Please try again."
	uploadError  = "Failed to upload image. Please try again."
	notImage     = "Please select an image file."
	badNumerical = "Please enter a valid numerical answer."
	emptyMessage = "No questions found. Generate questions for this section first."
)

// QuestionsScreen shows the questions of one section. At most one question
// is edited at a time.
type QuestionsScreen struct {
	client  api.Client
	log     *zap.Logger
	section exam.Section

	editor   *editor.Editor
	selected int
	loaded   bool
	errMsg   string

	// Edit form. field 0 is the question text; the following fields are
	// the options, or the numerical answer.
	field        int
	textInput    components.TextInput
	optionInputs []components.TextInput
	numInput     components.TextInput

	pathInput    components.TextInput
	enteringPath bool

	busy      bool
	notice    string
	actionErr string
}

var _ screen.Screen = (*QuestionsScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionsScreen)(nil)
var _ screen.InputCapturer = (*QuestionsScreen)(nil)

// New creates a QuestionsScreen for sec.
func New(client api.Client, log *zap.Logger, sec exam.Section) *QuestionsScreen {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionsScreen{
		client:    client,
		log:       log,
		section:   sec,
		editor:    editor.New(nil),
		pathInput: components.NewTextInput("Image file", "/path/to/image.png", components.ModeText, 0),
	}
}

func (s *QuestionsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *QuestionsScreen) load() tea.Cmd {
	client, log, id := s.client, s.log, s.section.ID
	return func() tea.Msg {
		raws, err := client.ListSectionQuestions(context.Background(), id)
		if err != nil {
			return questionsLoadedMsg{Err: err}
		}
		return questionsLoadedMsg{Questions: exam.ParseQuestions(log, raws)}
	}
}

func (s *QuestionsScreen) Title() string {
	return s.section.Name + " · Questions"
}

func (s *QuestionsScreen) CapturingInput() bool {
	return s.editor.Editing() || s.enteringPath
}

func (s *QuestionsScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.enteringPath:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Upload"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.editor.Editing():
		hints := []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Ctrl+O", Description: "Image"},
		}
		if q, _ := s.editor.Current(); q.Kind.HasOptions() {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+T", Description: "Toggle correct"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
	default:
		return []layout.KeyHint{
			{Key: "e", Description: "Edit"},
			{Key: "r", Description: "Refresh"},
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *QuestionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.log.Error("list section questions", zap.Int64("section_id", s.section.ID), zap.Error(msg.Err))
			s.errMsg = loadError
			s.editor = editor.New(nil)
			return s, nil
		}
		s.errMsg = ""
		s.editor = editor.New(msg.Questions)
		if s.selected >= s.editor.Len() {
			s.selected = max(s.editor.Len()-1, 0)
		}
		return s, nil

	case questionSavedMsg:
		s.busy = false
		if msg.Err != nil {
			s.log.Error("update question", zap.Int64("question_id", msg.ID), zap.Error(msg.Err))
			s.actionErr = saveError
			return s, nil
		}
		if s.editor.Commit(msg.ID) {
			s.notice = "Question updated."
		}
		return s, nil

	case imageUploadedMsg:
		s.busy = false
		if msg.Err != nil {
			s.log.Error("upload image",
				zap.Int64("question_id", msg.Result.QuestionID),
				zap.Int("option", msg.Result.Option),
				zap.Error(msg.Err))
			s.actionErr = uploadMessage(msg.Err)
			return s, nil
		}
		if s.editor.ApplyImage(msg.Result) {
			s.notice = "Image uploaded. Save to keep it."
		}
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch {
		case s.enteringPath:
			return s.updatePath(msg)
		case s.editor.Editing():
			return s.updateEdit(msg)
		default:
			return s.updateList(msg)
		}
	}

	return s.forward(msg)
}

// forward passes non-key messages such as cursor blinks to the focused input.
func (s *QuestionsScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case s.enteringPath:
		s.pathInput, cmd = s.pathInput.Update(msg)
	case s.editor.Editing():
		cmd = s.updateFocused(msg)
	}
	return s, cmd
}

func (s *QuestionsScreen) updateList(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < s.editor.Len()-1 {
			s.selected++
		}
	case "r":
		return s, s.load()
	case "e", "enter":
		return s, s.beginEdit()
	}
	return s, nil
}

func (s *QuestionsScreen) beginEdit() tea.Cmd {
	qs := s.editor.Questions()
	if s.selected >= len(qs) {
		return nil
	}
	if err := s.editor.Begin(qs[s.selected].ID); err != nil {
		s.log.Warn("begin edit", zap.Error(err))
		return nil
	}
	s.notice, s.actionErr = "", ""

	q, _ := s.editor.Current()
	s.textInput = components.NewTextInput("Question", "Question text", components.ModeText, 0)
	s.textInput.SetValue(q.Text)

	s.optionInputs = nil
	if q.Kind.HasOptions() {
		for i, o := range q.Options {
			in := components.NewTextInput(optionLabel(q.Kind, i, o.IsCorrect), "Option text", components.ModeText, 0)
			in.SetValue(o.Text)
			s.optionInputs = append(s.optionInputs, in)
		}
	}

	s.numInput = components.NewTextInput("Numerical answer", "0", components.ModeDecimal, 32)
	if q.NumericalAnswer != nil {
		s.numInput.SetValue(components.FormatNumber(*q.NumericalAnswer))
	}

	return s.focusField(0)
}

func (s *QuestionsScreen) fieldCount() int {
	q, ok := s.editor.Current()
	if !ok {
		return 0
	}
	if q.Kind.HasOptions() {
		return 1 + len(s.optionInputs)
	}
	if q.Kind.HasNumericalAnswer() {
		return 2
	}
	return 1
}

// optionField returns the option index of the focused field, or -1.
func (s *QuestionsScreen) optionField() int {
	if s.field > 0 && s.field <= len(s.optionInputs) {
		return s.field - 1
	}
	return -1
}

func (s *QuestionsScreen) numericalFocused() bool {
	q, _ := s.editor.Current()
	return q.Kind.HasNumericalAnswer() && s.field == 1
}

func (s *QuestionsScreen) focusField(f int) tea.Cmd {
	s.field = f
	s.textInput.Blur()
	s.numInput.Blur()
	for i := range s.optionInputs {
		s.optionInputs[i].Blur()
	}

	switch {
	case f == 0:
		return s.textInput.Focus()
	case s.numericalFocused():
		return s.numInput.Focus()
	default:
		if i := s.optionField(); i >= 0 {
			return s.optionInputs[i].Focus()
		}
	}
	return nil
}

func (s *QuestionsScreen) updateEdit(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.editor.Cancel()
		s.actionErr = ""
		return s, nil
	case "tab", "down":
		return s, s.focusField((s.field + 1) % s.fieldCount())
	case "shift+tab", "up":
		n := s.fieldCount()
		return s, s.focusField((s.field + n - 1) % n)
	case "ctrl+t":
		if i := s.optionField(); i >= 0 {
			s.toggle(i)
		}
		return s, nil
	case "ctrl+o":
		s.enteringPath = true
		s.pathInput.SetValue("")
		s.pathInput.SetError(false)
		return s, s.pathInput.Focus()
	case "ctrl+s":
		return s, s.save()
	}

	return s, s.updateFocused(msg)
}

// updateFocused feeds msg to the focused input and copies its value into the
// working copy.
func (s *QuestionsScreen) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case s.field == 0:
		s.textInput, cmd = s.textInput.Update(msg)
		s.editor.SetText(s.textInput.Value())
	case s.numericalFocused():
		s.numInput, cmd = s.numInput.Update(msg)
		s.syncNumerical()
	default:
		if i := s.optionField(); i >= 0 {
			s.optionInputs[i], cmd = s.optionInputs[i].Update(msg)
			s.editor.SetOptionText(i, s.optionInputs[i].Value())
		}
	}
	return cmd
}

// syncNumerical stores the numerical input when it parses and flags it
// otherwise.
func (s *QuestionsScreen) syncNumerical() bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.numInput.Value()), 64)
	if err != nil {
		s.numInput.SetError(true)
		return false
	}
	s.numInput.SetError(false)
	s.editor.SetNumericalAnswer(v)
	return true
}

func (s *QuestionsScreen) toggle(i int) {
	if err := s.editor.ToggleOption(i); err != nil {
		s.log.Warn("toggle option", zap.Int("option", i), zap.Error(err))
		return
	}
	q, _ := s.editor.Current()
	for j := range s.optionInputs {
		if j < len(q.Options) {
			s.optionInputs[j].Label = optionLabel(q.Kind, j, q.Options[j].IsCorrect)
		}
	}
}

func (s *QuestionsScreen) save() tea.Cmd {
	q, _ := s.editor.Current()
	if q.Kind.HasNumericalAnswer() && !s.syncNumerical() {
		s.actionErr = badNumerical
		return nil
	}

	call, err := s.editor.SaveCall(s.client)
	if err != nil {
		s.log.Warn("prepare update", zap.Error(err))
		return nil
	}
	s.busy = true
	s.notice, s.actionErr = "", ""

	return func() tea.Msg {
		id, err := call(context.Background())
		return questionSavedMsg{ID: id, Err: err}
	}
}

func (s *QuestionsScreen) updatePath(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.enteringPath = false
		s.pathInput.Blur()
		return s, nil
	case "enter":
		path := strings.TrimSpace(s.pathInput.Value())
		if path == "" {
			s.pathInput.SetError(true)
			return s, nil
		}
		s.enteringPath = false
		s.pathInput.Blur()
		call, err := s.editor.ImageCall(s.client, s.optionField())
		if err != nil {
			s.log.Warn("prepare image upload", zap.Error(err))
			return s, nil
		}
		s.busy = true
		s.notice, s.actionErr = "", ""
		return s, func() tea.Msg {
			f, err := media.Open(path)
			if err != nil {
				return imageUploadedMsg{Err: err}
			}
			res, err := call(context.Background(), f)
			return imageUploadedMsg{Result: res, Err: err}
		}
	}

	var cmd tea.Cmd
	s.pathInput, cmd = s.pathInput.Update(msg)
	return s, cmd
}

func uploadMessage(err error) string {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, media.ErrUnsupported):
		return notImage
	case errors.As(err, &pathErr):
		return "Could not read that file."
	default:
		return uploadError
	}
}

func optionLabel(kind exam.QuestionKind, i int, correct bool) string {
	marker := "( )"
	switch {
	case kind == exam.KindMultiSelect && correct:
		marker = "[x]"
	case kind == exam.KindMultiSelect:
		marker = "[ ]"
	case correct:
		marker = "(•)"
	}
	return marker + " Option " + components.OptionLabel(i)
}
