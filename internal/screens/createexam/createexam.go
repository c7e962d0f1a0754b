// Package createexam is the form for composing and submitting a new exam.
package createexam

import (
	"context"
	"errors"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/draft"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screen"
	"github.com/qpaper/qpaper/internal/screens/examdetail"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/layout"
)

const submitError = "Failed to create exam. Please try again."

type examCreatedMsg struct {
	Exam *exam.Exam
	Err  error
}

// target is one focusable element of the form.
type target int

const (
	targetExamName target = iota
	targetDuration
	targetSectionName
	targetTopics
	targetTotalQuestions
	targetQuestionsToAttempt
	targetMarksPerQuestion
	targetNegativeMarking
	targetNegativeMarks
	targetQuestionKind
)

// focus identifies the focused element; section is -1 for exam fields.
type focus struct {
	section int
	target  target
}

// sectionInputs holds the text inputs of one section.
type sectionInputs struct {
	name     components.TextInput
	topics   components.TextInput
	total    components.TextInput
	attempt  components.TextInput
	marks    components.TextInput
	negative components.TextInput
}

func newSectionInputs() sectionInputs {
	return sectionInputs{
		name:     components.NewTextInput("Section name", "e.g. Algebra", components.ModeText, 100),
		topics:   components.NewTextInput("Topics", "comma separated", components.ModeText, 500),
		total:    components.NewTextInput("Total questions", "10", components.ModeInteger, 4),
		attempt:  components.NewTextInput("Questions to attempt", "10", components.ModeInteger, 4),
		marks:    components.NewTextInput("Marks per question", "1", components.ModeDecimal, 8),
		negative: components.NewTextInput("Negative marks", "0.25", components.ModeDecimal, 8),
	}
}

// input returns the text input for t, or nil for non-text targets.
func (si *sectionInputs) input(t target) *components.TextInput {
	switch t {
	case targetSectionName:
		return &si.name
	case targetTopics:
		return &si.topics
	case targetTotalQuestions:
		return &si.total
	case targetQuestionsToAttempt:
		return &si.attempt
	case targetMarksPerQuestion:
		return &si.marks
	case targetNegativeMarks:
		return &si.negative
	}
	return nil
}

func (si *sectionInputs) all() []*components.TextInput {
	return []*components.TextInput{&si.name, &si.topics, &si.total, &si.attempt, &si.marks, &si.negative}
}

// CreateExamScreen composes a draft exam and submits it.
type CreateExamScreen struct {
	client api.Client
	log    *zap.Logger
	draft  *draft.Draft

	examName components.TextInput
	duration components.TextInput
	sections []sectionInputs
	focus    focus

	busy   bool
	errMsg string
}

var _ screen.Screen = (*CreateExamScreen)(nil)
var _ screen.KeyHintProvider = (*CreateExamScreen)(nil)
var _ screen.InputCapturer = (*CreateExamScreen)(nil)

// New creates an empty form with one section.
func New(client api.Client, log *zap.Logger) *CreateExamScreen {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CreateExamScreen{
		client:   client,
		log:      log,
		draft:    draft.New(),
		examName: components.NewTextInput("Exam name", "e.g. Midterm 2025", components.ModeText, 200),
		duration: components.NewTextInput("Duration (minutes)", "60", components.ModeInteger, 4),
		sections: []sectionInputs{newSectionInputs()},
		focus:    focus{section: -1, target: targetExamName},
	}
	return s
}

func (s *CreateExamScreen) Init() tea.Cmd {
	return s.examName.Focus()
}

func (s *CreateExamScreen) Title() string {
	return "Create Exam"
}

// CapturingInput is always true: the form handles Esc itself.
func (s *CreateExamScreen) CapturingInput() bool {
	return true
}

func (s *CreateExamScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+N", Description: "Add section"},
		{Key: "Ctrl+D", Description: "Remove section"},
		{Key: "Ctrl+S", Description: "Create"},
		{Key: "Esc", Description: "Discard"},
	}
}

// targets lists the focusable elements in order. Negative marks only exist
// while negative marking is enabled for the section.
func (s *CreateExamScreen) targets() []focus {
	out := []focus{{-1, targetExamName}, {-1, targetDuration}}
	for i := range s.sections {
		sec, _ := s.draft.Section(i)
		for _, t := range []target{targetSectionName, targetTopics, targetTotalQuestions,
			targetQuestionsToAttempt, targetMarksPerQuestion, targetNegativeMarking} {
			out = append(out, focus{i, t})
		}
		if sec.NegativeMarkingAllowed {
			out = append(out, focus{i, targetNegativeMarks})
		}
		out = append(out, focus{i, targetQuestionKind})
	}
	return out
}

func (s *CreateExamScreen) focusedInput() *components.TextInput {
	switch {
	case s.focus.section < 0 && s.focus.target == targetExamName:
		return &s.examName
	case s.focus.section < 0:
		return &s.duration
	case s.focus.section < len(s.sections):
		return s.sections[s.focus.section].input(s.focus.target)
	}
	return nil
}

func (s *CreateExamScreen) setFocus(f focus) tea.Cmd {
	s.examName.Blur()
	s.duration.Blur()
	for i := range s.sections {
		for _, in := range s.sections[i].all() {
			in.Blur()
		}
	}
	s.focus = f
	if in := s.focusedInput(); in != nil {
		return in.Focus()
	}
	return nil
}

func (s *CreateExamScreen) move(delta int) tea.Cmd {
	ts := s.targets()
	cur := 0
	for i, f := range ts {
		if f == s.focus {
			cur = i
			break
		}
	}
	next := (cur + delta + len(ts)) % len(ts)
	return s.setFocus(ts[next])
}

func (s *CreateExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case examCreatedMsg:
		s.busy = false
		if msg.Err != nil {
			s.log.Error("create exam", zap.Error(msg.Err))
			s.errMsg = submitError
			return s, nil
		}
		detail := examdetail.New(s.client, s.log, msg.Exam.ID)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: detail} }

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		return s.updateKeys(msg)
	}

	if in := s.focusedInput(); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CreateExamScreen) updateKeys(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "tab", "down":
		return s, s.move(1)
	case "shift+tab", "up":
		return s, s.move(-1)
	case "ctrl+n":
		i := s.draft.AddSection()
		s.sections = append(s.sections, newSectionInputs())
		s.errMsg = ""
		return s, s.setFocus(focus{i, targetSectionName})
	case "ctrl+d":
		return s, s.removeSection()
	case "ctrl+s":
		return s, s.submit()
	}

	switch s.focus.target {
	case targetNegativeMarking:
		switch msg.String() {
		case "space", "enter", "left", "right":
			sec, _ := s.draft.Section(s.focus.section)
			s.draft.SetNegativeMarking(s.focus.section, !sec.NegativeMarkingAllowed)
			if sec.NegativeMarkingAllowed {
				s.sections[s.focus.section].negative.SetValue("")
			}
		}
		return s, nil
	case targetQuestionKind:
		switch msg.String() {
		case "space", "enter", "right", "left":
			sec, _ := s.draft.Section(s.focus.section)
			s.draft.SetQuestionKind(s.focus.section, sec.QuestionKind.Next())
		}
		return s, nil
	}

	in := s.focusedInput()
	if in == nil {
		return s, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	in.SetError(false)
	s.sync()
	return s, cmd
}

// sync copies the focused input into the draft.
func (s *CreateExamScreen) sync() {
	in := s.focusedInput()
	if in == nil {
		return
	}
	if s.focus.section < 0 {
		if s.focus.target == targetExamName {
			s.draft.SetName(in.Value())
		} else {
			s.draft.SetDurationText(in.Value())
		}
		return
	}
	if f, ok := draftField(s.focus.target); ok {
		if err := s.draft.SetField(s.focus.section, f, in.Value()); err != nil {
			s.log.Warn("set section field", zap.Stringer("field", f), zap.Error(err))
		}
	}
}

func draftField(t target) (draft.Field, bool) {
	switch t {
	case targetSectionName:
		return draft.FieldName, true
	case targetTopics:
		return draft.FieldTopics, true
	case targetTotalQuestions:
		return draft.FieldTotalQuestions, true
	case targetQuestionsToAttempt:
		return draft.FieldQuestionsToAttempt, true
	case targetMarksPerQuestion:
		return draft.FieldMarksPerQuestion, true
	case targetNegativeMarks:
		return draft.FieldNegativeMarks, true
	}
	return 0, false
}

func (s *CreateExamScreen) removeSection() tea.Cmd {
	i := s.focus.section
	if i < 0 {
		i = s.draft.Len() - 1
	}
	if err := s.draft.RemoveSection(i); err != nil {
		if errors.Is(err, draft.ErrLastSection) {
			s.errMsg = "An exam needs at least one section."
		}
		return nil
	}
	s.sections = append(s.sections[:i], s.sections[i+1:]...)
	s.errMsg = ""
	next := min(i, len(s.sections)-1)
	return s.setFocus(focus{next, targetSectionName})
}

func (s *CreateExamScreen) submit() tea.Cmd {
	if verr := s.draft.Validate(); verr != nil {
		s.errMsg = verr.Error()
		return s.markInvalid(verr)
	}
	s.busy = true
	s.errMsg = ""

	d, client := s.draft, s.client
	return func() tea.Msg {
		created, err := d.Submit(context.Background(), client)
		return examCreatedMsg{Exam: created, Err: err}
	}
}

// markInvalid flags and focuses the input a validation error points at.
func (s *CreateExamScreen) markInvalid(verr *draft.ValidationError) tea.Cmd {
	f := focus{section: verr.Section - 1}
	switch verr.Rule {
	case draft.RuleExamName:
		f = focus{-1, targetExamName}
	case draft.RuleDuration:
		f = focus{-1, targetDuration}
	case draft.RuleSectionName:
		f.target = targetSectionName
	case draft.RuleTotalQuestions:
		f.target = targetTotalQuestions
	case draft.RuleQuestionsToAttempt:
		f.target = targetQuestionsToAttempt
	case draft.RuleMarksPerQuestion:
		f.target = targetMarksPerQuestion
	case draft.RuleNegativeMarks:
		f.target = targetNegativeMarks
	default:
		return nil
	}
	cmd := s.setFocus(f)
	if in := s.focusedInput(); in != nil {
		in.SetError(true)
	}
	return cmd
}

func sectionTitle(i int) string {
	return "Section " + strconv.Itoa(i+1)
}
