package draft

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/qpaper/qpaper/internal/exam"
)

var (
	// ErrIndexOutOfRange is returned when a section index does not exist.
	ErrIndexOutOfRange = errors.New("section index out of range")

	// ErrLastSection is returned when removing the only remaining section.
	ErrLastSection = errors.New("an exam needs at least one section")
)

// Field names a section field that can be set from form input.
type Field int

const (
	FieldName Field = iota
	FieldTotalQuestions
	FieldQuestionsToAttempt
	FieldMarksPerQuestion
	FieldNegativeMarkingAllowed
	FieldNegativeMarks
	FieldQuestionKind
	FieldTopics
)

// String returns the wire name of the field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldTotalQuestions:
		return "total_questions"
	case FieldQuestionsToAttempt:
		return "questions_to_attempt"
	case FieldMarksPerQuestion:
		return "marks_per_question"
	case FieldNegativeMarkingAllowed:
		return "negative_marking_allowed"
	case FieldNegativeMarks:
		return "negative_marks"
	case FieldQuestionKind:
		return "question_type"
	case FieldTopics:
		return "topics"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Creator submits a new exam.
type Creator interface {
	CreateExam(ctx context.Context, in exam.ExamCreate) (*exam.Exam, error)
}

// Draft is an exam being composed. It tolerates invalid values while the
// user types; Validate reports them at submit time.
type Draft struct {
	name     string
	duration int
	sections []exam.SectionCreate
}

// DefaultSection returns the section appended by AddSection.
func DefaultSection() exam.SectionCreate {
	return exam.SectionCreate{
		TotalQuestions:         0,
		QuestionsToAttempt:     0,
		MarksPerQuestion:       0,
		NegativeMarkingAllowed: false,
		NegativeMarks:          0,
		QuestionKind:           exam.KindSingleSelect,
	}
}

// New creates a draft with one default section.
func New() *Draft {
	return &Draft{sections: []exam.SectionCreate{DefaultSection()}}
}

// Name returns the exam name.
func (d *Draft) Name() string { return d.name }

// Duration returns the exam duration in minutes.
func (d *Draft) Duration() int { return d.duration }

// SetName sets the exam name.
func (d *Draft) SetName(name string) { d.name = name }

// SetDuration sets the exam duration in minutes.
func (d *Draft) SetDuration(minutes int) { d.duration = minutes }

// SetDurationText sets the duration from form input; anything that is not an
// integer becomes 0 and fails validation.
func (d *Draft) SetDurationText(s string) {
	d.duration = atoiOrZero(s)
}

// Len returns the number of sections.
func (d *Draft) Len() int { return len(d.sections) }

// Section returns a copy of the section at i.
func (d *Draft) Section(i int) (exam.SectionCreate, error) {
	if i < 0 || i >= len(d.sections) {
		return exam.SectionCreate{}, ErrIndexOutOfRange
	}
	return d.sections[i], nil
}

// Sections returns a copy of the section sequence.
func (d *Draft) Sections() []exam.SectionCreate {
	out := make([]exam.SectionCreate, len(d.sections))
	copy(out, d.sections)
	return out
}

// AddSection appends a default section and returns its index.
func (d *Draft) AddSection() int {
	d.sections = append(d.sections, DefaultSection())
	return len(d.sections) - 1
}

// RemoveSection removes the section at i, keeping the order of the rest.
func (d *Draft) RemoveSection(i int) error {
	if i < 0 || i >= len(d.sections) {
		return ErrIndexOutOfRange
	}
	if len(d.sections) == 1 {
		return ErrLastSection
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	return nil
}

// SetField sets one field of section i from form input. Numeric fields that
// do not parse become 0. Disabling negative marking zeroes the negative marks
// in the same update.
func (d *Draft) SetField(i int, f Field, value string) error {
	if i < 0 || i >= len(d.sections) {
		return ErrIndexOutOfRange
	}
	s := d.sections[i]

	switch f {
	case FieldName:
		s.Name = value
	case FieldTopics:
		s.Topics = value
	case FieldTotalQuestions:
		s.TotalQuestions = atoiOrZero(value)
	case FieldQuestionsToAttempt:
		s.QuestionsToAttempt = atoiOrZero(value)
	case FieldMarksPerQuestion:
		s.MarksPerQuestion = parseFloatOrZero(value)
	case FieldNegativeMarks:
		s.NegativeMarks = parseFloatOrZero(value)
	case FieldNegativeMarkingAllowed:
		v, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("set %s: %w", f, err)
		}
		s = withNegativeMarking(s, v)
	case FieldQuestionKind:
		k, err := exam.ParseQuestionKind(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("set %s: %w", f, err)
		}
		s.QuestionKind = k
	default:
		return fmt.Errorf("unknown section field %s", f)
	}

	d.sections[i] = s
	return nil
}

// SetNegativeMarking enables or disables negative marking on section i.
func (d *Draft) SetNegativeMarking(i int, allowed bool) error {
	if i < 0 || i >= len(d.sections) {
		return ErrIndexOutOfRange
	}
	d.sections[i] = withNegativeMarking(d.sections[i], allowed)
	return nil
}

// SetQuestionKind sets the question kind of section i.
func (d *Draft) SetQuestionKind(i int, k exam.QuestionKind) error {
	return d.SetField(i, FieldQuestionKind, string(k))
}

func withNegativeMarking(s exam.SectionCreate, allowed bool) exam.SectionCreate {
	s.NegativeMarkingAllowed = allowed
	if !allowed {
		s.NegativeMarks = 0
	}
	return s
}

// TotalMarks sums attempt count times marks per question over all sections.
func (d *Draft) TotalMarks() float64 {
	var total float64
	for _, s := range d.sections {
		total += s.Marks()
	}
	return total
}

// Payload builds the create payload from the current state without
// validating it.
func (d *Draft) Payload() exam.ExamCreate {
	return exam.ExamCreate{
		Name:        d.name,
		TimeMinutes: d.duration,
		Sections:    d.Sections(),
	}
}

// Submit validates the draft and hands it to c. The draft is never modified,
// so a failed submit can be retried as is.
func (d *Draft) Submit(ctx context.Context, c Creator) (*exam.Exam, error) {
	if verr := d.Validate(); verr != nil {
		return nil, verr
	}
	created, err := c.CreateExam(ctx, d.Payload())
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return created, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
