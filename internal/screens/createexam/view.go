package createexam

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

func (s *CreateExamScreen) View(width, height int) string {
	cardWidth := components.ContentWidth(width)
	center := func(block string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}

	var b strings.Builder
	b.WriteString("\n")

	examCard := theme.Title.Render("Exam") + "\n" + s.examName.View() + "\n" + s.duration.View()
	b.WriteString(center(components.Card(examCard, cardWidth, s.focus.section < 0)))
	b.WriteString("\n")

	current := max(s.focus.section, 0)
	start, end := components.Window(len(s.sections), current, max((height-12)/12, 1))
	if start > 0 {
		b.WriteString(center(theme.Hint.Render("↑ more sections")) + "\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(center(components.Card(s.sectionView(i), cardWidth, s.focus.section == i)))
		b.WriteString("\n")
	}
	if end < len(s.sections) {
		b.WriteString(center(theme.Hint.Render("↓ more sections")) + "\n")
	}

	total := lipgloss.NewStyle().Width(cardWidth).Render(
		theme.Subtitle.Render("Total marks: ") + theme.Marks.Render(components.FormatNumber(s.draft.TotalMarks())))
	b.WriteString(center(total))
	b.WriteString("\n")

	switch {
	case s.busy:
		b.WriteString(center(theme.Busy.Render("Creating exam...")))
	case s.errMsg != "":
		b.WriteString(center(theme.ErrorText.Render(s.errMsg)))
	}

	return b.String()
}

func (s *CreateExamScreen) sectionView(i int) string {
	sec, _ := s.draft.Section(i)
	in := &s.sections[i]

	var b strings.Builder
	b.WriteString(theme.Title.Render(sectionTitle(i)))
	b.WriteString(theme.Subtitle.Render("  " + components.FormatNumber(sec.Marks()) + " marks"))
	b.WriteString("\n")
	b.WriteString(in.name.View() + "\n")
	b.WriteString(in.topics.View() + "\n")
	b.WriteString(in.total.View() + "\n")
	b.WriteString(in.attempt.View() + "\n")
	b.WriteString(in.marks.View() + "\n")

	check := "[ ] No"
	if sec.NegativeMarkingAllowed {
		check = "[x] Yes"
	}
	b.WriteString(s.choiceRow(i, targetNegativeMarking, "Negative marking", check) + "\n")
	if sec.NegativeMarkingAllowed {
		b.WriteString(in.negative.View() + "\n")
	}
	b.WriteString(s.choiceRow(i, targetQuestionKind, "Question type", kindChoice(sec.QuestionKind)))
	return b.String()
}

// choiceRow renders a non-text field with the same label layout as inputs.
func (s *CreateExamScreen) choiceRow(i int, t target, label, value string) string {
	if s.focus == (focus{i, t}) {
		return theme.Label.Foreground(theme.Primary).Render("▸ "+label) + theme.Selected.Render(value)
	}
	return theme.Label.Render(label) + theme.Body.Render(value)
}

func kindChoice(k exam.QuestionKind) string {
	return "‹ " + k.DisplayName() + " ›"
}
