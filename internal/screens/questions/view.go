package questions

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/ui/components"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

func (s *QuestionsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading questions...")
	}
	if s.editor.Len() == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  " + emptyMessage)
	}

	cardWidth := components.ContentWidth(width)
	center := func(block string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Width(cardWidth).Render(
		theme.Subtitle.Render(fmt.Sprintf("%s  │  %s  │  %d questions",
			s.section.Name, s.section.QuestionKind.DisplayName(), s.editor.Len())))))
	b.WriteString("\n")

	if q, ok := s.editor.Current(); ok {
		b.WriteString(center(components.Card(s.editView(q), cardWidth, true)))
		b.WriteString("\n")
	} else {
		qs := s.editor.Questions()
		start, end := components.Window(len(qs), s.selected, (height-4)/8)
		for i := start; i < end; i++ {
			b.WriteString(center(components.Card(questionView(i, qs[i]), cardWidth, i == s.selected)))
			b.WriteString("\n")
		}
	}

	if status := s.statusLine(); status != "" {
		b.WriteString(center(status))
		b.WriteString("\n")
	}
	if s.enteringPath {
		target := "question"
		if i := s.optionField(); i >= 0 {
			target = "option " + components.OptionLabel(i)
		}
		b.WriteString(center(components.Card(
			theme.Hint.Render("Image for "+target)+"\n"+s.pathInput.View(), cardWidth, true)))
		b.WriteString("\n")
	}

	return b.String()
}

func questionView(i int, q exam.Question) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Q%d.", i+1)) + " " + theme.Body.Render(q.Text))
	b.WriteString("\n")
	if q.ImageURL != "" {
		b.WriteString(theme.Hint.Render("[image: "+q.ImageURL+"]") + "\n")
	}

	switch {
	case q.Kind.HasOptions() && q.Options != nil:
		b.WriteString(components.OptionList{Kind: q.Kind, Options: q.Options, Cursor: -1}.View())
	case q.Kind.HasOptions():
		b.WriteString(theme.Hint.Render("Options unavailable") + "\n")
	case q.Kind.HasNumericalAnswer() && q.NumericalAnswer != nil:
		b.WriteString(theme.Correct.Render("Answer: " + components.FormatNumber(*q.NumericalAnswer)))
		b.WriteString("\n")
	case q.Kind.HasNumericalAnswer():
		b.WriteString(theme.Hint.Render("No answer set") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *QuestionsScreen) editView(q exam.Question) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Editing question") + "  " + theme.Tag.Render(string(q.Kind)))
	b.WriteString("\n\n")
	b.WriteString(s.textInput.View() + "\n")
	if q.ImageURL != "" {
		b.WriteString(theme.Hint.Render("  [image: "+q.ImageURL+"]") + "\n")
	}

	switch {
	case q.Kind.HasOptions():
		for i, in := range s.optionInputs {
			line := in.View()
			if i < len(q.Options) && q.Options[i].IsCorrect {
				line += " " + theme.Correct.Render("✓")
			}
			b.WriteString(line + "\n")
			if i < len(q.Options) && q.Options[i].ImageURL != "" {
				b.WriteString(theme.Hint.Render("  [image: "+q.Options[i].ImageURL+"]") + "\n")
			}
		}
	case q.Kind.HasNumericalAnswer():
		b.WriteString(s.numInput.View() + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *QuestionsScreen) statusLine() string {
	switch {
	case s.actionErr != "":
		return theme.ErrorText.Render(s.actionErr)
	case s.busy:
		return theme.Busy.Render("Working...")
	case s.notice != "":
		return lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice)
	}
	return ""
}
