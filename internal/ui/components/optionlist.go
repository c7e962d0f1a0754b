package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/ui/theme"
)

// OptionList renders the options of a select question. Single select
// questions use radio markers, multi select questions use checkboxes.
type OptionList struct {
	Kind    exam.QuestionKind
	Options []exam.Option

	// Cursor is the focused option, or -1 for none.
	Cursor int
}

// OptionLabel returns the letter for option i: A, B, C...
func OptionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

func (l OptionList) marker(correct bool) string {
	if l.Kind == exam.KindMultiSelect {
		if correct {
			return "[x]"
		}
		return "[ ]"
	}
	if correct {
		return "(•)"
	}
	return "( )"
}

// View renders one line per option.
func (l OptionList) View() string {
	var b strings.Builder
	for i, o := range l.Options {
		prefix := "  "
		if i == l.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %s) %s", prefix, l.marker(o.IsCorrect), OptionLabel(i), o.Text)
		if o.ImageURL != "" {
			line += "  " + theme.Hint.Render("[image: "+o.ImageURL+"]")
		}

		var style lipgloss.Style
		switch {
		case i == l.Cursor:
			style = theme.Selected
		case o.IsCorrect:
			style = theme.Correct
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
