package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/qpaper/qpaper/internal/ui/theme"
)

// InputMode restricts which characters a TextInput accepts.
type InputMode int

const (
	ModeText InputMode = iota
	ModeInteger
	ModeDecimal
)

// TextInput wraps bubbles/textinput with qpaper styling and a label.
type TextInput struct {
	Model textinput.Model
	Label string
	Mode  InputMode
	err   bool
}

// NewTextInput creates a new, blurred, styled text input.
func NewTextInput(label, placeholder string, mode InputMode, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Model: ti,
		Label: label,
		Mode:  mode,
	}
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages, dropping characters the mode does not allow.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && t.Mode != ModeText {
		if txt := kmsg.Text; txt != "" && !t.accepts(txt) {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(txt string) bool {
	for _, r := range txt {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && t.Mode == ModeDecimal && !strings.Contains(t.Model.Value(), "."):
		case r == '-' && t.Model.Value() == "" && t.Model.Position() == 0:
		default:
			return false
		}
	}
	return true
}

// View renders the label and input on one line.
func (t TextInput) View() string {
	label := theme.Label.Render(t.Label)
	if t.Model.Focused() {
		label = theme.Label.Foreground(theme.Primary).Render("▸ " + t.Label)
	}
	view := label + t.Model.View()
	if t.err {
		view += " " + theme.ErrorText.Render("✗")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// SetError marks the input as holding an invalid value.
func (t *TextInput) SetError(invalid bool) {
	t.err = invalid
}
