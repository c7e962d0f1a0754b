package components

import (
	"github.com/qpaper/qpaper/internal/ui/theme"
)

// ContentWidth returns the width cards are rendered at for a frame width.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 4
	if w > 96 {
		w = 96
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded card; the focused card gets an accented
// border.
func Card(content string, width int, focused bool) string {
	style := theme.Card
	if focused {
		style = theme.FocusedCard
	}
	return style.Width(width).Render(content)
}
