package components

import (
	"strconv"
	"time"
)

// serverTimeLayouts are the timestamp shapes the exam API emits.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatNumber renders marks and answers without trailing zeros: 4, 2.5, -0.25.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate renders a server timestamp as a calendar date. Unparseable
// values are shown as is.
func FormatDate(s string) string {
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 02, 2006")
		}
	}
	return s
}

// Window returns the [start, end) range of n items to render so that
// selected stays visible when only visible items fit.
func Window(n, selected, visible int) (int, int) {
	if visible <= 0 || n <= visible {
		return 0, n
	}
	start := selected - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > n {
		start = n - visible
	}
	return start, start + visible
}
