package components

import (
	"strings"

	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports about the rate table.
type Status struct {
	Spinner    string // shown while a refresh is running
	Refreshing bool
	Offline    bool
	Rates      string // e.g. "168 rates · USD"
	Age        string // e.g. "2m ago"
	Err        string
}

// RenderStatusBar renders the bottom bar: key hints left, rate state right.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	left := muted.Render(" [?]help  [r]efresh  [q]uit")

	var right string
	switch {
	case st.Refreshing:
		right = accent.Render(st.Spinner) + muted.Render(" fetching rates ")
	case st.Err != "":
		right = warn.Render("rates: "+st.Err) + muted.Render(" ")
	}
	if st.Offline {
		right += muted.Render("offline ")
	}
	if st.Rates != "" {
		right += muted.Render(st.Rates)
		if st.Age != "" {
			right += muted.Render(" · " + st.Age)
		}
		right += muted.Render(" ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Drop the right side rather than wrapping.
		return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(left)
	}
	return left + muted.Render(strings.Repeat(" ", gap)) + right
}
