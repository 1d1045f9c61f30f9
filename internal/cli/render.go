package cli

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors for plain command output, taken from the flexoki-dark palette the
// TUI defaults to.
var (
	colorFrame = lipgloss.Color("#575653")
	colorLabel = lipgloss.Color("#6F6E69")
	colorValue = lipgloss.Color("#FFFCF0")
	colorHead  = lipgloss.Color("#3AA99F")
	colorTitle = lipgloss.Color("#282726")
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorValue).Align(lipgloss.Center)
	headStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorHead)
	cellStyle   = lipgloss.NewStyle().Foreground(colorValue)
	noteStyle   = lipgloss.NewStyle().Foreground(colorLabel)
	frameStyle  = lipgloss.NewStyle().Foreground(colorFrame)
)

// Table is a boxed listing of fields or exchange rates. Columns named in
// Right hold numbers and are right-aligned; the rest are labels, codes or
// field IDs.
type Table struct {
	Headers []string
	Rows    [][]string
	Right   []int
}

// RenderTitle renders the banner printed above a listing.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorTitle).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(bannerStyle.Render(title))
}

// widths sizes every column to its widest cell. Currency symbols are
// multi-byte, so cells are measured in terminal cells.
func (t Table) widths() []int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	w := make([]int, n)
	for i, h := range t.Headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			w[i] = max(w[i], lipgloss.Width(cell))
		}
	}
	return w
}

// rule draws a horizontal frame line such as ╭───┬───╮.
func rule(w []int, left, mid, right string) string {
	parts := make([]string, len(w))
	for i, n := range w {
		parts[i] = strings.Repeat("─", n+2)
	}
	return frameStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
}

func pad(s string, n int, right bool) string {
	gap := strings.Repeat(" ", max(0, n-lipgloss.Width(s)))
	if right {
		return " " + gap + s + " "
	}
	return " " + s + gap + " "
}

func (t Table) line(cells []string, w []int, style lipgloss.Style) string {
	bar := frameStyle.Render("│")
	var b strings.Builder
	b.WriteString(bar)
	for i, n := range w {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(style.Render(pad(cell, n, slices.Contains(t.Right, i))))
		b.WriteString(bar)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders t in a rounded frame with the header row set off by
// a rule. An empty table renders nothing.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	w := t.widths()

	var b strings.Builder
	b.WriteString(rule(w, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(t.line(t.Headers, w, headStyle))
		b.WriteString(rule(w, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		b.WriteString(t.line(row, w, cellStyle))
	}
	b.WriteString(rule(w, "╰", "┴", "╯"))
	return b.String()
}

// RenderSparkline draws values as unicode blocks scaled between their
// minimum and maximum, so slow growth is still visible.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 && !math.IsNaN(v) {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderMuted renders the footnote under a listing.
func RenderMuted(s string) string {
	return noteStyle.Render(s)
}
