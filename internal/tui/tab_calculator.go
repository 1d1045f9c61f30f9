package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/field"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/tui/components"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// projectionYears is how far the growth chart looks ahead.
const projectionYears = 10

var fieldIDs = graph.IDs()

// calcState tracks the calculator tab. While editing, the textinput's value
// is pushed into the graph on every change, so the other fields follow
// along as the user types.
type calcState struct {
	cursor  int
	editing bool
	input   textinput.Model
	err     error  // last failure writing a source value
	notice  string // one-shot hint, cleared on the next edit
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "e.g. 1200 or 100 * EUR"
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

// calcKey handles calculator keys outside of editing.
func (a App) calcKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.calc.cursor = clampCursor(a.calc.cursor+1, len(fieldIDs))
	case "k", "up":
		a.calc.cursor = clampCursor(a.calc.cursor-1, len(fieldIDs))
	case "g":
		a.calc.cursor = 0
	case "G":
		a.calc.cursor = len(fieldIDs) - 1
	case "enter", "e":
		m, cmd := a.calcStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	a.calc.notice = ""
	return a, nil, true
}

func (a App) calcStartEdit() (tea.Model, tea.Cmd) {
	id := fieldIDs[a.calc.cursor]
	if err := a.graph.Focus(id); err != nil {
		if errors.Is(err, field.ErrReadOnly) {
			a.calc.notice = "This field is calculated and cannot be edited."
		} else {
			a.calc.notice = err.Error()
		}
		return a, nil
	}
	v, err := a.graph.View(id)
	if err != nil {
		return a, nil
	}

	ti := newFieldInput()
	ti.SetValue(v.Text)
	ti.Focus()
	a.calc.input = ti
	a.calc.editing = true
	a.calc.notice = ""
	return a, ti.Cursor.BlinkCmd()
}

func (a *App) calcStopEdit() {
	a.graph.Blur(fieldIDs[a.calc.cursor])
	a.calc.input.Blur()
	a.calc.editing = false
}

func (a App) updateCalcInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		a.calcStopEdit()
		return a, nil
	case "tab", "down":
		a.calcStopEdit()
		a.calc.cursor = nextEditable(a.calc.cursor, 1)
		return a.calcStartEdit()
	case "shift+tab", "up":
		a.calcStopEdit()
		a.calc.cursor = nextEditable(a.calc.cursor, -1)
		return a.calcStartEdit()
	}

	before := a.calc.input.Value()
	var cmd tea.Cmd
	a.calc.input, cmd = a.calc.input.Update(msg)
	if text := a.calc.input.Value(); text != before {
		a.calc.err = a.graph.Edit(fieldIDs[a.calc.cursor], text)
	}
	return a, cmd
}

// nextEditable steps from i in direction dir, wrapping, skipping read-only
// fields.
func nextEditable(i, dir int) int {
	n := len(fieldIDs)
	for step := 1; step <= n; step++ {
		j := ((i+dir*step)%n + n) % n
		if graph.Editable(fieldIDs[j]) {
			return j
		}
	}
	return i
}

// displayText is what an unfocused field shows: the canonical value with
// the configured precision, amounts in the display currency.
func (a App) displayText(v graph.View) string {
	if v.Focused {
		return v.Text
	}
	x, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return v.Text
	}
	if v.Percent {
		return cli.FormatValue(x, a.cfg.Display.Precision) + " %"
	}
	return a.money(x)
}

func (a App) money(x float64) string {
	if cli.KnownCurrency(a.cfg.Display.Currency) {
		return cli.FormatMoney(x, a.cfg.Display.Currency)
	}
	return cli.FormatValue(x, a.cfg.Display.Precision)
}

func (a App) renderCalculatorTab(cw int) string {
	vals := a.graph.Values()

	metrics := []components.Metric{
		{Label: "Amount", Value: a.money(vals.Amount)},
		{Label: "Yearly rate", Value: cli.FormatRatePercent(vals.Yearly, a.cfg.Display.Precision)},
		{
			Label: "After 10 years",
			Value: a.money(vals.Amount * vals.Rates[compound.TenYear]),
			Note:  "+" + a.money(vals.Gains[compound.TenYear]),
		},
	}

	var b strings.Builder
	b.WriteString(components.MetricRow(metrics, cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Calculator", a.renderFieldRows(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Growth", a.renderGrowth(cw, vals), cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Calculator", a.renderFieldRows(widths[0]), widths[0]),
		components.ContentCard(fmt.Sprintf("Growth over %d years", projectionYears), a.renderGrowth(widths[1], vals), widths[1]),
	}))
	return b.String()
}

func (a App) renderFieldRows(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	gainStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)
	readOnlyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Invalid).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	views := a.graph.Views()

	var body strings.Builder
	for i, v := range views {
		label := fmt.Sprintf("%-18s ", v.Label)

		switch {
		case a.calc.editing && i == a.calc.cursor:
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(accentStyle.Render(label))
			body.WriteString(a.calc.input.View())
			if v.Percent {
				body.WriteString(dimStyle.Render(" %"))
			}
			if v.IsError {
				body.WriteString(errStyle.Render(" ✗"))
			}

		case i == a.calc.cursor:
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(label)
			val := selectedStyle.Render(a.displayText(v))
			body.WriteString(marker + l + val)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(l) - lipgloss.Width(val); pad > 0 {
				body.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}

		default:
			style := valueStyle
			switch {
			case v.ReadOnly:
				style = readOnlyStyle
			case strings.HasSuffix(v.ID, "-gain"):
				style = gainStyle
			}
			body.WriteString(blank.Render("  "))
			body.WriteString(labelStyle.Render(label))
			body.WriteString(style.Render(a.displayText(v)))
		}
		body.WriteString("\n")
	}

	// Footer: what the selected field means, then anything that went wrong.
	body.WriteString("\n")
	if cur := views[a.calc.cursor]; cur.Description != "" {
		body.WriteString(dimStyle.Render(cur.Description))
		body.WriteString("\n")
	}
	if a.calc.editing {
		if err := a.graph.Err(fieldIDs[a.calc.cursor]); err != nil {
			body.WriteString(errStyle.Render(truncStr(err.Error(), innerW)))
			body.WriteString("\n")
		}
	}
	if a.calc.err != nil {
		body.WriteString(warnStyle.Render(truncStr("Save failed: "+a.calc.err.Error(), innerW)))
		body.WriteString("\n")
	}
	if a.calc.notice != "" {
		body.WriteString(warnStyle.Render(a.calc.notice))
		body.WriteString("\n")
	}

	hint := "[j/k] navigate  [Enter] edit"
	if a.calc.editing {
		hint = "[Tab] next field  [Enter/Esc] done"
	}
	body.WriteString(labelStyle.Render(hint))
	return body.String()
}

func (a App) renderGrowth(cw int, vals graph.Values) string {
	t := theme.Active
	values := compound.Project(vals.Yearly, vals.Amount, projectionYears)
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}

	chart := components.BarChart(values, labels, t.Gain, components.CardInnerWidth(cw), 10)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return chart + "\n\n" + muted.Render(fmt.Sprintf("Year %d: %s", projectionYears, a.money(values[len(values)-1])))
}
