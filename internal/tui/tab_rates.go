package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/tui/components"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ratesState tracks the rates tab: a scrollable, searchable list of codes.
type ratesState struct {
	cursor      int
	searching   bool
	searchInput textinput.Model
	query       string
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "code, e.g. EUR"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Prompt = "/ "
	return ti
}

// filteredCodes are the table's codes containing the search query.
func (a App) filteredCodes() []string {
	codes := a.graph.Rates().Codes()
	q := strings.ToUpper(strings.TrimSpace(a.rates.query))
	if q == "" {
		return codes
	}
	var out []string
	for _, c := range codes {
		if strings.Contains(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func (a App) ratesKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.filteredCodes())
	halfPage := max((a.height-scrollOverhead)/2, minHalfPageScroll)

	switch key {
	case "/":
		a.rates.searching = true
		a.rates.searchInput = newSearchInput()
		a.rates.searchInput.SetValue(a.rates.query)
		a.rates.searchInput.Focus()
		return a, a.rates.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.rates.query == "" {
			return a, nil, false
		}
		a.rates.query = ""
		a.rates.cursor = 0
	case "j", "down":
		a.rates.cursor = clampCursor(a.rates.cursor+1, n)
	case "k", "up":
		a.rates.cursor = clampCursor(a.rates.cursor-1, n)
	case "g":
		a.rates.cursor = 0
	case "G":
		a.rates.cursor = clampCursor(n-1, n)
	case "ctrl+d":
		a.rates.cursor = clampCursor(a.rates.cursor+halfPage, n)
	case "ctrl+u":
		a.rates.cursor = clampCursor(a.rates.cursor-halfPage, n)
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updateRatesSearch handles keys while the search box has focus.
func (a App) updateRatesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.rates.query = strings.TrimSpace(a.rates.searchInput.Value())
		a.rates.searching = false
		a.rates.cursor = 0
		return a, nil
	case "esc":
		a.rates.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.rates.searchInput, cmd = a.rates.searchInput.Update(msg)
	return a, cmd
}

// visibleWindow returns the first of rows lines to draw out of n so that
// cursor is on screen.
func visibleWindow(cursor, rows, n int) int {
	if rows <= 0 || n <= rows || cursor < rows {
		return 0
	}
	return min(cursor-rows+1, n-rows)
}

func (a App) renderRatesTab(cw, h int) string {
	t := theme.Active
	table := a.graph.Rates()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if table.IsEmpty() {
		msg := "No exchange rates loaded yet. Press r to fetch them."
		if a.refresher == nil {
			msg = "Running offline and no cached rates are available."
		}
		return components.ContentCard("Rates", labelStyle.Render(msg), cw)
	}

	codes := a.filteredCodes()
	vals := a.graph.Values()
	innerW := components.CardInnerWidth(cw)

	var body strings.Builder
	summary := fmt.Sprintf("%s codes · updated %s",
		cli.FormatNumber(int64(table.Len())), cli.FormatAge(table.FetchedAt(), time.Now()))
	if base := table.Base(); base != "" {
		summary = "Per 1 " + base + " · " + summary
	}
	body.WriteString(labelStyle.Render(summary))
	body.WriteString("\n")

	switch {
	case a.rates.searching:
		body.WriteString(a.rates.searchInput.View())
	case a.rates.query != "":
		body.WriteString(dimStyle.Render(fmt.Sprintf("filter: %s (%d)  [Esc] clear", a.rates.query, len(codes))))
	default:
		body.WriteString(dimStyle.Render("[/] search  [j/k] scroll"))
	}
	body.WriteString("\n\n")

	header := fmt.Sprintf("  %-6s %-4s %18s  %s", "Code", "Sym", "Rate", "Amount")
	body.WriteString(headStyle.Render(header))
	body.WriteString("\n")

	// Card border, title, summary, filter line, blank, header.
	rows := max(h-8, 1)
	start := visibleWindow(a.rates.cursor, rows, len(codes))
	end := min(start+rows, len(codes))

	for i := start; i < end; i++ {
		code := codes[i]
		raw, _ := table.Rate(code)
		converted := ""
		if r, err := strconv.ParseFloat(raw, 64); err == nil {
			converted = cli.FormatMoney(vals.Amount*r, code)
		}
		line := fmt.Sprintf("%-6s %-4s %18s  %s", code, cli.CurrencySymbol(code), truncStr(raw, 18), converted)
		line = truncStr(line, innerW-2)

		if i == a.rates.cursor {
			row := selectedStyle.Render("▸ " + line)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				row += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			body.WriteString(row)
		} else {
			body.WriteString(valueStyle.Render("  " + line))
		}
		body.WriteString("\n")
	}
	if len(codes) == 0 {
		body.WriteString(labelStyle.Render("  no matching codes"))
	}

	return components.ContentCard("Rates", strings.TrimRight(body.String(), "\n"), cw)
}
