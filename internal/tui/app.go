// Package tui provides the interactive Bubble Tea calculator.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/ratesource"
	"github.com/theirongolddev/ratecalc/internal/store"
	"github.com/theirongolddev/ratecalc/internal/tui/components"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Options wires an App to the rest of the program.
type Options struct {
	Graph     *graph.Graph
	Refresher *ratesource.Refresher // nil runs offline on whatever table the graph has
	Cache     store.RateCache       // optional; receives every fetched table
	Config    config.Config
	NeedSetup bool
}

// refreshMsg asks Update to start a rate fetch.
type refreshMsg struct{}

// ratesDoneMsg carries a finished fetch back to the event loop.
type ratesDoneMsg struct {
	res ratesource.Result
}

type tickMsg struct{}

// Tab indexes into components.Tabs.
const (
	tabCalculator = iota
	tabRates
	tabSettings
)

// App is the root Bubble Tea model. The graph and refresher are only ever
// touched from Update, which Bubble Tea runs on a single goroutine.
type App struct {
	graph     *graph.Graph
	refresher *ratesource.Refresher
	cache     store.RateCache
	cfg       config.Config

	refreshInterval time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	calc     calcState
	rates    ratesState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	compactWidth     = 110
	maxContentWidth  = 160

	minRefreshInterval = 10 * time.Second

	scrollOverhead    = 8
	minHalfPageScroll = 1
	minContentHeight  = 5
)

// NewApp creates the calculator model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		graph:           opts.Graph,
		refresher:       opts.Refresher,
		cache:           opts.Cache,
		cfg:             opts.Config,
		refreshInterval: effectiveInterval(opts.Config.Rates.RefreshInterval()),
		needSetup:       opts.NeedSetup,
		spinner:         sp,
	}
	a.calc.input = newFieldInput()
	a.rates.searchInput = newSearchInput()

	if a.needSetup {
		a.setupVals = NewSetupValues(opts.Config)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// effectiveInterval clamps a configured interval; zero stays disabled.
func effectiveInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if d < minRefreshInterval {
		return minRefreshInterval
	}
	return d
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		tickCmd(),
		func() tea.Msg { return refreshMsg{} },
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case refreshMsg:
		return a, a.startRefresh()

	case ratesDoneMsg:
		a.finishRefresh(msg.res)
		return a, nil

	case spinner.TickMsg:
		if a.refresher != nil && a.refresher.InFlight() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.refreshDue(time.Now()) {
			cmds = append(cmds, a.startRefresh())
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks etc.) to whatever has focus.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	var cmd tea.Cmd
	switch {
	case a.calc.editing:
		a.calc.input, cmd = a.calc.input.Update(msg)
	case a.settings.editing:
		a.settings.input, cmd = a.settings.input.Update(msg)
	case a.rates.searching:
		a.rates.searchInput, cmd = a.rates.searchInput.Update(msg)
	}
	return a, cmd
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}

	// First-run setup intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Text inputs own the keyboard while active
	switch {
	case a.activeTab == tabCalculator && a.calc.editing:
		return a.updateCalcInput(msg)
	case a.activeTab == tabSettings && a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.activeTab == tabRates && a.rates.searching:
		return a.updateRatesSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var (
		handled bool
		model   tea.Model
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabCalculator:
		model, cmd, handled = a.calcKey(key)
	case tabRates:
		model, cmd, handled = a.ratesKey(key)
	case tabSettings:
		model, cmd, handled = a.settingsKey(key)
	}
	if handled {
		return model, cmd
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		return a, a.startRefresh()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch {
		case a.activeTab == tabCalculator && !a.calc.editing:
			a.calc.cursor = clampCursor(a.calc.cursor-1, len(fieldIDs))
		case a.activeTab == tabRates && !a.rates.searching:
			a.rates.cursor = clampCursor(a.rates.cursor-1, len(a.filteredCodes()))
		}
	case tea.MouseButtonWheelDown:
		switch {
		case a.activeTab == tabCalculator && !a.calc.editing:
			a.calc.cursor = clampCursor(a.calc.cursor+1, len(fieldIDs))
		case a.activeTab == tabRates && !a.rates.searching:
			a.rates.cursor = clampCursor(a.rates.cursor+1, len(a.filteredCodes()))
		}
	case tea.MouseButtonLeft:
		// The tab bar is the first line.
		if msg.Y == 0 && msg.Action == tea.MouseActionPress {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				if a.calc.editing {
					a.calcStopEdit()
				}
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.settings.saveErr = a.applySetup()
		a.settings.saved = a.settings.saveErr == nil
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// quit cancels any in-flight fetch so its goroutine does not outlive the
// program.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.calc.editing {
		a.calcStopEdit()
	}
	if a.refresher != nil {
		a.refresher.Cancel()
	}
	return a, tea.Quit
}

// ─── Rate refresh ───────────────────────────────────────────────

func (a *App) startRefresh() tea.Cmd {
	if a.refresher == nil {
		return nil
	}
	job := a.refresher.Start(context.Background())
	if job == nil {
		return nil
	}
	return tea.Batch(runJobCmd(job), a.spinner.Tick)
}

func runJobCmd(job *ratesource.Job) tea.Cmd {
	return func() tea.Msg {
		return ratesDoneMsg{res: job.Run()}
	}
}

func (a *App) finishRefresh(res ratesource.Result) {
	if a.refresher == nil || !a.refresher.Complete(res) {
		return
	}
	table := a.refresher.Table()
	a.calc.err = a.graph.SetRates(table)
	a.rates.cursor = clampCursor(a.rates.cursor, len(a.filteredCodes()))

	if a.cache != nil {
		if err := a.cache.SaveRates(table); err != nil {
			log.Printf("ratecalc: caching rates: %v", err)
		}
	}
}

func (a App) refreshDue(now time.Time) bool {
	if a.refresher == nil || a.refreshInterval == 0 || a.refresher.InFlight() {
		return false
	}
	last := a.refresher.LastAttempt()
	return !last.IsZero() && now.Sub(last) >= a.refreshInterval
}

// ─── Views ──────────────────────────────────────────────────────

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ratecalc needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.HelpKey).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"c t x", "Jump to tab"},
			{"← → Tab", "Previous / Next tab"},
			{"j k", "Move between fields"},
			{"g G", "First / Last"},
		}},
		{"Editing", [][2]string{
			{"Enter", "Edit field / Done"},
			{"Tab", "Next field while editing"},
			{"Esc", "Done"},
			{"", "Fields take expressions: 12*250, 1000 * EUR"},
		}},
		{"Actions", [][2]string{
			{"/", "Search rates"},
			{"r", "Refresh exchange rates"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderInfoRow(w)
	statusBar := components.RenderStatusBar(w, a.status(time.Now()))

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabCalculator:
		content = a.renderCalculatorTab(cw)
	case tabRates:
		content = a.renderRatesTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderInfoRow is the pill under the tab bar: display currency, rate base
// and the field being edited.
func (a App) renderInfoRow(w int) string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	cur := a.cfg.Display.Currency
	if cur == "" {
		cur = "plain"
	}
	s := pill.Render(" ") + accent.Render(cur)
	if base := a.graph.Rates().Base(); base != "" {
		s += pill.Render(" │ rates in ") + accent.Render(base)
	}
	if id := a.graph.Focused(); id != "" {
		if v, err := a.graph.View(id); err == nil {
			s += pill.Render(" │ editing ") + accent.Render(v.Label)
		}
	}
	s += pill.Render(" ")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(s)
}

func (a App) status(now time.Time) components.Status {
	st := components.Status{
		Spinner: a.spinner.View(),
		Offline: a.refresher == nil,
	}
	if a.refresher != nil {
		st.Refreshing = a.refresher.InFlight()
		if err := a.refresher.LastErr(); err != nil {
			st.Err = truncStr(err.Error(), 40)
		}
	}
	table := a.graph.Rates()
	if !table.IsEmpty() {
		st.Rates = cli.FormatNumber(int64(table.Len())) + " rates"
		if base := table.Base(); base != "" {
			st.Rates += " · " + base
		}
		st.Age = cli.FormatAge(table.FetchedAt(), now)
	}
	return st
}

// ─── Helpers ────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w so gaps between cards
// keep the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at column x, or -1. Hitboxes follow the
// widths RenderTabBar draws, with a one-column separator between tabs.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
