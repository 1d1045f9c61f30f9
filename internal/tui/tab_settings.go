package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/store"
	"github.com/theirongolddev/ratecalc/internal/tui/components"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldCurrency = iota
	settingsFieldPrecision
	settingsFieldTheme
	settingsFieldRefreshInterval
	settingsFieldRatesURL
	settingsFieldStore
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message until the next edit
	saveErr error // non-nil if the last save or validation failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = clampCursor(a.settings.cursor+1, settingsFieldCount)
	case "k", "up":
		a.settings.cursor = clampCursor(a.settings.cursor-1, settingsFieldCount)
	case "enter", "e":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldCurrency:
		ti.Placeholder = "USD, EUR, JPY (empty for plain numbers)"
		ti.SetValue(a.cfg.Display.Currency)
	case settingsFieldPrecision:
		ti.Placeholder = "-1 for shortest, 0-12 digits"
		ti.SetValue(strconv.Itoa(a.cfg.Display.Precision))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldRefreshInterval:
		ti.Placeholder = "300 (seconds, minimum 10, 0 disables)"
		ti.SetValue(strconv.Itoa(a.cfg.Rates.RefreshIntervalSec))
	case settingsFieldRatesURL:
		ti.Placeholder = config.DefaultRatesURL
		ti.SetValue(a.cfg.Rates.URL)
	case settingsFieldStore:
		ti.Placeholder = "sqlite, yaml, redis or memory"
		ti.SetValue(a.cfg.Store.Backend)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value, applies what can change live and
// writes the config file. Invalid input leaves the config untouched.
func (a *App) settingsSave() {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldCurrency:
		code := strings.ToUpper(val)
		if code != "" && !cli.KnownCurrency(code) {
			a.settings.saveErr = fmt.Errorf("unknown currency %q", val)
			return
		}
		cfg.Display.Currency = code
	case settingsFieldPrecision:
		p, err := strconv.Atoi(val)
		if err != nil || p < -1 || p > 12 {
			a.settings.saveErr = fmt.Errorf("precision must be between -1 and 12")
			return
		}
		cfg.Display.Precision = p
	case settingsFieldTheme:
		if _, ok := theme.Lookup(val); !ok {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldRefreshInterval:
		secs, err := strconv.Atoi(val)
		if err != nil || secs < 0 || (secs > 0 && secs < int(minRefreshInterval/time.Second)) {
			a.settings.saveErr = fmt.Errorf("interval must be 0 or at least %d seconds", int(minRefreshInterval/time.Second))
			return
		}
		cfg.Rates.RefreshIntervalSec = secs
		a.refreshInterval = effectiveInterval(cfg.Rates.RefreshInterval())
	case settingsFieldRatesURL:
		if val == "" {
			a.settings.saveErr = fmt.Errorf("rates URL cannot be empty")
			return
		}
		cfg.Rates.URL = val
	case settingsFieldStore:
		switch val {
		case store.BackendSQLite, store.BackendYAML, store.BackendRedis, store.BackendMemory:
		default:
			a.settings.saveErr = fmt.Errorf("%w: %q", store.ErrUnknownBackend, val)
			return
		}
		cfg.Store.Backend = val
	}

	a.cfg = cfg
	a.settings.saveErr = config.Save(cfg)
}

func (a App) settingsValues() []string {
	cur := a.cfg.Display.Currency
	if cur == "" {
		cur = "(plain numbers)"
	}
	prec := strconv.Itoa(a.cfg.Display.Precision)
	if a.cfg.Display.Precision < 0 {
		prec = "shortest"
	}
	interval := "off"
	if a.refreshInterval > 0 {
		interval = cli.FormatDuration(int64(a.refreshInterval.Seconds()))
	}
	return []string{
		cur,
		prec,
		a.cfg.Appearance.Theme,
		interval,
		a.cfg.Rates.URL,
		a.cfg.Store.Backend,
	}
}

var settingsLabels = [settingsFieldCount]string{
	"Currency",
	"Precision",
	"Theme",
	"Refresh Interval",
	"Rates URL",
	"Store",
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	savedStyle := lipgloss.NewStyle().Foreground(t.Saved).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	values := a.settingsValues()

	var formBody strings.Builder
	for i, label := range settingsLabels {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		value := truncStr(values[i], innerW-22)
		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":"))
			v := selectedStyle.Render(value)
			formBody.WriteString(marker + l + v)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(l) - lipgloss.Width(v); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
			formBody.WriteString(valueStyle.Render(value))
		}
		formBody.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(truncStr("Not saved: "+a.settings.saveErr.Error(), innerW)))
	case a.settings.saved:
		formBody.WriteString("\n")
		formBody.WriteString(savedStyle.Render("Saved!"))
	}
	if a.settings.cursor == settingsFieldRatesURL || a.settings.cursor == settingsFieldStore {
		formBody.WriteString("\n")
		formBody.WriteString(dimStyle.Render("Takes effect on the next start."))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	online := "online"
	if a.refresher == nil {
		online = "offline"
	}
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(truncStr(config.Path(), innerW-14)) + "\n")
	infoBody.WriteString(labelStyle.Render("Store:        ") + valueStyle.Render(config.StoreBackend(a.cfg)) + "\n")
	infoBody.WriteString(labelStyle.Render("Rates from:   ") + valueStyle.Render(truncStr(config.RatesURL(a.cfg), innerW-14)) + "\n")
	infoBody.WriteString(labelStyle.Render("Mode:         ") + valueStyle.Render(online))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
