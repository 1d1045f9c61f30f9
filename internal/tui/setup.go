package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/expr"
	"github.com/theirongolddev/ratecalc/internal/field"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/store"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds what the first-run form collects. Amount and Yearly
// are expressions; Yearly is a percentage.
type SetupValues struct {
	Amount   string
	Yearly   string
	Currency string
	Theme    string
	Store    string
}

// setupCurrencies are offered in the form; the configured one is added if
// it is not among them.
var setupCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD"}

// NewSetupValues seeds the form from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Amount:   field.Format(cfg.General.DefaultAmount),
		Yearly:   field.Format(compound.ToPercent(cfg.General.DefaultYearly)),
		Currency: cfg.Display.Currency,
		Theme:    cfg.Appearance.Theme,
		Store:    cfg.Store.Backend,
	}
}

func validateExpr(s string) error {
	if _, err := expr.Evaluate(s); err != nil {
		return fmt.Errorf("not a number: %s", strings.TrimSpace(s))
	}
	return nil
}

// NewSetupForm builds the first-run form writing into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	currencies := setupCurrencies
	if vals.Currency != "" && !slices.Contains(currencies, vals.Currency) {
		currencies = append([]string{vals.Currency}, currencies...)
	}
	currencyOpts := huh.NewOptions(currencies...)
	currencyOpts = append(currencyOpts, huh.NewOption("Plain numbers", ""))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ratecalc").
				Description("Pick a starting amount and yearly rate.\nBoth accept arithmetic, e.g. 12*250."),
			huh.NewInput().
				Title("Amount").
				Placeholder("100").
				Value(&vals.Amount).
				Validate(validateExpr),
			huh.NewInput().
				Title("Yearly rate (%)").
				Placeholder("7").
				Value(&vals.Yearly).
				Validate(validateExpr),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Display currency").
				Options(currencyOpts...).
				Value(&vals.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Where to keep your values").
				Description("Store changes take effect on the next start.").
				Options(
					huh.NewOption("SQLite database", store.BackendSQLite),
					huh.NewOption("YAML file", store.BackendYAML),
					huh.NewOption("Redis", store.BackendRedis),
					huh.NewOption("Memory (nothing saved)", store.BackendMemory),
				).
				Value(&vals.Store),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// Apply copies the collected values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	amount, err := expr.Evaluate(v.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	pct, err := expr.Evaluate(v.Yearly)
	if err != nil {
		return fmt.Errorf("yearly rate: %w", err)
	}
	if _, ok := theme.Lookup(v.Theme); !ok {
		return fmt.Errorf("unknown theme %q", v.Theme)
	}

	cfg.General.DefaultAmount = amount
	cfg.General.DefaultYearly = compound.FromPercent(pct)
	cfg.Display.Currency = v.Currency
	cfg.Appearance.Theme = v.Theme
	cfg.Store.Backend = v.Store
	return nil
}

// WriteSources edits the amount and yearly rate into g, which persists
// them like any other edit. Both fields are left unfocused.
func (v SetupValues) WriteSources(g *graph.Graph) error {
	yearly := graph.RateID(compound.Yearly)
	for _, e := range []struct{ id, text string }{
		{graph.IDAmount, v.Amount},
		{yearly, v.Yearly},
	} {
		err := g.Edit(e.id, e.text)
		g.Blur(e.id)
		if err != nil {
			return err
		}
	}
	return nil
}

// applySetup saves the form's choices to the config file and the graph.
func (a *App) applySetup() error {
	cfg := a.cfg
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)

	if err := a.setupVals.WriteSources(a.graph); err != nil {
		return err
	}
	return config.Save(cfg)
}
