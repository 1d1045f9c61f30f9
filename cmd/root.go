package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/ratesource"
	"github.com/theirongolddev/ratecalc/internal/store"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/spf13/cobra"
)

var (
	flagQuiet   bool
	flagOffline bool
	flagStore   string
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "ratecalc",
	Short: "Interest rate and currency calculator",
	Long: "Convert interest rates between periods and see what an amount earns.\n" +
		"Every field takes arithmetic and currency codes, e.g. 100 * EUR.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Do not fetch exchange rates")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Settings backend: sqlite, yaml, redis or memory")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write background log output to this file")
}

// session is everything a command needs to drive the calculator.
type session struct {
	cfg       config.Config
	settings  store.Settings
	cache     store.RateCache // nil when the backend cannot keep rates
	graph     *graph.Graph
	refresher *ratesource.Refresher // nil when offline
}

func (s *session) Close() {
	if s.refresher != nil {
		s.refresher.Cancel()
	}
	_ = s.settings.Close()
}

// loadConfig reads the config file and applies its theme.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg, nil
}

func storeOptions(cfg config.Config) store.Options {
	backend := config.StoreBackend(cfg)
	if flagStore != "" {
		backend = flagStore
	}
	path := cfg.Store.Path
	if path == "" {
		path = store.DefaultPath(config.DataDir(), backend)
	}
	return store.Options{
		Backend:     backend,
		Path:        path,
		RedisAddr:   config.RedisAddr(cfg),
		RedisPrefix: cfg.Store.RedisPrefix,
	}
}

func offline(cfg config.Config) bool {
	return flagOffline || cfg.Rates.Offline
}

func newClient(cfg config.Config) *ratesource.Client {
	return ratesource.NewClient(ratesource.Options{
		URL:       config.RatesURL(cfg),
		RatesPath: cfg.Rates.RatesPath,
		BasePath:  cfg.Rates.BasePath,
		Timeout:   cfg.Rates.Timeout(),
	})
}

// openSession wires store, graph and refresher from cfg. Cached rates, if
// the backend has any, are loaded so offline runs can still convert.
func openSession(cfg config.Config) (*session, error) {
	opts := storeOptions(cfg)
	settings, err := store.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", opts.Backend, err)
	}

	g, err := graph.New(settings, graph.Defaults{
		Amount: cfg.General.DefaultAmount,
		Yearly: cfg.General.DefaultYearly,
	})
	if err != nil {
		_ = settings.Close()
		if errors.Is(err, graph.ErrCorruptSetting) {
			return nil, fmt.Errorf("%w (store %s at %s)", err, opts.Backend, opts.Path)
		}
		return nil, err
	}

	s := &session{cfg: cfg, settings: settings, graph: g}
	if c, ok := settings.(store.RateCache); ok {
		s.cache = c
	}
	if !offline(cfg) {
		s.refresher = ratesource.NewRefresher(newClient(cfg))
	}

	if s.cache != nil {
		t, ok, err := s.cache.LoadRates()
		switch {
		case err != nil:
			progress("  Cached rates unavailable: %v\n", err)
		case ok:
			_ = g.SetRates(t)
			if s.refresher != nil {
				s.refresher.Seed(t)
			}
		}
	}
	return s, nil
}

func progress(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// displayCode is the configured display currency when go-money knows it.
func displayCode(cfg config.Config) string {
	if cli.KnownCurrency(cfg.Display.Currency) {
		return cfg.Display.Currency
	}
	return ""
}

func formatAmount(cfg config.Config, v float64) string {
	if code := displayCode(cfg); code != "" {
		return cli.FormatMoney(v, code)
	}
	return cli.FormatValue(v, cfg.Display.Precision)
}
