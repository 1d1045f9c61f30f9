package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all ratecalc configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Rates      RatesConfig      `toml:"rates"`
	Store      StoreConfig      `toml:"store"`
	Display    DisplayConfig    `toml:"display"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds the values used before anything has been stored.
type GeneralConfig struct {
	DefaultAmount float64 `toml:"default_amount"`
	DefaultYearly float64 `toml:"default_yearly"`
}

// RatesConfig describes where exchange rates come from.
type RatesConfig struct {
	URL                string `toml:"url"`
	RatesPath          string `toml:"rates_path"`
	BasePath           string `toml:"base_path"`
	TimeoutSec         int    `toml:"timeout_sec"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
	WatchCron          string `toml:"watch_cron"`
	Offline            bool   `toml:"offline"`
}

// StoreConfig selects the settings backend.
type StoreConfig struct {
	Backend     string `toml:"backend"`
	Path        string `toml:"path,omitempty"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
	RedisPrefix string `toml:"redis_prefix"`
}

// DisplayConfig controls how numbers are shown. Precision -1 means the
// shortest exact representation.
type DisplayConfig struct {
	Currency  string `toml:"currency"`
	Precision int    `toml:"precision"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for `ratecalc serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultRatesURL is the public Coinbase exchange-rate endpoint.
const DefaultRatesURL = "https://api.coinbase.com/v2/exchange-rates"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultAmount: 100,
			DefaultYearly: 1.07,
		},
		Rates: RatesConfig{
			URL:                DefaultRatesURL,
			RatesPath:          "$.data.rates",
			BasePath:           "$.data.currency",
			TimeoutSec:         10,
			RefreshIntervalSec: 300,
			WatchCron:          "0 */5 * * * *",
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			RedisPrefix: "ratecalc:",
		},
		Display: DisplayConfig{
			Currency:  "USD",
			Precision: -1,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ratecalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ratecalc")
}

// DataDir returns the XDG-compliant data directory used by file stores.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ratecalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ratecalc")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// RatesURL returns the rate endpoint from env var or config, in that order.
func RatesURL(cfg Config) string {
	if u := os.Getenv("RATECALC_RATES_URL"); u != "" {
		return u
	}
	if cfg.Rates.URL == "" {
		return DefaultRatesURL
	}
	return cfg.Rates.URL
}

// StoreBackend returns the settings backend from env var or config.
func StoreBackend(cfg Config) string {
	if b := os.Getenv("RATECALC_STORE"); b != "" {
		return b
	}
	return cfg.Store.Backend
}

// RedisAddr returns the redis address from env var or config.
func RedisAddr(cfg Config) string {
	if a := os.Getenv("RATECALC_REDIS_ADDR"); a != "" {
		return a
	}
	return cfg.Store.RedisAddr
}

// Timeout is the per-request limit for rate fetches.
func (r RatesConfig) Timeout() time.Duration {
	if r.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(r.TimeoutSec) * time.Second
}

// RefreshInterval is zero when periodic refresh is disabled.
func (r RatesConfig) RefreshInterval() time.Duration {
	if r.RefreshIntervalSec <= 0 {
		return 0
	}
	return time.Duration(r.RefreshIntervalSec) * time.Second
}
