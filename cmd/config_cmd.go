// Package cmd implements the ratecalc CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default amount: %s\n", formatAmount(cfg, cfg.General.DefaultAmount))
	fmt.Printf("    Default yearly: %g\n", cfg.General.DefaultYearly)
	fmt.Println()

	fmt.Println("  [Rates]")
	fmt.Printf("    URL:        %s\n", config.RatesURL(cfg))
	fmt.Printf("    Paths:      %s, %s\n", cfg.Rates.RatesPath, cfg.Rates.BasePath)
	fmt.Printf("    Timeout:    %s\n", cfg.Rates.Timeout())
	if iv := cfg.Rates.RefreshInterval(); iv > 0 {
		fmt.Printf("    Refresh:    every %s\n", iv)
	} else {
		fmt.Println("    Refresh:    manual")
	}
	fmt.Printf("    Watch cron: %s\n", cfg.Rates.WatchCron)
	fmt.Printf("    Offline:    %v\n", offline(cfg))
	fmt.Println()

	opts := storeOptions(cfg)
	fmt.Println("  [Store]")
	fmt.Printf("    Backend: %s\n", opts.Backend)
	switch opts.Backend {
	case store.BackendRedis:
		fmt.Printf("    Redis:   %s (prefix %q)\n", opts.RedisAddr, opts.RedisPrefix)
	case store.BackendMemory:
		fmt.Println("    Values are not kept between runs")
	default:
		fmt.Printf("    Path:    %s\n", opts.Path)
	}
	fmt.Println()

	fmt.Println("  [Display]")
	cur := cfg.Display.Currency
	if cur == "" {
		cur = "plain numbers"
	}
	fmt.Printf("    Currency:  %s\n", cur)
	fmt.Printf("    Precision: %d\n", cfg.Display.Precision)
	fmt.Printf("    Theme:     %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Printf("    Events:  %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  Run `ratecalc setup` to reconfigure.")
	return nil
}
