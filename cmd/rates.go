package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/ratesource"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagRatesFormat string
	flagWatchCron   string
)

var ratesCmd = &cobra.Command{
	Use:   "rates [codes...]",
	Short: "Fetch and print exchange rates",
	RunE:  runRates,
}

var ratesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh exchange rates on a cron schedule",
	Args:  cobra.NoArgs,
	RunE:  runRatesWatch,
}

func init() {
	ratesCmd.Flags().StringVarP(&flagRatesFormat, "format", "f", "table", "Output format: table, json or yaml")
	ratesWatchCmd.Flags().StringVar(&flagWatchCron, "cron", "", "Six-field cron spec (default from config)")
	ratesCmd.AddCommand(ratesWatchCmd)
	rootCmd.AddCommand(ratesCmd)
}

// ratesDoc is the json/yaml shape of a rate table.
type ratesDoc struct {
	Base      string            `json:"base" yaml:"base"`
	FetchedAt time.Time         `json:"fetched_at" yaml:"fetched_at"`
	Rates     map[string]string `json:"rates" yaml:"rates"`
}

func runRates(_ *cobra.Command, args []string) error {
	switch flagRatesFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", flagRatesFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	fetchRates(context.Background(), s)
	table := s.graph.Rates()
	if table.IsEmpty() {
		if s.refresher != nil && s.refresher.LastErr() != nil {
			return fmt.Errorf("no rates available: %w", s.refresher.LastErr())
		}
		return fmt.Errorf("no rates available")
	}

	codes := selectCodes(table, args)
	switch flagRatesFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newRatesDoc(table, codes))
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(newRatesDoc(table, codes)); err != nil {
			return err
		}
		return enc.Close()
	}

	amount := s.graph.Values().Amount
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		raw, _ := table.Rate(code)
		converted := ""
		if r, err := strconv.ParseFloat(raw, 64); err == nil {
			converted = cli.FormatMoney(amount*r, code)
		}
		rows = append(rows, []string{code, cli.CurrencySymbol(code), raw, converted})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RATES  1 %s", table.Base())))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Code", "Sym", "Rate", formatAmount(cfg, amount)},
		Rows:    rows,
		Right:   []int{2, 3},
	}))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %s codes, updated %s",
		cli.FormatNumber(int64(len(codes))), cli.FormatAge(table.FetchedAt(), time.Now()))))
	return nil
}

// selectCodes returns the requested codes present in table, or all of them.
func selectCodes(table currency.Table, want []string) []string {
	if len(want) == 0 {
		return table.Codes()
	}
	var out []string
	for _, c := range want {
		c = strings.ToUpper(c)
		if _, ok := table.Rate(c); ok {
			out = append(out, c)
		} else {
			progress("  %s: no rate\n", c)
		}
	}
	return out
}

func newRatesDoc(table currency.Table, codes []string) ratesDoc {
	doc := ratesDoc{
		Base:      table.Base(),
		FetchedAt: table.FetchedAt(),
		Rates:     make(map[string]string, len(codes)),
	}
	for _, c := range codes {
		doc.Rates[c], _ = table.Rate(c)
	}
	return doc
}

func runRatesWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.refresher == nil {
		return fmt.Errorf("rates watch cannot run offline")
	}

	spec := flagWatchCron
	if spec == "" {
		spec = cfg.Rates.WatchCron
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w := ratesource.NewWatcher(s.refresher)
	w.OnUpdate = func(t currency.Table, err error) {
		now := time.Now().Format("15:04:05")
		if err != nil {
			fmt.Printf("  %s  refresh failed: %v\n", now, err)
			return
		}
		fmt.Printf("  %s  %s rates, base %s\n", now, cli.FormatNumber(int64(t.Len())), t.Base())
		if s.cache != nil {
			if err := s.cache.SaveRates(t); err != nil {
				fmt.Printf("  %s  caching failed: %v\n", now, err)
			}
		}
	}
	if err := w.Schedule(ctx, spec); err != nil {
		return err
	}

	fmt.Printf("  Watching %s on %q\n", config.RatesURL(cfg), spec)
	w.RunOnce(ctx)
	w.Run(ctx)
	return nil
}
