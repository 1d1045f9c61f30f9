package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/config"
	"github.com/theirongolddev/ratecalc/internal/graph"

	"github.com/spf13/cobra"
)

var flagShowYears int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every field and the growth projection",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVarP(&flagShowYears, "years", "y", 10, "Years to project")
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flagOffline = true // show never needs fresh rates
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	printFields(cfg, s.graph)
	printProjection(cfg, s.graph.Values(), flagShowYears)
	return nil
}

// fieldText formats a view's canonical text for the terminal.
func fieldText(cfg config.Config, v graph.View) string {
	x, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return v.Text
	}
	if v.Percent {
		return cli.FormatValue(x, cfg.Display.Precision) + " %"
	}
	return formatAmount(cfg, x)
}

func printFields(cfg config.Config, g *graph.Graph) {
	views := g.Views()
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		id := v.ID
		if v.ReadOnly {
			id += " (read-only)"
		}
		rows = append(rows, []string{v.Label, fieldText(cfg, v), id})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("RATECALC"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value", "ID"},
		Rows:    rows,
		Right:   []int{1},
	}))
}

func printProjection(cfg config.Config, vals graph.Values, years int) {
	if years < 1 {
		return
	}
	values := compound.Project(vals.Yearly, vals.Amount, years)
	fmt.Println()
	fmt.Printf("  Growth over %d years  %s  %s\n",
		years,
		cli.RenderSparkline(values),
		formatAmount(cfg, values[len(values)-1]),
	)
	fmt.Println()
}
