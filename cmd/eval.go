package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/ratecalc/internal/cli"
	"github.com/theirongolddev/ratecalc/internal/expr"

	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression, substituting currency codes",
	Long: "Evaluate arithmetic the way a field does. Currency codes are replaced\n" +
		"with their exchange rate, e.g. `ratecalc eval 100 * EUR`.",
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(_ *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if mentionsCurrency(text) {
		fetchRates(context.Background(), s)
	}

	v, err := expr.Evaluate(s.graph.Rates().Substitute(text))
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatValue(v, cfg.Display.Precision))
	return nil
}
