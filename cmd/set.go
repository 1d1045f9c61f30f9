package cmd

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/theirongolddev/ratecalc/internal/graph"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <field> <expression>",
	Short: "Set a field and print the result",
	Long: "Set one field the same way the calculator does. Rates are percentages,\n" +
		"gains and the amount take currency codes, e.g.\n\n" +
		"  ratecalc set amount '1000 * EUR'\n" +
		"  ratecalc set monthly 0.5",
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(_ *cobra.Command, args []string) error {
	id := args[0]
	text := strings.Join(args[1:], " ")
	if !graph.Editable(id) {
		return fmt.Errorf("cannot set %q; editable fields: %s", id, strings.Join(editableIDs(), ", "))
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

	if mentionsCurrency(text) {
		fetchRates(context.Background(), s)
	}

	if err := s.graph.Edit(id, text); err != nil {
		return err
	}
	evalErr := s.graph.Err(id)
	s.graph.Blur(id)
	if evalErr != nil {
		return evalErr
	}

	printFields(cfg, s.graph)
	printProjection(cfg, s.graph.Values(), 10)
	return nil
}

func editableIDs() []string {
	var out []string
	for _, id := range graph.IDs() {
		if graph.Editable(id) {
			out = append(out, id)
		}
	}
	return out
}

// mentionsCurrency reports whether text could reference a currency code.
func mentionsCurrency(text string) bool {
	return strings.ContainsFunc(text, unicode.IsLetter)
}

// fetchRates runs one refresh in the foreground, falling back to whatever
// the session already has when it fails.
func fetchRates(ctx context.Context, s *session) {
	if s.refresher == nil {
		return
	}
	job := s.refresher.Start(ctx)
	if job == nil {
		return
	}
	progress("  Fetching exchange rates...\n")
	res := job.Run()
	if !s.refresher.Complete(res) {
		if res.Err != nil {
			progress("  Using cached rates: %v\n", res.Err)
		}
		return
	}
	table := s.refresher.Table()
	_ = s.graph.SetRates(table)
	if s.cache != nil {
		if err := s.cache.SaveRates(table); err != nil {
			progress("  Could not cache rates: %v\n", err)
		}
	}
}
