package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestRenderSparklineScalesToRange(t *testing.T) {
	got := RenderSparkline([]float64{100, 107, 114.49})
	if got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want %q", got, "▁▄█")
	}
	if got := RenderSparkline([]float64{5, 5, 5}); got != "▁▁▁" {
		t.Fatalf("flat RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("empty series should render nothing")
	}
}

func TestRenderTableLayout(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderTable(Table{
		Headers: []string{"Code", "Sym", "Rate"},
		Rows: [][]string{
			{"EUR", "€", "0.92"},
			{"JPY", "¥", "151.3"},
		},
		Right: []int{2},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{
		"╭──────┬─────┬───────╮",
		"│ Code │ Sym │  Rate │",
		"├──────┼─────┼───────┤",
		"│ EUR  │ €   │  0.92 │",
		"│ JPY  │ ¥   │ 151.3 │",
		"╰──────┴─────┴───────╯",
	}
	if len(lines) != len(want) {
		t.Fatalf("RenderTable lines = %d, want %d:\n%s", len(lines), len(want), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("empty table should render nothing")
	}
}
