package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"
)

func init() {
	// Background fills only show up as escape codes with a color profile.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	widths := LayoutRow(80, 3)
	if len(widths) != 3 {
		t.Fatalf("len = %d, want 3", len(widths))
	}
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum != 80 {
		t.Fatalf("sum = %d, want 80", sum)
	}
	if widths[0] != 27 || widths[2] != 26 {
		t.Fatalf("widths = %v, want [27 27 26]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow(10, 0) should be nil")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "x", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	shortH := lipgloss.Height(short)
	tallH := lipgloss.Height(tall)
	if shortH >= tallH {
		t.Fatalf("setup: short card height %d >= tall %d", shortH, tallH)
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallH {
		t.Fatalf("joined height = %d, want %d", len(lines), tallH)
	}
	for i := shortH; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, lines[i])
		}
	}
}

func TestMetricRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricRow([]Metric{
		{Label: "Amount", Value: "$100.00"},
		{Label: "Yearly", Value: "7 %", Note: "per year"},
	}, 60)
	if w := lipgloss.Width(row); w != 60 {
		t.Fatalf("row width = %d, want 60", w)
	}
}
