package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"
)

func TestChartLabel(t *testing.T) {
	cases := map[float64]string{
		0.5:     "0.50",
		42:      "42",
		1000:    "1k",
		1500:    "1.5k",
		2000000: "2M",
		3.2e9:   "3.2B",
	}
	for in, want := range cases {
		if got := ChartLabel(in); got != want {
			t.Errorf("ChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTickStep(t *testing.T) {
	cases := map[float64]float64{100: 20, 196.7: 50, 1000: 200, 0: 1}
	for in, want := range cases {
		if got := tickStep(in); got != want {
			t.Errorf("tickStep(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSparklineScalesToPeak(t *testing.T) {
	theme.SetActive("flexoki-dark")
	got := stripANSI(Sparkline([]float64{0, 50, 100}, theme.Active.Accent))
	if got != "▁▄█" {
		t.Fatalf("Sparkline = %q, want %q", got, "▁▄█")
	}
}

func TestBarChartShape(t *testing.T) {
	theme.SetActive("flexoki-dark")
	values := []float64{100, 107, 114.49, 122.5}
	labels := []string{"0", "1", "2", "3"}

	out := BarChart(values, labels, theme.Active.Accent, 40, 8)
	lines := strings.Split(out, "\n")
	last := stripANSI(lines[len(lines)-1])
	if !strings.Contains(last, "0") || !strings.Contains(last, "3") {
		t.Fatalf("label row = %q, want year labels", last)
	}
	axis := stripANSI(lines[len(lines)-2])
	if !strings.Contains(axis, "└") {
		t.Fatalf("axis row = %q, want └", axis)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 40 {
			t.Errorf("line %d width %d exceeds 40", i, w)
		}
	}
}

func TestBarChartFallsBackWhenTiny(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := BarChart([]float64{1, 2}, nil, theme.Active.Accent, 10, 2)
	if strings.Contains(out, "\n") {
		t.Fatalf("tiny chart should be a one-line sparkline, got %q", out)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
