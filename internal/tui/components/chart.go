package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/ratecalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as one row of block characters scaled to the
// largest value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * 8)
		idx = max(1, min(idx, 8))
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders one bar per value with a labeled y axis. labels, when
// given, must be the same length as values and are written under the bars.
// Charts too small to draw fall back to a sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	step := tickStep(peak)
	maxTicks := max(2, height/2)
	for math.Ceil(peak/step) > float64(maxTicks) {
		step *= 2
	}
	ticks := max(1, int(math.Ceil(peak/step)))
	ceiling := step * float64(ticks)
	rowsPerTick := max(2, height/ticks)
	chartH := rowsPerTick * ticks

	axisW := max(4, len(ChartLabel(ceiling))+1)
	tickLabels := make(map[int]string, ticks)
	for i := 1; i <= ticks; i++ {
		tickLabels[i*rowsPerTick] = ChartLabel(step * float64(i))
	}

	plotW := max(5, width-axisW-1)
	barW := 1
	if n > 0 {
		barW = (plotW - (n - 1)) / n
	}
	barW = max(1, min(barW, 6))
	gap := 1
	if n == 1 {
		gap = 0
	}
	axisLen := n*barW + (n-1)*gap

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		barColor := t.Accent
		switch frac := float64(row) / float64(chartH); {
		case frac > 0.8:
			barColor = t.AccentBright
		case frac > 0.5:
			barColor = color
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, tickLabels[row])))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(bar.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		line := []rune(strings.Repeat(" ", axisLen))
		next := 0
		for i, lbl := range labels {
			pos := i * (barW + gap)
			r := []rune(lbl)
			if pos < next || pos+len(r) > axisLen {
				continue
			}
			copy(line[pos:], r)
			next = pos + len(r) + 1
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", axisW+1)))
		b.WriteString(axis.Render(strings.TrimRight(string(line), " ")))
	}

	return b.String()
}

// tickStep picks a 1/2/5 x 10^k interval giving about five ticks.
func tickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// ChartLabel abbreviates an axis value: 1500 -> 1.5k, 2000000 -> 2M.
func ChartLabel(v float64) string {
	units := []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}}
	for _, u := range units {
		if v >= u.div {
			if v == math.Trunc(v/u.div)*u.div {
				return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
		}
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
