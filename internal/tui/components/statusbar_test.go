package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ratecalc/internal/tui/theme"
)

func TestStatusBarFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bar := RenderStatusBar(100, Status{Rates: "3 rates · USD", Age: "2m ago"})
	if w := lipgloss.Width(bar); w != 100 {
		t.Fatalf("width = %d, want 100", w)
	}
	plain := stripANSI(bar)
	if !strings.HasSuffix(plain, "3 rates · USD · 2m ago ") {
		t.Fatalf("bar = %q, want rate summary at the right edge", plain)
	}
}

func TestStatusBarShowsRefreshAndErrors(t *testing.T) {
	theme.SetActive("flexoki-dark")

	if got := stripANSI(RenderStatusBar(100, Status{Refreshing: true, Spinner: "*"})); !strings.Contains(got, "* fetching rates") {
		t.Fatalf("refreshing bar = %q", got)
	}
	if got := stripANSI(RenderStatusBar(100, Status{Err: "timeout", Offline: true})); !strings.Contains(got, "rates: timeout") || !strings.Contains(got, "offline") {
		t.Fatalf("error bar = %q", got)
	}
}

func TestStatusBarNarrowDropsRight(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bar := RenderStatusBar(30, Status{Rates: "168 rates · USD", Age: "just now"})
	if strings.Contains(stripANSI(bar), "168") {
		t.Fatalf("narrow bar kept the right side: %q", stripANSI(bar))
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('t'); got != 1 {
		t.Fatalf("TabIdxByKey('t') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestTabVisualWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for i, tab := range Tabs {
		want := len(tab.Name) + 2
		if got := TabVisualWidth(tab, true); got != want {
			t.Errorf("active %s width = %d, want %d", tab.Name, got, want)
		}
		if tab.KeyPos < 0 {
			want += 3
		}
		if got := TabVisualWidth(tab, false); got != want {
			t.Errorf("tab %d inactive width = %d, want %d", i, got, want)
		}
	}
}
