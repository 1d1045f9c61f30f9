package cli

import (
	"math"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		v    float64
		prec int
		want string
	}{
		{100, -1, "100"},
		{0.1 + 0.2, -1, "0.30000000000000004"},
		{0.1 + 0.2, 2, "0.30"},
		{1234.5678, 1, "1234.6"},
		{-3, 0, "-3"},
		{math.Inf(1), 2, "+Inf"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v, c.prec); got != c.want {
			t.Fatalf("FormatValue(%v, %d) = %q, want %q", c.v, c.prec, got, c.want)
		}
	}
}

func TestFormatRatePercent(t *testing.T) {
	if got := FormatRatePercent(1.07, 2); got != "7.00%" {
		t.Fatalf("FormatRatePercent = %q, want 7.00%%", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		v    float64
		code string
		want string
	}{
		{1234.5, "USD", "$1,234.50"},
		{1234.5, "usd", "$1,234.50"},
		{-7.005, "USD", "-$7.01"},
		{1500, "JPY", "¥1,500"},
		{2.5, "XYZ", "2.50 XYZ"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.v, c.code); got != c.want {
			t.Fatalf("FormatMoney(%v, %s) = %q, want %q", c.v, c.code, got, c.want)
		}
	}
	if got := FormatMoney(math.NaN(), "USD"); got != "NaN USD" {
		t.Fatalf("FormatMoney(NaN) = %q", got)
	}
}

func TestCurrencyLookup(t *testing.T) {
	if CurrencySymbol("EUR") != "€" {
		t.Fatalf("CurrencySymbol(EUR) = %q", CurrencySymbol("EUR"))
	}
	if KnownCurrency("BTC") {
		t.Fatal("BTC reported as an ISO currency")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for n, want := range cases {
		if got := FormatNumber(n); got != want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Fatalf("FormatAge(zero) = %q", got)
	}
	if got := FormatAge(now.Add(-125*time.Second), now); got != "2m ago" {
		t.Fatalf("FormatAge = %q, want 2m ago", got)
	}
}
