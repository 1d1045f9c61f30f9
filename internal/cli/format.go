// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// maxMinorUnits keeps money amounts inside int64 minor units with room to spare.
const maxMinorUnits = 1e15

// FormatValue renders v with precision decimals, or the shortest exact
// form when precision is negative.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(int32(precision))
}

// FormatRatePercent renders a growth factor as a percentage, e.g. 1.07 -> "7%".
func FormatRatePercent(rate float64, precision int) string {
	return FormatValue((rate-1)*100, precision) + "%"
}

// FormatMoney renders v in the given ISO currency using its symbol, digit
// grouping and minor units. Unknown codes fall back to "<value> <code>".
func FormatMoney(v float64, code string) string {
	code = strings.ToUpper(code)
	cur := money.GetCurrency(code)
	if cur == nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return strings.TrimSpace(FormatValue(v, 2) + " " + code)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(decimal.NewFromFloat(maxMinorUnits)) {
		return FormatValue(v, cur.Fraction) + " " + code
	}
	return money.New(minor.IntPart(), code).Display()
}

// CurrencySymbol returns the grapheme for code, or "" if unknown.
func CurrencySymbol(code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return ""
	}
	return cur.Grapheme
}

// KnownCurrency reports whether code is an ISO currency go-money knows.
func KnownCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatAge renders how long ago t was, or "never" for the zero time.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return FormatDuration(int64(now.Sub(t).Seconds())) + " ago"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
