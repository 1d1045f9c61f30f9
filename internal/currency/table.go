// Package currency holds exchange-rate snapshots and rewrites currency codes
// in expression text to their numeric rates.
package currency

import (
	"sort"
	"strings"
	"time"
)

// HomeMarker is the reserved key for the home currency. It is carried in
// tables but never substituted.
const HomeMarker = "00"

// Table is an immutable snapshot of code -> rate literal. The zero value is
// an empty table.
type Table struct {
	base      string
	fetchedAt time.Time
	rates     map[string]string
	replacer  *strings.Replacer
}

// NewTable copies rates into a new snapshot.
func NewTable(base string, fetchedAt time.Time, rates map[string]string) Table {
	t := Table{
		base:      base,
		fetchedAt: fetchedAt,
		rates:     make(map[string]string, len(rates)),
	}
	for code, rate := range rates {
		t.rates[code] = rate
	}
	t.replacer = buildReplacer(t.rates)
	return t
}

func buildReplacer(rates map[string]string) *strings.Replacer {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		if code == "" || code == HomeMarker {
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	// Replacer tries patterns in argument order at each position, so longer
	// codes go first to win over their prefixes.
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	pairs := make([]string, 0, 2*len(codes))
	for _, code := range codes {
		pairs = append(pairs, code, "("+rates[code]+")")
	}
	return strings.NewReplacer(pairs...)
}

// Base is the currency the rates are quoted against.
func (t Table) Base() string { return t.base }

// FetchedAt is when the snapshot was retrieved. Zero for an empty table.
func (t Table) FetchedAt() time.Time { return t.fetchedAt }

// Len counts entries, including the home marker if present.
func (t Table) Len() int { return len(t.rates) }

// IsEmpty reports whether the table has no entries.
func (t Table) IsEmpty() bool { return len(t.rates) == 0 }

// Rate returns the literal stored for code.
func (t Table) Rate(code string) (string, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Codes lists every code in the table in sorted order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the underlying mapping.
func (t Table) Rates() map[string]string {
	out := make(map[string]string, len(t.rates))
	for code, rate := range t.rates {
		out[code] = rate
	}
	return out
}

// Substitute rewrites every code occurrence in text as "(<rate>)".
func (t Table) Substitute(text string) string {
	if t.replacer == nil {
		return text
	}
	return t.replacer.Replace(text)
}

// Substitute is the package-level form of Table.Substitute.
func Substitute(text string, table Table) string {
	return table.Substitute(text)
}
