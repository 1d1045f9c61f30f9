// Package compound relates a yearly growth factor to the other compounding
// periods and to the money a principal earns over each of them.
package compound

import "math"

// Period is a compounding horizon measured against one year.
type Period int

const (
	Daily Period = iota
	Monthly
	Yearly
	FiveYear
	TenYear
)

// Count is the number of periods.
const Count = int(TenYear) + 1

// Periods lists every period in display order.
var Periods = []Period{Daily, Monthly, Yearly, FiveYear, TenYear}

// exponent of Y for each period, as num/den so the inverse is exact.
var exponents = [...]struct{ num, den float64 }{
	Daily:    {1, 365},
	Monthly:  {1, 12},
	Yearly:   {1, 1},
	FiveYear: {5, 1},
	TenYear:  {10, 1},
}

var names = [...]string{
	Daily:    "daily",
	Monthly:  "monthly",
	Yearly:   "yearly",
	FiveYear: "5y",
	TenYear:  "10y",
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(names) {
		return "unknown"
	}
	return names[p]
}

// ParsePeriod maps a period name back to its Period.
func ParsePeriod(s string) (Period, bool) {
	for i, n := range names {
		if n == s {
			return Period(i), true
		}
	}
	return 0, false
}

// Exponent returns the power of the yearly rate that yields one period.
func (p Period) Exponent() float64 {
	e := exponents[p]
	return e.num / e.den
}

// InverseExponent is exactly 1/Exponent.
func (p Period) InverseExponent() float64 {
	e := exponents[p]
	return e.den / e.num
}

// PeriodRate converts the yearly rate y into the growth factor for p.
func PeriodRate(p Period, y float64) float64 {
	if p == Yearly {
		return y
	}
	return math.Pow(y, p.Exponent())
}

// InverseRate converts a growth factor for p back into the yearly rate.
func InverseRate(p Period, r float64) float64 {
	if p == Yearly {
		return r
	}
	return math.Pow(r, p.InverseExponent())
}

// ToPercent renders a growth factor as a percentage: 1.07 -> 7.
func ToPercent(rate float64) float64 { return (rate - 1) * 100 }

// FromPercent is the inverse of ToPercent.
func FromPercent(pct float64) float64 { return pct/100 + 1 }

// Gain is what amount earns over p at yearly rate y.
func Gain(p Period, y, amount float64) float64 {
	return (PeriodRate(p, y) - 1) * amount
}

// InverseGain finds the amount that earns gain over p. ok is false when no
// finite amount does, e.g. when the rate for p is exactly 1.
func InverseGain(p Period, y, gain float64) (amount float64, ok bool) {
	den := PeriodRate(p, y) - 1
	if den == 0 {
		return 0, false
	}
	a := gain / den
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, false
	}
	return a, true
}

// Project returns amount compounded at y for every whole year 0..years.
func Project(y, amount float64, years int) []float64 {
	if years < 0 {
		return nil
	}
	out := make([]float64, years+1)
	for t := 0; t <= years; t++ {
		out[t] = amount * math.Pow(y, float64(t))
	}
	return out
}
