package graph

import "github.com/theirongolddev/ratecalc/internal/compound"

// Field identifiers.
const (
	IDAmount     = "amount"
	IDCalculated = "calculated"
)

type kind int

const (
	kindAmount kind = iota
	kindCalculated
	kindRate
	kindGain
)

type def struct {
	id          string
	kind        kind
	period      compound.Period
	label       string
	description string
}

// RateID is the field id for the rate of p.
func RateID(p compound.Period) string { return p.String() }

// GainID is the field id for the gain over p.
func GainID(p compound.Period) string { return p.String() + "-gain" }

var layout = []def{
	{IDAmount, kindAmount, 0, "Amount", "Amount to multiply by the interest"},
	{IDCalculated, kindCalculated, 0, "Calculated amount", "Calculate value of the amount"},
	{RateID(compound.Daily), kindRate, compound.Daily, "Daily", "Daily interest rate in %"},
	{GainID(compound.Daily), kindGain, compound.Daily, "Daily amount", "Amount earned in a day."},
	{RateID(compound.Monthly), kindRate, compound.Monthly, "Monthly", "Monthly interest rate in %"},
	{GainID(compound.Monthly), kindGain, compound.Monthly, "Monthly amount", "Amount earned in a month."},
	{RateID(compound.Yearly), kindRate, compound.Yearly, "Yearly", "Yearly interest rate in %"},
	{GainID(compound.Yearly), kindGain, compound.Yearly, "Yearly amount", "Amount earned in a year."},
	{RateID(compound.FiveYear), kindRate, compound.FiveYear, "5 years", "5 years interest rate in %"},
	{GainID(compound.FiveYear), kindGain, compound.FiveYear, "5 years amount", "Amount earned in 5 years."},
	{RateID(compound.TenYear), kindRate, compound.TenYear, "10 years", "10 years interest rate in %"},
	{GainID(compound.TenYear), kindGain, compound.TenYear, "10 years amount", "Amount earned in 10 years."},
}

var byID = func() map[string]def {
	m := make(map[string]def, len(layout))
	for _, d := range layout {
		m[d.id] = d
	}
	return m
}()

// IDs lists field ids in display order.
func IDs() []string {
	out := make([]string, len(layout))
	for i, d := range layout {
		out[i] = d.id
	}
	return out
}

// Editable reports whether id names a field that accepts input.
func Editable(id string) bool {
	d, ok := byID[id]
	return ok && d.kind != kindCalculated
}
