// Package graph keeps the amount, the five period rates and the five period
// gains consistent with each other. Amount and the yearly rate are the only
// sources of truth; everything else is derived from them.
package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/field"
)

// Persisted keys.
const (
	KeyAmount = "amount"
	KeyYearly = "yearly"
)

var (
	ErrCorruptSetting = errors.New("graph: corrupt setting")
	ErrUnknownField   = errors.New("graph: unknown field")
)

// Settings is the key/value store the two sources are written through to.
type Settings interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Defaults seed a source that has never been stored.
type Defaults struct {
	Amount float64
	Yearly float64
}

// DefaultValues are used when nothing is configured.
var DefaultValues = Defaults{Amount: 100, Yearly: 1.07}

// Values is a numeric snapshot of every field.
type Values struct {
	Amount     float64
	Yearly     float64
	Calculated float64
	Rates      map[compound.Period]float64
	Gains      map[compound.Period]float64
}

// View is what a front end needs to draw one field.
type View struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Text        string `json:"text"`
	IsError     bool   `json:"is_error"`
	Focused     bool   `json:"focused"`
	ReadOnly    bool   `json:"read_only"`
	Percent     bool   `json:"percent"`
}

// Graph is not safe for concurrent use; callers serialize access.
type Graph struct {
	store Settings
	table currency.Table

	amount     float64
	yearly     float64
	calculated float64
	rates      [compound.Count]float64
	gains      [compound.Count]float64

	fields  map[string]*field.Field
	focused string
}

// New restores the sources from store, falling back to defaults for keys
// that are absent. A stored value that does not parse is ErrCorruptSetting.
func New(store Settings, defaults Defaults) (*Graph, error) {
	g := &Graph{
		store:  store,
		fields: make(map[string]*field.Field, len(layout)),
	}
	for _, d := range layout {
		g.fields[d.id] = field.New(d.id, d.kind == kindRate, d.kind == kindCalculated)
	}

	var err error
	if g.amount, err = load(store, KeyAmount, defaults.Amount); err != nil {
		return nil, err
	}
	if g.yearly, err = load(store, KeyYearly, defaults.Yearly); err != nil {
		return nil, err
	}
	g.recompute()
	return g, nil
}

func load(store Settings, key string, def float64) (float64, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q", ErrCorruptSetting, key, raw)
	}
	return v, nil
}

// recompute derives every non-source value in one forward pass:
// sources, then rates, then gains.
func (g *Graph) recompute() {
	g.calculated = g.amount
	for _, p := range compound.Periods {
		g.rates[p] = compound.PeriodRate(p, g.yearly)
	}
	for _, p := range compound.Periods {
		g.gains[p] = (g.rates[p] - 1) * g.amount
	}
}

func (g *Graph) canonical(d def) float64 {
	switch d.kind {
	case kindAmount:
		return g.amount
	case kindCalculated:
		return g.calculated
	case kindRate:
		return g.rates[d.period]
	default:
		return g.gains[d.period]
	}
}

func (g *Graph) lookup(id string) (def, *field.Field, error) {
	d, ok := byID[id]
	if !ok {
		return def{}, nil, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return d, g.fields[id], nil
}

// Focus starts editing id. Any other focused field is blurred first.
func (g *Graph) Focus(id string) error {
	d, f, err := g.lookup(id)
	if err != nil {
		return err
	}
	if f.ReadOnly {
		return field.ErrReadOnly
	}
	if g.focused != "" && g.focused != id {
		g.Blur(g.focused)
	}
	if err := f.Focus(g.canonical(d)); err != nil {
		return err
	}
	g.focused = id
	return nil
}

// Blur stops editing id; its text reverts to the formatted canonical value.
func (g *Graph) Blur(id string) {
	f, ok := g.fields[id]
	if !ok {
		return
	}
	f.Blur()
	if g.focused == id {
		g.focused = ""
	}
}

// Focused returns the id being edited, or "".
func (g *Graph) Focused() string { return g.focused }

// Edit replaces id's text with raw, focusing it if needed. Text that does not
// evaluate only flags the field; the returned error is for unknown or
// read-only fields and for failures writing the new source value.
func (g *Graph) Edit(id, raw string) error {
	if err := g.Focus(id); err != nil {
		return err
	}
	f := g.fields[id]
	v, err := f.Input(raw, g.table)
	if err != nil {
		return nil
	}
	return g.apply(byID[id], v)
}

// Err reports the evaluation error currently flagged on id, if any.
func (g *Graph) Err(id string) error {
	f, ok := g.fields[id]
	if !ok || !f.IsError() {
		return nil
	}
	return f.Err()
}

// apply moves an accepted value into the sources, re-derives and persists.
func (g *Graph) apply(d def, v float64) error {
	var key string
	switch d.kind {
	case kindAmount:
		g.amount = v
		key = KeyAmount
	case kindRate:
		g.yearly = compound.InverseRate(d.period, v)
		key = KeyYearly
	case kindGain:
		a, ok := compound.InverseGain(d.period, g.yearly, v)
		if !ok {
			return nil
		}
		g.amount = a
		key = KeyAmount
	default:
		return field.ErrReadOnly
	}
	g.recompute()
	return g.persist(key)
}

func (g *Graph) persist(key string) error {
	v := g.amount
	if key == KeyYearly {
		v = g.yearly
	}
	if err := g.store.Set(key, field.Format(v)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// SetRates swaps in a new rate table and re-evaluates the focused field's
// text against it.
func (g *Graph) SetRates(table currency.Table) error {
	g.table = table
	if g.focused == "" {
		return nil
	}
	f := g.fields[g.focused]
	v, err := f.Reevaluate(table)
	if err != nil {
		return nil
	}
	return g.apply(byID[g.focused], v)
}

// Rates returns the current rate table snapshot.
func (g *Graph) Rates() currency.Table { return g.table }

// Values returns the numeric state.
func (g *Graph) Values() Values {
	v := Values{
		Amount:     g.amount,
		Yearly:     g.yearly,
		Calculated: g.calculated,
		Rates:      make(map[compound.Period]float64, len(compound.Periods)),
		Gains:      make(map[compound.Period]float64, len(compound.Periods)),
	}
	for _, p := range compound.Periods {
		v.Rates[p] = g.rates[p]
		v.Gains[p] = g.gains[p]
	}
	return v
}

// Views returns every field in display order.
func (g *Graph) Views() []View {
	out := make([]View, 0, len(layout))
	for _, d := range layout {
		out = append(out, g.view(d))
	}
	return out
}

// View returns a single field.
func (g *Graph) View(id string) (View, error) {
	d, _, err := g.lookup(id)
	if err != nil {
		return View{}, err
	}
	return g.view(d), nil
}

func (g *Graph) view(d def) View {
	f := g.fields[d.id]
	return View{
		ID:          d.id,
		Label:       d.label,
		Description: d.description,
		Text:        f.Display(g.canonical(d)),
		IsError:     f.IsError(),
		Focused:     f.Focused(),
		ReadOnly:    f.ReadOnly,
		Percent:     f.Percent,
	}
}
