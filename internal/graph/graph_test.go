package graph

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/field"
	"github.com/theirongolddev/ratecalc/internal/store"
)

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func newGraph(t *testing.T) (*Graph, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	g, err := New(mem, DefaultValues)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, mem
}

func textOf(t *testing.T, g *Graph, id string) View {
	t.Helper()
	v, err := g.View(id)
	if err != nil {
		t.Fatalf("View(%s): %v", id, err)
	}
	return v
}

func TestNewUsesDefaults(t *testing.T) {
	g, _ := newGraph(t)
	v := g.Values()
	if v.Amount != 100 || v.Yearly != 1.07 {
		t.Fatalf("sources = %v, %v, want 100, 1.07", v.Amount, v.Yearly)
	}
	near(t, "yearly gain", v.Gains[compound.Yearly], 7)
	if got := textOf(t, g, IDAmount).Text; got != "100" {
		t.Fatalf("amount text = %q, want 100", got)
	}
	if got := textOf(t, g, IDCalculated).Text; got != "100" {
		t.Fatalf("calculated text = %q, want 100", got)
	}
}

func TestNewRestoresStored(t *testing.T) {
	mem := store.NewMemory()
	_ = mem.Set(KeyAmount, "2500")
	_ = mem.Set(KeyYearly, "1.1")
	g, err := New(mem, DefaultValues)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := g.Values()
	if v.Amount != 2500 || v.Yearly != 1.1 {
		t.Fatalf("sources = %v, %v, want 2500, 1.1", v.Amount, v.Yearly)
	}
}

func TestNewCorruptSetting(t *testing.T) {
	mem := store.NewMemory()
	_ = mem.Set(KeyYearly, "seven percent")
	_, err := New(mem, DefaultValues)
	if !errors.Is(err, ErrCorruptSetting) {
		t.Fatalf("New = %v, want ErrCorruptSetting", err)
	}
}

func TestEditAmountKeepsRates(t *testing.T) {
	g, mem := newGraph(t)
	before := g.Values()

	if err := g.Edit(IDAmount, "1000"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	after := g.Values()
	for _, p := range compound.Periods {
		if after.Rates[p] != before.Rates[p] {
			t.Fatalf("rate %s changed: %v -> %v", p, before.Rates[p], after.Rates[p])
		}
		near(t, "gain "+p.String(), after.Gains[p], (compound.PeriodRate(p, 1.07)-1)*1000)
	}
	if after.Calculated != 1000 {
		t.Fatalf("calculated = %v, want 1000", after.Calculated)
	}
	if v, _, _ := mem.Get(KeyAmount); v != "1000" {
		t.Fatalf("stored amount = %q, want 1000", v)
	}
	if _, ok, _ := mem.Get(KeyYearly); ok {
		t.Fatal("yearly written by an amount edit")
	}
}

func TestEditPowerBindsTighterThanMinus(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Edit(IDAmount, "-2^2"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := g.Err(IDAmount); err != nil {
		t.Fatalf("Err = %v, want nil", err)
	}
	if got := g.Values().Amount; got != -4 {
		t.Fatalf("amount = %v, want -4", got)
	}
}

func TestEditDailyRate(t *testing.T) {
	g, mem := newGraph(t)

	// 0.02% a day.
	if err := g.Edit(RateID(compound.Daily), "0.02"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	v := g.Values()
	near(t, "yearly", v.Yearly, math.Pow(1.0002, 365))
	near(t, "monthly", v.Rates[compound.Monthly], math.Pow(v.Yearly, 1.0/12))
	if v.Amount != 100 {
		t.Fatalf("amount = %v, want unchanged 100", v.Amount)
	}
	if _, ok, _ := mem.Get(KeyYearly); !ok {
		t.Fatal("yearly not persisted")
	}

	// The edited field still shows exactly what was typed.
	if got := textOf(t, g, RateID(compound.Daily)).Text; got != "0.02" {
		t.Fatalf("daily text = %q, want raw 0.02", got)
	}
}

func TestEditGainInvertsToAmount(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Edit(GainID(compound.Yearly), "14"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	v := g.Values()
	near(t, "amount", v.Amount, 200)
	if v.Yearly != 1.07 {
		t.Fatalf("yearly = %v, want unchanged", v.Yearly)
	}
}

func TestEditGainDegenerateIsNoop(t *testing.T) {
	mem := store.NewMemory()
	_ = mem.Set(KeyYearly, "1")
	g, err := New(mem, DefaultValues)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Edit(GainID(compound.Monthly), "50"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if g.Values().Amount != 100 {
		t.Fatalf("amount = %v, want unchanged 100", g.Values().Amount)
	}
	if _, ok, _ := mem.Get(KeyAmount); ok {
		t.Fatal("degenerate edit was persisted")
	}
}

func TestInvalidEditThenBlurReverts(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Edit(IDAmount, "2+"); err != nil {
		t.Fatalf("Edit returned evaluation error: %v", err)
	}
	view := textOf(t, g, IDAmount)
	if !view.IsError || view.Text != "2+" {
		t.Fatalf("view = %+v, want error with raw text", view)
	}
	if g.Err(IDAmount) == nil {
		t.Fatal("Err(amount) = nil during invalid edit")
	}
	if g.Values().Amount != 100 {
		t.Fatalf("amount changed on invalid edit: %v", g.Values().Amount)
	}

	g.Blur(IDAmount)
	view = textOf(t, g, IDAmount)
	if view.IsError || view.Text != "100" || view.Focused {
		t.Fatalf("view after blur = %+v", view)
	}
}

func TestFocusMovesBetweenFields(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Focus(IDAmount); err != nil {
		t.Fatal(err)
	}
	if err := g.Focus(RateID(compound.Yearly)); err != nil {
		t.Fatal(err)
	}
	if textOf(t, g, IDAmount).Focused {
		t.Fatal("amount still focused")
	}
	if g.Focused() != RateID(compound.Yearly) {
		t.Fatalf("Focused() = %q", g.Focused())
	}
}

func TestReadOnlyAndUnknownFields(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Edit(IDCalculated, "5"); !errors.Is(err, field.ErrReadOnly) {
		t.Fatalf("Edit(calculated) = %v, want ErrReadOnly", err)
	}
	if err := g.Focus("weekly"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Focus(weekly) = %v, want ErrUnknownField", err)
	}
}

func TestSetRatesReevaluatesFocused(t *testing.T) {
	g, _ := newGraph(t)
	if err := g.Edit(IDAmount, "10 * EUR"); err != nil {
		t.Fatal(err)
	}
	if !textOf(t, g, IDAmount).IsError {
		t.Fatal("unknown code should flag the field")
	}

	tbl := currency.NewTable("USD", time.Now(), map[string]string{"EUR": "0.5"})
	if err := g.SetRates(tbl); err != nil {
		t.Fatalf("SetRates: %v", err)
	}
	if textOf(t, g, IDAmount).IsError {
		t.Fatal("field still flagged after rates arrived")
	}
	near(t, "amount", g.Values().Amount, 5)
}

func TestSetRatesWithoutFocus(t *testing.T) {
	g, _ := newGraph(t)
	tbl := currency.NewTable("USD", time.Now(), map[string]string{"EUR": "0.5"})
	if err := g.SetRates(tbl); err != nil {
		t.Fatal(err)
	}
	if g.Values().Amount != 100 {
		t.Fatal("SetRates changed an unfocused graph")
	}
	if g.Rates().Len() != 1 {
		t.Fatal("Rates() not updated")
	}
}

type failingStore struct{ *store.Memory }

func (failingStore) Set(string, string) error { return errors.New("disk full") }

func TestEditReportsPersistFailure(t *testing.T) {
	g, err := New(failingStore{store.NewMemory()}, DefaultValues)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Edit(IDAmount, "42"); err == nil {
		t.Fatal("Edit did not report write failure")
	}
	if g.Values().Amount != 42 {
		t.Fatalf("amount = %v, want in-memory 42", g.Values().Amount)
	}
}

func TestViewsOrder(t *testing.T) {
	g, _ := newGraph(t)
	views := g.Views()
	ids := IDs()
	if len(views) != len(ids) || len(ids) != 12 {
		t.Fatalf("len(Views) = %d, len(IDs) = %d", len(views), len(ids))
	}
	for i := range ids {
		if views[i].ID != ids[i] {
			t.Fatalf("Views()[%d] = %s, want %s", i, views[i].ID, ids[i])
		}
	}
	if !views[1].ReadOnly {
		t.Fatal("calculated view not read-only")
	}
	if Editable(IDCalculated) || !Editable(IDAmount) {
		t.Fatal("Editable mismatch")
	}
}
