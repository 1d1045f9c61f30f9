// Package field tracks the text a user is typing into one calculator field
// and decides whether the raw text or the formatted value is shown.
package field

import (
	"errors"
	"strconv"

	"github.com/theirongolddev/ratecalc/internal/compound"
	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/expr"
)

var (
	ErrReadOnly   = errors.New("field: read-only")
	ErrNotFocused = errors.New("field: not focused")
)

// Field is a state machine with two states. Unfocused shows the formatted
// canonical value; Focused shows the raw buffer.
type Field struct {
	ID       string
	Percent  bool // canonical is a growth factor shown as a percentage
	ReadOnly bool

	focused bool
	raw     string
	err     error
}

// New returns an unfocused field.
func New(id string, percent, readOnly bool) *Field {
	return &Field{ID: id, Percent: percent, ReadOnly: readOnly}
}

// Format renders v as its shortest round-trip decimal form.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f *Field) encode(canonical float64) float64 {
	if f.Percent {
		return compound.ToPercent(canonical)
	}
	return canonical
}

func (f *Field) decode(shown float64) float64 {
	if f.Percent {
		return compound.FromPercent(shown)
	}
	return shown
}

// Focus enters the Focused state with the buffer seeded from canonical.
// Focusing an already-focused field keeps its buffer.
func (f *Field) Focus(canonical float64) error {
	if f.ReadOnly {
		return ErrReadOnly
	}
	if f.focused {
		return nil
	}
	f.focused = true
	f.raw = Format(f.encode(canonical))
	f.err = nil
	return nil
}

// Input replaces the buffer and evaluates it. On success the decoded
// canonical value is returned; on failure the error is kept for display.
func (f *Field) Input(raw string, table currency.Table) (float64, error) {
	if f.ReadOnly {
		return 0, ErrReadOnly
	}
	if !f.focused {
		return 0, ErrNotFocused
	}
	f.raw = raw
	return f.Reevaluate(table)
}

// Reevaluate evaluates the current buffer again, typically after the rate
// table changed.
func (f *Field) Reevaluate(table currency.Table) (float64, error) {
	if !f.focused {
		return 0, ErrNotFocused
	}
	v, err := expr.Evaluate(table.Substitute(f.raw))
	if err != nil {
		f.err = err
		return 0, err
	}
	f.err = nil
	return f.decode(v), nil
}

// Blur leaves the Focused state, dropping the buffer and any error.
func (f *Field) Blur() {
	f.focused = false
	f.raw = ""
	f.err = nil
}

// Display is the text shown for the field given its canonical value.
func (f *Field) Display(canonical float64) string {
	if f.focused {
		return f.raw
	}
	return Format(f.encode(canonical))
}

func (f *Field) Focused() bool { return f.focused }
func (f *Field) IsError() bool { return f.focused && f.err != nil }
func (f *Field) Err() error    { return f.err }
