package expr

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluateBlankIsZero(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		got, err := Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate(%q) error: %v", in, err)
		}
		if got != 0 {
			t.Fatalf("Evaluate(%q) = %v, want 0", in, got)
		}
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2+2", 4},
		{"7", 7},
		{"-3 + 1", -2},
		{"2 * (3 + 4)", 14},
		{"10 / 4", 2.5},
		{"2^10", 1024},
		{"2**3", 8},
		{"2 * 3 ^ 2", 18},
		{"100 * (1.0)", 100},
		{"1.07^(1/12)", math.Pow(1.07, 1.0/12)},
		{"-2^2", -4},
		{"2^3^2", 512},
		{"-1.5^2", -2.25},
		{"2**3**2", 512},
		{"(-2)^2", 4},
		{"2^-1", 0.5},
		{"2 ^ -1 * 4", 2},
		{"10 - 2^2", 6},
		{"2^3 * 4", 32},
	}
	for _, c := range cases {
		got, err := Evaluate(c.in)
		if err != nil {
			t.Fatalf("Evaluate(%q) error: %v", c.in, err)
		}
		if math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Evaluate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	for _, in := range []string{
		"2+",
		"(1",
		"abc",
		"100 (1.0)",
		"1/0",
		"true",
		`"text"`,
	} {
		_, err := Evaluate(in)
		if err == nil {
			t.Fatalf("Evaluate(%q) succeeded, want error", in)
		}
		var evalErr *EvalError
		if !errors.As(err, &evalErr) {
			t.Fatalf("Evaluate(%q) error = %T, want *EvalError", in, err)
		}
		if evalErr.Input != in {
			t.Fatalf("EvalError.Input = %q, want %q", evalErr.Input, in)
		}
	}
}
