// Package expr evaluates the arithmetic typed into rate and amount fields.
package expr

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PaesslerAG/gval"
)

// EvalError reports text that could not be reduced to a finite number.
type EvalError struct {
	Input  string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expr: cannot evaluate %q: %s", e.Input, e.Reason)
}

// language is arithmetic only: + - * / with unary minus, parentheses and
// power written as either ^ or **. Power binds tighter than unary minus and
// groups to the right, so -2^2 is -4 and 2^3^2 is 512.
var language = gval.NewLanguage(
	gval.Arithmetic(),
	gval.PrefixExtension('-', parseNegation),
	gval.PostfixOperator("^", parseExponent),
	gval.PostfixOperator("**", parseExponent),
	// The parser joins adjacent symbols, so 2^-1 arrives as "^-".
	gval.PostfixOperator("^-", parseNegativeExponent),
	gval.PostfixOperator("**-", parseNegativeExponent),
	gval.Precedence("^", 200),
	gval.Precedence("**", 200),
	gval.Precedence("^-", 200),
	gval.Precedence("**-", 200),
)

// parsePowerOperand parses one operand together with any power chain that
// follows it. A leading minus is handled by parseNegation.
func parsePowerOperand(c context.Context, p *gval.Parser) (gval.Evaluable, error) {
	base, err := p.ParseNextExpression(c)
	if err != nil {
		return nil, err
	}
	switch p.Scan() {
	case '^':
	case '*':
		if p.Peek() != '*' {
			p.Camouflage("operator")
			return base, nil
		}
		p.Next()
	default:
		p.Camouflage("operator")
		return base, nil
	}
	exp, err := parsePowerOperand(c, p)
	if err != nil {
		return nil, err
	}
	return power(base, exp), nil
}

func parseNegation(c context.Context, p *gval.Parser) (gval.Evaluable, error) {
	x, err := parsePowerOperand(c, p)
	if err != nil {
		return nil, err
	}
	return negate(x), nil
}

func parseExponent(c context.Context, p *gval.Parser, base gval.Evaluable) (gval.Evaluable, error) {
	exp, err := parsePowerOperand(c, p)
	if err != nil {
		return nil, err
	}
	return power(base, exp), nil
}

func parseNegativeExponent(c context.Context, p *gval.Parser, base gval.Evaluable) (gval.Evaluable, error) {
	exp, err := parseNegation(c, p)
	if err != nil {
		return nil, err
	}
	return power(base, exp), nil
}

func power(base, exp gval.Evaluable) gval.Evaluable {
	return func(c context.Context, v interface{}) (interface{}, error) {
		a, err := base.EvalFloat64(c, v)
		if err != nil {
			return nil, err
		}
		b, err := exp.EvalFloat64(c, v)
		if err != nil {
			return nil, err
		}
		return math.Pow(a, b), nil
	}
}

func negate(x gval.Evaluable) gval.Evaluable {
	return func(c context.Context, v interface{}) (interface{}, error) {
		a, err := x.EvalFloat64(c, v)
		if err != nil {
			return nil, err
		}
		return -a, nil
	}
}

// Evaluate reduces text to a number. Blank input is zero.
func Evaluate(text string) (v float64, err error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = 0, &EvalError{Input: text, Reason: fmt.Sprint(r)}
		}
	}()

	eval, err := language.NewEvaluable(text)
	if err != nil {
		return 0, &EvalError{Input: text, Reason: err.Error()}
	}
	// No parameters: any identifier left in the text is unknown.
	out, err := eval(context.Background(), nil)
	if err != nil {
		return 0, &EvalError{Input: text, Reason: err.Error()}
	}

	f, ok := out.(float64)
	if !ok {
		return 0, &EvalError{Input: text, Reason: fmt.Sprintf("result %v is not a number", out)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &EvalError{Input: text, Reason: "result is not finite"}
	}
	return f, nil
}
