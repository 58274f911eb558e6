package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var errBadExpression = errors.New("invalid amount expression")

// ResolveAmount computes a payment amount from a literal number, a numeric
// string, or a restricted arithmetic expression over digits, + - * / ( ) .
// and whitespace. Expressions containing any other character, and
// expressions that do not parse, fall back to reading a leading float from
// the string, so a tenant's config mistake degrades to a number instead of
// being evaluated.
func ResolveAmount(raw any, vars map[string]any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		expr := InterpolateString(v, vars)
		if allowedExpression(expr) {
			if f, err := evalArithmetic(expr); err == nil {
				return f, nil
			}
		}
		f, ok := leadingFloat(expr)
		if !ok {
			return 0, fmt.Errorf("amount %q is not numeric", expr)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("amount has unsupported type %T", raw)
	}
}

func allowedExpression(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '*' || r == '/':
		case r == '(' || r == ')' || r == '.':
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// leadingFloat reads an optional sign and a decimal number from the start of
// the string, ignoring leading whitespace and everything after the number.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := false
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits = true
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits = true
		}
	}
	if !digits {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// evalArithmetic is a hand-written recursive descent evaluator. It never
// delegates to a general expression engine.
func evalArithmetic(s string) (float64, error) {
	p := &exprParser{input: s}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, errBadExpression
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errBadExpression
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) factor() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.factor()
		return -v, err
	case '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errBadExpression
		}
		p.pos++
		return v, nil
	default:
		return p.number()
	}
}

func (p *exprParser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, errBadExpression
	}
	f, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, errBadExpression
	}
	return f, nil
}
