package runtime

import (
	"testing"
)

func TestResolveAmount(t *testing.T) {
	vars := map[string]any{
		"precio":   100.0,
		"cantidad": 3.0,
		"texto":    "abc",
	}

	cases := []struct {
		name    string
		in      any
		want    float64
		wantErr bool
	}{
		{"literal number", 150.0, 150, false},
		{"literal int", 80, 80, false},
		{"numeric string", "99.90", 99.9, false},
		{"interpolated product", "{{precio}} * {{cantidad}}", 300, false},
		{"parenthesized", "(100 + 1) * 2", 202, false},
		{"precedence", "2 + 3 * 4", 14, false},
		{"unary minus", "-(2 - 5)", 3, false},
		{"unbalanced falls back to prefix", "100 + 1) * 2", 100, false},
		{"letters fall back to prefix", "100 pesos", 100, false},
		{"letters before digits fail", "abc", 0, true},
		{"interpolated non-numeric", "{{texto}}", 0, true},
		{"division by zero rejected by parser", "10 / 0", 10, false},
		{"unsupported type", []any{1}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveAmount(tc.in, vars)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ResolveAmount(%v) expected error, got %v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveAmount(%v) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ResolveAmount(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEvalArithmeticRejectsLeftovers(t *testing.T) {
	for _, expr := range []string{"1 +", "* 3", "()", "1 2", "((1)"} {
		if _, err := evalArithmetic(expr); err == nil {
			t.Errorf("evalArithmetic(%q) expected error", expr)
		}
	}
}
