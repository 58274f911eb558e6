package runtime

import (
	"testing"

	"github.com/cauceflow/cauce/pkg/domain"
)

func TestEvaluateIdentityElements(t *testing.T) {
	vars := map[string]any{}
	if !Evaluate(nil, domain.LogicAnd, vars) {
		t.Error("AND over empty conditions should be true")
	}
	if Evaluate(nil, domain.LogicOr, vars) {
		t.Error("OR over empty conditions should be false")
	}
}

func TestEvaluateOperators(t *testing.T) {
	vars := map[string]any{
		"age":    20.0,
		"name":   "María López",
		"email":  "ana@tienda.com",
		"vacio":  "   ",
		"items":  []any{},
		"activo": false,
	}

	cond := func(f, op string, v any) []domain.Condition {
		return []domain.Condition{{Field: f, Operator: op, Value: v}}
	}

	cases := []struct {
		name  string
		conds []domain.Condition
		want  bool
	}{
		{"greater_than numeric", cond("{{age}}", domain.OpGreaterThan, 18), true},
		{"greater_than nan is false", cond("abc", domain.OpGreaterThan, 18), false},
		{"less_than", cond("{{age}}", domain.OpLessThan, 18), false},
		{"greater_or_equal boundary", cond("{{age}}", domain.OpGreaterOrEqual, 20), true},
		{"less_or_equal", cond("{{age}}", domain.OpLessOrEqual, 19.5), false},
		{"equal numeric string", cond("{{age}}", domain.OpEqual, "20"), true},
		{"equal string", cond("{{name}}", domain.OpEqual, "María López"), true},
		{"not_equal", cond("{{name}}", domain.OpNotEqual, "Otra"), true},
		{"contains case-insensitive", cond("{{name}}", domain.OpContains, "LÓPEZ"), true},
		{"not_contains", cond("{{name}}", domain.OpNotContains, "pérez"), true},
		{"starts_with", cond("{{email}}", domain.OpStartsWith, "ANA@"), true},
		{"ends_with", cond("{{email}}", domain.OpEndsWith, ".COM"), true},
		{"is_empty whitespace", cond("{{vacio}}", domain.OpIsEmpty, nil), true},
		{"is_empty list", cond("{{items}}", domain.OpIsEmpty, nil), true},
		{"is_empty false bool", cond("{{activo}}", domain.OpIsEmpty, nil), true},
		{"not_empty", cond("{{name}}", domain.OpNotEmpty, nil), true},
		{"is_empty missing var token stays", cond("{{nadie}}", domain.OpIsEmpty, nil), false},
		{"regex match", cond("{{email}}", domain.OpRegex, `^[a-z]+@`), true},
		{"regex invalid pattern is false", cond("{{email}}", domain.OpRegex, `([`), false},
		{"unknown operator is false", cond("{{name}}", "approx", "x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.conds, domain.LogicAnd, vars); got != tc.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestEvaluateCombinators(t *testing.T) {
	vars := map[string]any{"a": 1.0, "b": 2.0}
	conds := []domain.Condition{
		{Field: "{{a}}", Operator: domain.OpEqual, Value: 1},
		{Field: "{{b}}", Operator: domain.OpEqual, Value: 99},
	}
	if Evaluate(conds, domain.LogicAnd, vars) {
		t.Error("AND with one false condition should be false")
	}
	if !Evaluate(conds, domain.LogicOr, vars) {
		t.Error("OR with one true condition should be true")
	}
}
