package runtime

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cauceflow/cauce/pkg/domain"
)

// Evaluate applies a filter's conditions against the variable snapshot.
// AND over an empty list is true, OR over an empty list is false.
func Evaluate(conditions []domain.Condition, logic string, vars map[string]any) bool {
	if len(conditions) == 0 {
		return logic != domain.LogicOr
	}
	if logic == domain.LogicOr {
		for _, c := range conditions {
			if evalCondition(c, vars) {
				return true
			}
		}
		return false
	}
	for _, c := range conditions {
		if !evalCondition(c, vars) {
			return false
		}
	}
	return true
}

func evalCondition(c domain.Condition, vars map[string]any) bool {
	raw, str, resolved := resolveField(c.Field, vars)
	valStr := Stringify(c.Value)

	switch c.Operator {
	case domain.OpEqual:
		return looseEqual(str, c.Value)
	case domain.OpNotEqual:
		return !looseEqual(str, c.Value)
	case domain.OpGreaterThan:
		a, b := toNumber(str), toNumberAny(c.Value)
		return !math.IsNaN(a) && !math.IsNaN(b) && a > b
	case domain.OpLessThan:
		a, b := toNumber(str), toNumberAny(c.Value)
		return !math.IsNaN(a) && !math.IsNaN(b) && a < b
	case domain.OpGreaterOrEqual:
		a, b := toNumber(str), toNumberAny(c.Value)
		return !math.IsNaN(a) && !math.IsNaN(b) && a >= b
	case domain.OpLessOrEqual:
		a, b := toNumber(str), toNumberAny(c.Value)
		return !math.IsNaN(a) && !math.IsNaN(b) && a <= b
	case domain.OpContains:
		return strings.Contains(strings.ToLower(str), strings.ToLower(valStr))
	case domain.OpNotContains:
		return !strings.Contains(strings.ToLower(str), strings.ToLower(valStr))
	case domain.OpStartsWith:
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(valStr))
	case domain.OpEndsWith:
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(valStr))
	case domain.OpIsEmpty:
		return isEmpty(raw, str, resolved)
	case domain.OpNotEmpty:
		return !isEmpty(raw, str, resolved)
	case domain.OpRegex:
		re, err := regexp.Compile(valStr)
		if err != nil {
			return false
		}
		return re.MatchString(str)
	default:
		return false
	}
}

// resolveField interpolates the field expression. When the field is exactly
// one {{name}} token the raw variable value is also returned, so emptiness
// checks can see lists and booleans rather than their string forms.
func resolveField(field string, vars map[string]any) (raw any, str string, resolved bool) {
	m := tokenPattern.FindStringSubmatch(field)
	if m != nil && m[0] == strings.TrimSpace(field) {
		if v, ok := LookupPath(vars, m[1]); ok {
			return v, Stringify(v), true
		}
		return nil, field, false
	}
	return nil, InterpolateString(field, vars), false
}

// looseEqual compares numerically when both sides parse as numbers, falling
// back to comparing stringified forms.
func looseEqual(fieldStr string, value any) bool {
	a, b := toNumber(fieldStr), toNumberAny(value)
	if !math.IsNaN(a) && !math.IsNaN(b) {
		return a == b
	}
	return fieldStr == Stringify(value)
}

func toNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toNumberAny(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return toNumber(x)
	default:
		return math.NaN()
	}
}

func isEmpty(raw any, str string, resolved bool) bool {
	if resolved {
		switch x := raw.(type) {
		case nil:
			return true
		case bool:
			return !x
		case float64:
			return x == 0
		case int:
			return x == 0
		case string:
			return strings.TrimSpace(x) == ""
		case []any:
			return len(x) == 0
		case map[string]any:
			return len(x) == 0
		}
	}
	return strings.TrimSpace(str) == ""
}
