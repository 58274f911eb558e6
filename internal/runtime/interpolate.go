package runtime

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches {{name}} placeholders. Dotted names walk nested maps.
var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`)

// Interpolate substitutes {{name}} tokens recursively. Strings are scanned
// for tokens, lists and maps are interpolated element-wise, everything else
// passes through. Tokens for undefined names are left verbatim.
func Interpolate(value any, vars map[string]any) any {
	switch v := value.(type) {
	case string:
		return InterpolateString(v, vars)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Interpolate(item, vars)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Interpolate(item, vars)
		}
		return out
	default:
		return value
	}
}

// InterpolateString replaces every {{name}} occurrence with the stringified
// variable value, leaving tokens for missing names untouched.
func InterpolateString(s string, vars map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		if v, ok := LookupPath(vars, name); ok {
			return Stringify(v)
		}
		return token
	})
}

// LookupPath resolves a possibly dotted name against the variable snapshot,
// walking nested maps segment by segment.
func LookupPath(vars map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = vars
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Stringify renders a variable value for embedding in outbound text.
// Numbers avoid exponent notation and trailing zeros; structured values are
// serialized as JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
