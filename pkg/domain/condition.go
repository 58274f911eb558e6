package domain

// Filter operators. Semantics follow the authoring tool's contract:
// comparisons coerce both sides to numbers (NaN compares false), the
// substring family is case-insensitive on stringified operands, and an
// invalid regex evaluates to false rather than failing the node.
const (
	OpEqual          = "equal"
	OpNotEqual       = "not_equal"
	OpGreaterThan    = "greater_than"
	OpLessThan       = "less_than"
	OpGreaterOrEqual = "greater_or_equal"
	OpLessOrEqual    = "less_or_equal"
	OpContains       = "contains"
	OpNotContains    = "not_contains"
	OpStartsWith     = "starts_with"
	OpEndsWith       = "ends_with"
	OpIsEmpty        = "is_empty"
	OpNotEmpty       = "not_empty"
	OpRegex          = "regex"
)

// Condition combinators.
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// Condition is one predicate of a filter node. Field may be a literal or a
// {{variable}} reference resolved against the session variables.
type Condition struct {
	Field    string `json:"field" yaml:"field" mapstructure:"field"`
	Operator string `json:"operator" yaml:"operator" mapstructure:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}
