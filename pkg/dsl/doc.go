// Package dsl provides a fluent builder for constructing flows in Go code,
// as an alternative to authoring them in YAML. It is mostly useful in tests
// and embedded setups where the flow graph is known at compile time.
package dsl
