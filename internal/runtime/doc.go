// Package runtime implements the conversational flow interpreter: the
// variable interpolator, condition evaluator, the six node executors, and
// the engine that steps sessions through flow graphs across inbound
// messages.
package runtime
