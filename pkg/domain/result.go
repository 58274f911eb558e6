package domain

// Result is the outcome of one node execution. It is constructed fresh by
// every executor invocation and consumed immediately by the engine.
//
// Variables is the full replacement snapshot: on success the engine swaps it
// in wholesale, so executors must copy the incoming snapshot before adding
// to it.
type Result struct {
	Success         bool
	Variables       map[string]any
	Response        string
	WaitingForInput bool
	Err             string
}
