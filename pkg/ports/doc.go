// Package ports defines the interfaces between the engine core and its
// collaborators: session persistence, flow definitions, distributed locking,
// and the external services the node executors call.
//
// The engine only ever talks to these interfaces; the adapters under
// pkg/adapters provide the concrete implementations.
package ports
