// Package domain contains the core types of the Cauce engine: conversation
// sessions, flow graphs, node configurations, and execution results.
//
// The types here are pure data. Behavior lives in internal/runtime; storage
// lives behind the interfaces in pkg/ports.
package domain
