// Package session serializes access to conversation state.
//
// The Manager wraps a ports.SessionStore with a per-identity mutex so that
// two inbound messages for the same conversation never execute overlapping
// node transitions. Lock entries are reference-counted and garbage collected
// when the last holder releases them, so idle conversations cost nothing.
package session
