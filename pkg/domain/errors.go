package domain

import "errors"

// ErrSessionNotFound is returned when an identity has no persisted session.
var ErrSessionNotFound = errors.New("session not found")

// ErrFlowNotFound is returned when a flow ID cannot be resolved.
var ErrFlowNotFound = errors.New("flow not found")

// ErrNodeNotFound is returned when a session points at a node that no longer
// exists in its flow.
var ErrNodeNotFound = errors.New("node not found")

// ErrUnknownNodeType is returned for a node type outside the closed set.
var ErrUnknownNodeType = errors.New("unknown node type")
