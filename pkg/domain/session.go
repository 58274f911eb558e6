package domain

import "time"

// Identity is the composite key of a conversation: the tenant that owns the
// flow and the counterpart's WhatsApp address. It is stable for the whole
// lifetime of the conversation.
type Identity struct {
	TenantID string `json:"tenant_id"`
	Address  string `json:"address"`
}

// Key returns the canonical string form used by stores and lockers.
func (id Identity) Key() string {
	return id.TenantID + ":" + id.Address
}

// Session is the persisted execution state of one conversation.
//
// A session is idle when ActiveFlowID is empty. While a flow is running,
// CurrentNodeID points into the flow graph and WaitingForInput reports
// whether the engine is suspended until the next inbound message.
type Session struct {
	Identity Identity `json:"identity"`

	ActiveFlowID  string `json:"active_flow_id,omitempty"`
	CurrentNodeID string `json:"current_node_id,omitempty"`

	// Variables is the accumulated variable snapshot. Executors receive it
	// whole and return a full replacement; keys are only ever added or
	// overwritten, never silently dropped by a node.
	Variables map[string]any `json:"variables"`

	WaitingForInput bool `json:"waiting_for_input"`

	// FailedAttempts counts consecutive rejected inputs for the node the
	// session is waiting on. Reset on every successful step.
	FailedAttempts int `json:"failed_attempts,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an idle session for the given identity.
func NewSession(id Identity) *Session {
	now := time.Now().UTC()
	return &Session{
		Identity:  id,
		Variables: make(map[string]any),
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Idle reports whether no flow is currently executing.
func (s *Session) Idle() bool {
	return s.ActiveFlowID == ""
}

// Clone returns a copy with its own Variables map, so callers can mutate the
// copy without aliasing the stored session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Variables = make(map[string]any, len(s.Variables))
	for k, v := range s.Variables {
		next.Variables[k] = v
	}
	return &next
}

// Reset returns the session to idle, discarding flow position and variables.
func (s *Session) Reset() {
	s.ActiveFlowID = ""
	s.CurrentNodeID = ""
	s.Variables = make(map[string]any)
	s.WaitingForInput = false
	s.FailedAttempts = 0
	s.UpdatedAt = time.Now().UTC()
}
