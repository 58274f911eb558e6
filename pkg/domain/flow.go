package domain

import "strings"

// Trigger types. A keyword trigger starts the flow when the inbound message
// equals the keyword (case-insensitive); a message trigger matches any
// non-empty text; an always trigger is reserved for programmatic starts and
// never matches inbound traffic on its own.
const (
	TriggerAlways  = "always"
	TriggerKeyword = "keyword"
	TriggerMessage = "message"
)

// Trigger describes how a flow is entered.
type Trigger struct {
	Type    string `json:"type" yaml:"type"`
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// Flow is a directed graph of nodes representing one conversational
// procedure. Flows are authored externally and read-only at runtime.
type Flow struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Trigger     Trigger `json:"trigger" yaml:"trigger"`
	EntryNodeID string  `json:"entry" yaml:"entry"`
	Nodes       []Node  `json:"nodes" yaml:"nodes"`

	// ErrorMessage is sent when a node fails and the flow aborts. Empty
	// means the engine's generic apology.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// CancelMessage is sent when the counterpart abandons the flow with a
	// cancel keyword.
	CancelMessage string `json:"cancel_message,omitempty" yaml:"cancel_message,omitempty"`

	// MaxAttempts bounds consecutive rejected inputs on a collecting node
	// before the flow aborts. Zero means the engine default.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (f *Flow) NodeByID(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// MatchesTrigger reports whether an inbound message should start this flow.
func (f *Flow) MatchesTrigger(text string) bool {
	text = strings.TrimSpace(text)
	switch f.Trigger.Type {
	case TriggerKeyword:
		return strings.EqualFold(text, f.Trigger.Keyword)
	case TriggerMessage:
		return text != ""
	default:
		return false
	}
}
