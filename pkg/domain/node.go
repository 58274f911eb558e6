package domain

// Node type tags. The set is closed: the engine dispatches over a fixed
// table of exactly these six executors, so a flow authored with any other
// tag fails validation instead of silently doing nothing.
const (
	NodeAPICall   = "api_call"
	NodeCollect   = "conversational_collect"
	NodeResponse  = "conversational_response"
	NodeFilter    = "filter"
	NodeTransform = "gpt_transform"
	NodePayment   = "mercadopago_payment"
)

// Edge labels for filter branches. Non-filter nodes use a single unlabeled
// edge.
const (
	EdgeTrue  = "true"
	EdgeFalse = "false"
)

// Node is one step in a flow graph. Config carries the raw authored
// configuration; each executor decodes the fields it understands.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
	Edges  []Edge         `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Edge is a directed connection to another node. When is empty for the
// default edge, or EdgeTrue/EdgeFalse on the outgoing edges of a filter.
type Edge struct {
	Target string `json:"target" yaml:"target"`
	When   string `json:"when,omitempty" yaml:"when,omitempty"`
}

// Next resolves the outgoing edge for the given label, falling back to the
// first unlabeled edge. An empty return means the flow ends here.
func (n *Node) Next(label string) string {
	for _, e := range n.Edges {
		if e.When == label {
			return e.Target
		}
	}
	if label != "" {
		for _, e := range n.Edges {
			if e.When == "" {
				return e.Target
			}
		}
	}
	return ""
}
