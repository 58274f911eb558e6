package dsl

import (
	"github.com/cauceflow/cauce/pkg/adapters/fileflow"
	"github.com/cauceflow/cauce/pkg/domain"
)

// FlowBuilder accumulates a flow graph. Nodes keep the order they were
// added in; the first node is the entry unless Entry overrides it.
type FlowBuilder struct {
	flow  domain.Flow
	nodes []*NodeBuilder
	byID  map[string]*NodeBuilder
}

// Flow starts a new builder for the given flow id.
func Flow(id string) *FlowBuilder {
	return &FlowBuilder{
		flow: domain.Flow{ID: id},
		byID: make(map[string]*NodeBuilder),
	}
}

// Name sets the human-readable flow name.
func (b *FlowBuilder) Name(name string) *FlowBuilder {
	b.flow.Name = name
	return b
}

// OnKeyword makes the flow start when the inbound message equals the
// keyword, case-insensitively.
func (b *FlowBuilder) OnKeyword(keyword string) *FlowBuilder {
	b.flow.Trigger = domain.Trigger{Type: domain.TriggerKeyword, Keyword: keyword}
	return b
}

// OnAnyMessage makes the flow start on any non-empty inbound message.
func (b *FlowBuilder) OnAnyMessage() *FlowBuilder {
	b.flow.Trigger = domain.Trigger{Type: domain.TriggerMessage}
	return b
}

// OnError sets the message sent when the flow aborts on a node failure.
func (b *FlowBuilder) OnError(msg string) *FlowBuilder {
	b.flow.ErrorMessage = msg
	return b
}

// OnCancel sets the message sent when the counterpart abandons the flow.
func (b *FlowBuilder) OnCancel(msg string) *FlowBuilder {
	b.flow.CancelMessage = msg
	return b
}

// MaxAttempts bounds consecutive rejected inputs before the flow aborts.
func (b *FlowBuilder) MaxAttempts(n int) *FlowBuilder {
	b.flow.MaxAttempts = n
	return b
}

// Entry overrides the entry node. Without it the first node added wins.
func (b *FlowBuilder) Entry(id string) *FlowBuilder {
	b.flow.EntryNodeID = id
	return b
}

// Node adds a node of an arbitrary type. If a node with the id already
// exists its builder is returned instead.
func (b *FlowBuilder) Node(id, nodeType string) *NodeBuilder {
	if nb, ok := b.byID[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.Node{
		ID:     id,
		Type:   nodeType,
		Config: make(map[string]any),
	}}
	b.nodes = append(b.nodes, nb)
	b.byID[id] = nb
	return nb
}

// Collect adds a node that asks a question and stores the validated reply.
func (b *FlowBuilder) Collect(id, question, variable string) *NodeBuilder {
	return b.Node(id, domain.NodeCollect).
		Config("pregunta", question).
		Config("variable", variable)
}

// Respond adds a node that sends a message.
func (b *FlowBuilder) Respond(id, message string) *NodeBuilder {
	return b.Node(id, domain.NodeResponse).Config("mensaje", message)
}

// APICall adds a node that invokes a configured HTTP endpoint.
func (b *FlowBuilder) APICall(id, endpointID string) *NodeBuilder {
	return b.Node(id, domain.NodeAPICall).Config("endpointId", endpointID)
}

// Filter adds a branching node. Conditions go in via Config.
func (b *FlowBuilder) Filter(id string) *NodeBuilder {
	return b.Node(id, domain.NodeFilter)
}

// Transform adds a node that sends a prompt to the language model.
func (b *FlowBuilder) Transform(id, prompt string) *NodeBuilder {
	return b.Node(id, domain.NodeTransform).Config("prompt", prompt)
}

// Payment adds a node that generates a payment link for the amount.
func (b *FlowBuilder) Payment(id string, amount any) *NodeBuilder {
	return b.Node(id, domain.NodePayment).Config("amount", amount)
}

// Build compiles and validates the flow.
func (b *FlowBuilder) Build() (*domain.Flow, error) {
	f := b.flow
	f.Nodes = make([]domain.Node, len(b.nodes))
	for i, nb := range b.nodes {
		f.Nodes[i] = nb.node
	}
	if f.EntryNodeID == "" && len(f.Nodes) > 0 {
		f.EntryNodeID = f.Nodes[0].ID
	}
	if err := fileflow.Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// MustBuild is Build for static graphs, panicking on validation errors.
func (b *FlowBuilder) MustBuild() *domain.Flow {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}

// NodeBuilder configures a single node.
type NodeBuilder struct {
	node domain.Node
}

// Config sets one configuration key on the node.
func (n *NodeBuilder) Config(key string, value any) *NodeBuilder {
	n.node.Config[key] = value
	return n
}

// Then adds the default outgoing edge.
func (n *NodeBuilder) Then(target string) *NodeBuilder {
	n.node.Edges = append(n.node.Edges, domain.Edge{Target: target})
	return n
}

// OnTrue adds the edge taken when a filter passes.
func (n *NodeBuilder) OnTrue(target string) *NodeBuilder {
	n.node.Edges = append(n.node.Edges, domain.Edge{Target: target, When: domain.EdgeTrue})
	return n
}

// OnFalse adds the edge taken when a filter rejects.
func (n *NodeBuilder) OnFalse(target string) *NodeBuilder {
	n.node.Edges = append(n.node.Edges, domain.Edge{Target: target, When: domain.EdgeFalse})
	return n
}
