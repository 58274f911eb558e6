package fileflow

import (
	"fmt"

	"github.com/cauceflow/cauce/pkg/domain"
)

var knownNodeTypes = map[string]bool{
	domain.NodeAPICall:   true,
	domain.NodeCollect:   true,
	domain.NodeResponse:  true,
	domain.NodeFilter:    true,
	domain.NodeTransform: true,
	domain.NodePayment:   true,
}

// Validate checks the structural integrity of a flow: the entry node and
// every edge target must exist, and every node type must be one of the six
// the engine can execute.
func Validate(f *domain.Flow) error {
	if f.EntryNodeID == "" {
		return fmt.Errorf("flow %q has no entry node", f.ID)
	}
	if len(f.Nodes) == 0 {
		return fmt.Errorf("flow %q has no nodes", f.ID)
	}

	byID := make(map[string]bool, len(f.Nodes))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("flow %q has a node without id", f.ID)
		}
		if byID[n.ID] {
			return fmt.Errorf("flow %q has duplicate node id %q", f.ID, n.ID)
		}
		byID[n.ID] = true
		if !knownNodeTypes[n.Type] {
			return fmt.Errorf("flow %q node %q has unknown type %q", f.ID, n.ID, n.Type)
		}
	}

	if !byID[f.EntryNodeID] {
		return fmt.Errorf("flow %q entry node %q does not exist", f.ID, f.EntryNodeID)
	}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		for _, e := range n.Edges {
			if !byID[e.Target] {
				return fmt.Errorf("flow %q node %q has edge to missing node %q", f.ID, n.ID, e.Target)
			}
			if e.When != "" && e.When != domain.EdgeTrue && e.When != domain.EdgeFalse {
				return fmt.Errorf("flow %q node %q has edge with unknown label %q", f.ID, n.ID, e.When)
			}
		}
	}

	switch f.Trigger.Type {
	case "", domain.TriggerAlways, domain.TriggerMessage:
	case domain.TriggerKeyword:
		if f.Trigger.Keyword == "" {
			return fmt.Errorf("flow %q has a keyword trigger without keyword", f.ID)
		}
	default:
		return fmt.Errorf("flow %q has unknown trigger type %q", f.ID, f.Trigger.Type)
	}
	return nil
}
