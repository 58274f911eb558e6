package memory

import (
	"context"
	"sync"

	"github.com/cauceflow/cauce/pkg/domain"
)

// FlowSource implements ports.FlowSource over a fixed set of flows.
type FlowSource struct {
	mu    sync.RWMutex
	flows map[string]*domain.Flow
	order []string
}

// NewFlowSource creates a flow source preloaded with the given flows.
func NewFlowSource(flows ...*domain.Flow) *FlowSource {
	fs := &FlowSource{flows: make(map[string]*domain.Flow)}
	for _, f := range flows {
		fs.Add(f)
	}
	return fs
}

// Add registers or replaces a flow.
func (fs *FlowSource) Add(f *domain.Flow) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.flows[f.ID]; !exists {
		fs.order = append(fs.order, f.ID)
	}
	fs.flows[f.ID] = f
}

// GetFlow returns the flow with the given id.
func (fs *FlowSource) GetFlow(ctx context.Context, id string) (*domain.Flow, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	f, ok := fs.flows[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return f, nil
}

// ListFlows returns every flow in registration order, so trigger matching
// is deterministic.
func (fs *FlowSource) ListFlows(ctx context.Context) ([]*domain.Flow, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]*domain.Flow, 0, len(fs.order))
	for _, id := range fs.order {
		out = append(out, fs.flows[id])
	}
	return out, nil
}
