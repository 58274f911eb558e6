package ports

import (
	"context"

	"github.com/cauceflow/cauce/pkg/domain"
)

// FlowSource provides read-only access to flow definitions. Flows are
// authored and persisted externally; the engine never writes them.
type FlowSource interface {
	// GetFlow returns the flow with the given id.
	// Returns domain.ErrFlowNotFound if it does not exist.
	GetFlow(ctx context.Context, id string) (*domain.Flow, error)

	// ListFlows returns every available flow, used for trigger matching.
	ListFlows(ctx context.Context) ([]*domain.Flow, error)
}
