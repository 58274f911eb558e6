package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
)

// Request carries everything one node execution may read. Executors never
// mutate the session; they return a fresh variables snapshot in the Result.
type Request struct {
	Flow    *domain.Flow
	Node    *domain.Node
	Session *domain.Session

	// Input is set only when resuming a node that suspended waiting for the
	// counterpart's reply.
	Input    string
	HasInput bool
}

// Executor runs one node type.
type Executor interface {
	Execute(ctx context.Context, req Request) *domain.Result
}

// Collaborators are the external services the executors delegate to.
type Collaborators struct {
	API      ports.APIExecutor
	Complete ports.Completer
	Payments ports.PaymentService
	Logger   *slog.Logger
}

// Registry holds the closed dispatch table. Exactly six node types exist;
// anything else is a configuration error, not an extension point.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry builds the fixed executor table.
func NewRegistry(c Collaborators) *Registry {
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	return &Registry{executors: map[string]Executor{
		domain.NodeAPICall:   &apiCallExecutor{api: c.API, logger: c.Logger},
		domain.NodeCollect:   &collectExecutor{logger: c.Logger},
		domain.NodeResponse:  &responseExecutor{logger: c.Logger},
		domain.NodeFilter:    &filterExecutor{logger: c.Logger},
		domain.NodeTransform: &transformExecutor{complete: c.Complete, logger: c.Logger},
		domain.NodePayment:   &paymentExecutor{payments: c.Payments, logger: c.Logger},
	}}
}

// Get resolves the executor for a node type.
func (r *Registry) Get(nodeType string) (Executor, error) {
	exec, ok := r.executors[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, nodeType)
	}
	return exec, nil
}

// decodeConfig maps a node's raw config onto a typed struct, coercing
// loosely typed authored values (numbers as strings etc).
func decodeConfig(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// cloneVars copies the snapshot so a result never aliases the session.
func cloneVars(vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func configError(err error) *domain.Result {
	return &domain.Result{Success: false, Err: fmt.Sprintf("configuración inválida: %v", err)}
}
