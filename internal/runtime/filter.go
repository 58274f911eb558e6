package runtime

import (
	"context"
	"log/slog"

	"github.com/cauceflow/cauce/pkg/domain"
)

// filterExecutor evaluates branch conditions. The boolean outcome selects
// the outgoing edge; variables pass through untouched and the node never
// suspends.
type filterExecutor struct {
	logger *slog.Logger
}

func (e *filterExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.FilterConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}

	logic := cfg.Logic
	if logic == "" {
		logic = domain.LogicAnd
	}
	outcome := Evaluate(cfg.Conditions, logic, req.Session.Variables)
	e.logger.Debug("filter evaluated",
		"node", req.Node.ID,
		"outcome", outcome,
	)

	return &domain.Result{
		Success:   outcome,
		Variables: cloneVars(req.Session.Variables),
	}
}
