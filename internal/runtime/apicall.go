package runtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
)

// apiCallExecutor dispatches one call to a tenant-configured endpoint and
// stores the (optionally path-extracted) payload.
type apiCallExecutor struct {
	api    ports.APIExecutor
	logger *slog.Logger
}

func (e *apiCallExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.APICallConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}
	if e.api == nil {
		return &domain.Result{Success: false, Err: "ejecutor de API no configurado"}
	}

	apiReq := ports.APIRequest{
		Query: asMap(Interpolate(cfg.Params, req.Session.Variables)),
		Body:  asMap(Interpolate(cfg.Body, req.Session.Variables)),
	}

	resp, err := e.api.Execute(ctx, cfg.EndpointID, apiReq)
	if err != nil {
		e.logger.Warn("api call failed",
			"endpoint", cfg.EndpointID,
			"err", err,
		)
		return &domain.Result{Success: false, Err: err.Error()}
	}
	if !resp.Success {
		return &domain.Result{Success: false, Err: extractErrorMessage(resp.Error)}
	}

	value := resp.Data
	if cfg.ArrayPath != "" {
		value = walkPath(value, cfg.ArrayPath)
	}

	vars := cloneVars(req.Session.Variables)
	if cfg.OutputVariable != "" {
		vars[cfg.OutputVariable] = value
	}
	return &domain.Result{Success: true, Variables: vars}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// walkPath descends a dot-separated path through nested maps, returning nil
// as soon as a segment is missing.
func walkPath(v any, path string) any {
	current := v
	for _, seg := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// extractErrorMessage reads a collaborator error that may be a plain string
// or a structured object with a "mensaje" field.
func extractErrorMessage(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		if msg, ok := x["mensaje"].(string); ok {
			return msg
		}
	}
	return Stringify(v)
}
