package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"

	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// transformExecutor sends an interpolated prompt to the completion service
// and stores the reply, optionally parsed as JSON.
type transformExecutor struct {
	complete ports.Completer
	logger   *slog.Logger
}

func (e *transformExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.TransformConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}
	if e.complete == nil {
		return &domain.Result{Success: false, Err: "servicio de completado no configurado"}
	}

	prompt := InterpolateString(cfg.Prompt, req.Session.Variables)
	text, err := e.complete.Complete(ctx, cfg.Model, []ports.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		e.logger.Warn("completion failed",
			"node", req.Node.ID,
			"err", err,
		)
		return &domain.Result{Success: false, Err: err.Error()}
	}

	var value any = text
	if cfg.ParseJSON {
		parsed, ok := parseJSONResponse(text)
		if !ok {
			return &domain.Result{Success: false, Err: "la respuesta del modelo no es JSON válido"}
		}
		value = parsed
	}

	vars := cloneVars(req.Session.Variables)
	if cfg.OutputVariable != "" {
		vars[cfg.OutputVariable] = value
	}
	return &domain.Result{Success: true, Variables: vars}
}

// parseJSONResponse tries the first greedy {...} span, then the whole text.
// Models routinely wrap JSON in prose or code fences.
func parseJSONResponse(text string) (any, bool) {
	var out any
	if m := jsonObjectPattern.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), &out); err == nil {
			return out, true
		}
	}
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, true
	}
	return nil, false
}
