package runtime

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cauceflow/cauce/pkg/domain"
)

// responseExecutor emits an outbound message, optionally expanding a list
// variable through a per-item template, and optionally waits for a reply.
type responseExecutor struct {
	logger *slog.Logger
}

func (e *responseExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.ResponseConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}

	awaits := cfg.AwaitReply && cfg.ReplyVariable != ""
	if awaits && req.HasInput {
		vars := cloneVars(req.Session.Variables)
		vars[cfg.ReplyVariable] = req.Input
		return &domain.Result{Success: true, Variables: vars}
	}

	message := cfg.Message
	if cfg.FormatList != nil && cfg.FormatList.Variable != "" {
		message = expandList(message, cfg.FormatList, req.Session.Variables)
	}
	message = InterpolateString(message, req.Session.Variables)

	return &domain.Result{
		Success:         true,
		Variables:       cloneVars(req.Session.Variables),
		Response:        message,
		WaitingForInput: awaits,
	}
}

// expandList replaces the list variable's token with one rendered template
// line per item. {{index}} is 1-based; map items substitute fields by name.
func expandList(message string, fl *domain.ListFormat, vars map[string]any) string {
	raw, ok := LookupPath(vars, fl.Variable)
	if !ok {
		return message
	}
	items, ok := raw.([]any)
	if !ok {
		return message
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		scope := map[string]any{"index": strconv.Itoa(i + 1)}
		if m, ok := item.(map[string]any); ok {
			for k, v := range m {
				scope[k] = v
			}
		} else {
			scope["item"] = item
		}
		lines = append(lines, InterpolateString(fl.Template, scope))
	}

	token := "{{" + fl.Variable + "}}"
	return strings.ReplaceAll(message, token, strings.Join(lines, "\n"))
}
