package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cauceflow/cauce/pkg/domain"
)

// collectExecutor asks a question, then validates and stores the reply.
type collectExecutor struct {
	logger *slog.Logger
}

func (e *collectExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.CollectConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}

	if !req.HasInput {
		return &domain.Result{
			Success:         true,
			Variables:       cloneVars(req.Session.Variables),
			Response:        renderQuestion(cfg, req.Session.Variables),
			WaitingForInput: true,
		}
	}

	input := req.Input
	if len(cfg.Options) > 0 {
		input = resolveOption(input, cfg.Options)
	}

	value, errMsg, ok := ValidateInput(input, cfg.Validation)
	if !ok {
		e.logger.Debug("input rejected",
			"node", req.Node.ID,
			"variable", cfg.Variable,
		)
		return &domain.Result{
			Success:         false,
			Variables:       cloneVars(req.Session.Variables),
			Response:        errMsg,
			WaitingForInput: true,
		}
	}

	vars := cloneVars(req.Session.Variables)
	if cfg.Variable != "" {
		vars[cfg.Variable] = value
	}
	return &domain.Result{Success: true, Variables: vars}
}

// renderQuestion interpolates the question and appends the 1-indexed option
// menu when options are configured.
func renderQuestion(cfg domain.CollectConfig, vars map[string]any) string {
	var b strings.Builder
	b.WriteString(InterpolateString(cfg.Question, vars))
	if len(cfg.Options) > 0 {
		b.WriteString("\n")
		for i, opt := range cfg.Options {
			fmt.Fprintf(&b, "\n%d. %s", i+1, InterpolateString(opt, vars))
		}
	}
	return b.String()
}

// resolveOption maps a numeric reply onto the corresponding option text, so
// "2" selects the second entry. Any other reply passes through for normal
// validation.
func resolveOption(input string, options []string) string {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return input
	}
	return options[n-1]
}
