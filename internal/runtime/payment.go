package runtime

import (
	"context"
	"log/slog"

	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
)

// paymentExecutor generates a payment link and stores the checkout URL.
type paymentExecutor struct {
	payments ports.PaymentService
	logger   *slog.Logger
}

func (e *paymentExecutor) Execute(ctx context.Context, req Request) *domain.Result {
	var cfg domain.PaymentConfig
	if err := decodeConfig(req.Node.Config, &cfg); err != nil {
		return configError(err)
	}
	if e.payments == nil {
		return &domain.Result{Success: false, Err: "servicio de pagos no configurado"}
	}

	amount, err := ResolveAmount(cfg.Amount, req.Session.Variables)
	if err != nil {
		return &domain.Result{Success: false, Err: "el monto del pago no es válido"}
	}
	if amount <= 0 {
		return &domain.Result{Success: false, Err: "el monto del pago debe ser mayor a cero"}
	}

	resp, err := e.payments.GenerateLink(ctx, ports.PaymentRequest{
		TenantID:    req.Session.Identity.TenantID,
		Title:       InterpolateString(cfg.Title, req.Session.Variables),
		Amount:      amount,
		Description: InterpolateString(cfg.Description, req.Session.Variables),
		Address:     req.Session.Identity.Address,
	})
	if err != nil {
		e.logger.Warn("payment link generation failed",
			"node", req.Node.ID,
			"err", err,
		)
		return &domain.Result{Success: false, Err: err.Error()}
	}
	if !resp.Success {
		return &domain.Result{Success: false, Err: resp.Error}
	}

	vars := cloneVars(req.Session.Variables)
	if cfg.OutputVariable != "" {
		vars[cfg.OutputVariable] = resp.PaymentURL
	}
	return &domain.Result{Success: true, Variables: vars}
}
