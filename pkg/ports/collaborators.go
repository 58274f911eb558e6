package ports

import "context"

// APIRequest carries the interpolated query and body for a configured
// endpoint.
type APIRequest struct {
	Query map[string]any `json:"query,omitempty"`
	Body  map[string]any `json:"body,omitempty"`
}

// APIResponse is the generic API executor's outcome. Error may be a plain
// string or a structured object carrying a "mensaje" field; the api_call
// executor extracts either.
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// APIExecutor dispatches calls to tenant-configured HTTP endpoints. The
// endpoint table (URL, method, headers, auth) lives with the executor, not
// with the engine.
type APIExecutor interface {
	Execute(ctx context.Context, endpointID string, req APIRequest) (*APIResponse, error)
}

// Message is one chat message for the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the AI completion collaborator used by gpt_transform nodes.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// PaymentRequest describes a payment link to generate.
type PaymentRequest struct {
	TenantID    string  `json:"tenant_id"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	// Address is the counterpart's phone, attached to the preference so the
	// payment webhook can be correlated back to the conversation.
	Address string `json:"address"`
}

// PaymentResponse carries the generated checkout URL.
type PaymentResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PaymentService generates payment links. Implementations must be
// idempotency-safe: the engine does not retry, but an orchestrating caller
// might, and duplicate calls must not create duplicate charges.
type PaymentService interface {
	GenerateLink(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}
