// Package mercadopago implements the payment-link collaborator against the
// Mercado Pago checkout preferences API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cauceflow/cauce/pkg/ports"
)

const (
	defaultBaseURL = "https://api.mercadopago.com"
	defaultTimeout = 20 * time.Second
)

// TokenSource resolves the access token for a tenant, so each business
// charges into its own account.
type TokenSource func(tenantID string) (string, error)

// StaticToken uses one access token for every tenant.
func StaticToken(token string) TokenSource {
	return func(string) (string, error) {
		return token, nil
	}
}

// Client implements ports.PaymentService.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a payment client.
func New(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type preferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id,omitempty"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
}

type preferenceResponse struct {
	InitPoint string `json:"init_point"`
	Message   string `json:"message"`
}

// GenerateLink creates a checkout preference and returns its init point.
// Every call sends a fresh idempotency key, so a retried HTTP request can
// not create a second preference.
func (c *Client) GenerateLink(ctx context.Context, req ports.PaymentRequest) (*ports.PaymentResponse, error) {
	token, err := c.tokens(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("no payment credentials for tenant %q: %w", req.TenantID, err)
	}

	payload, err := json.Marshal(preferenceRequest{
		Items: []preferenceItem{{
			Title:       req.Title,
			Description: req.Description,
			Quantity:    1,
			UnitPrice:   req.Amount,
		}},
		ExternalReference: req.TenantID + ":" + req.Address,
		Metadata: map[string]any{
			"tenant_id": req.TenantID,
			"address":   req.Address,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build preference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read preference response: %w", err)
	}

	var parsed preferenceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed preference response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("el servicio de pagos respondió %d", resp.StatusCode)
		}
		return &ports.PaymentResponse{Success: false, Error: msg}, nil
	}
	if parsed.InitPoint == "" {
		return &ports.PaymentResponse{Success: false, Error: "la preferencia no devolvió un link de pago"}, nil
	}
	return &ports.PaymentResponse{Success: true, PaymentURL: parsed.InitPoint}, nil
}
