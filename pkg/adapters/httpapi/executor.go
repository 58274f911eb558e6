// Package httpapi dispatches api_call nodes to tenant-configured HTTP
// endpoints. Flows reference endpoints by id; the URL, method, headers and
// timeout live here, never in the flow graph.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/internal/runtime"
	"github.com/cauceflow/cauce/pkg/ports"
)

const defaultTimeout = 15 * time.Second

// Endpoint describes one callable HTTP target.
type Endpoint struct {
	URL     string            `yaml:"url" mapstructure:"url"`
	Method  string            `yaml:"method" mapstructure:"method"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	Timeout time.Duration     `yaml:"timeout" mapstructure:"timeout"`
}

// Executor implements ports.APIExecutor over a fixed endpoint table.
type Executor struct {
	endpoints map[string]Endpoint
	client    *http.Client
	logger    *slog.Logger
}

type Option func(*Executor)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithLogger sets the executor logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an executor over the given endpoint table.
func New(endpoints map[string]Endpoint, opts ...Option) *Executor {
	e := &Executor{
		endpoints: endpoints,
		client:    &http.Client{Timeout: defaultTimeout},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs one call. Transport errors are returned as errors;
// non-2xx statuses come back as an unsuccessful APIResponse so the flow can
// surface the endpoint's message.
func (e *Executor) Execute(ctx context.Context, endpointID string, req ports.APIRequest) (*ports.APIResponse, error) {
	ep, ok := e.endpoints[endpointID]
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q", endpointID)
	}

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := strings.ToUpper(ep.Method)
	if method == "" {
		method = http.MethodGet
	}

	target, err := buildURL(ep.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range ep.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q unreachable: %w", endpointID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %q: %w", endpointID, err)
	}

	e.logger.Debug("endpoint called",
		"endpoint", endpointID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var data any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			data = string(raw)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ports.APIResponse{
			Success: false,
			Error:   errorPayload(data, resp.StatusCode),
		}, nil
	}
	return &ports.APIResponse{Success: true, Data: data}, nil
}

func buildURL(base string, query map[string]any) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url %q: %w", base, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, runtime.Stringify(v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// errorPayload keeps a structured body intact so the caller can extract a
// "mensaje" field, otherwise falls back to a status-line message.
func errorPayload(data any, status int) any {
	switch v := data.(type) {
	case map[string]any:
		return v
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fmt.Sprintf("el endpoint respondió %d", status)
}
