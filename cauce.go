package cauce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/internal/metrics"
	"github.com/cauceflow/cauce/internal/runtime"
	"github.com/cauceflow/cauce/pkg/adapters/memory"
	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
	"github.com/cauceflow/cauce/pkg/session"
)

// Reply mirrors the engine's outcome for one inbound message.
type Reply = runtime.Reply

// Engine is the high-level entry point. It wraps the internal runtime with
// a session manager and the configured collaborators.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager

	store      ports.SessionStore
	locker     ports.DistributedLocker
	api        ports.APIExecutor
	completer  ports.Completer
	payments   ports.PaymentService
	logger     *slog.Logger
	metrics    *metrics.Metrics
	engineOpts []runtime.EngineOption
}

// Option configures the Engine.
type Option func(*Engine)

// WithSessionStore replaces the default in-memory store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithLocker enables cross-instance per-identity locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithAPIExecutor sets the collaborator for api_call nodes.
func WithAPIExecutor(api ports.APIExecutor) Option {
	return func(e *Engine) { e.api = api }
}

// WithCompleter sets the collaborator for gpt_transform nodes.
func WithCompleter(c ports.Completer) Option {
	return func(e *Engine) { e.completer = c }
}

// WithPaymentService sets the collaborator for mercadopago_payment nodes.
func WithPaymentService(p ports.PaymentService) Option {
	return func(e *Engine) { e.payments = p }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the instrumentation sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxSteps bounds node transitions per inbound message.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.engineOpts = append(e.engineOpts, runtime.WithMaxSteps(n)) }
}

// WithMaxAttempts caps consecutive rejected inputs before a flow aborts.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.engineOpts = append(e.engineOpts, runtime.WithMaxAttempts(n)) }
}

// WithCancelKeywords overrides the abandon keywords.
func WithCancelKeywords(words []string) Option {
	return func(e *Engine) { e.engineOpts = append(e.engineOpts, runtime.WithCancelKeywords(words)) }
}

// New assembles an engine over the given flow source.
func New(flows ports.FlowSource, opts ...Option) (*Engine, error) {
	if flows == nil {
		return nil, fmt.Errorf("a flow source is required")
	}

	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	registry := runtime.NewRegistry(runtime.Collaborators{
		API:      e.api,
		Complete: e.completer,
		Payments: e.payments,
		Logger:   e.logger,
	})

	engineOpts := append([]runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithMetrics(e.metrics),
	}, e.engineOpts...)
	e.runtime = runtime.NewEngine(flows, e.sessions, registry, engineOpts...)
	return e, nil
}

// HandleMessage processes one inbound message for an identity.
func (e *Engine) HandleMessage(ctx context.Context, id domain.Identity, text string) (Reply, error) {
	return e.runtime.HandleMessage(ctx, id, text)
}

// Cancel abandons the identity's conversation.
func (e *Engine) Cancel(ctx context.Context, id domain.Identity) error {
	return e.runtime.Cancel(ctx, id)
}

// ExpireIdle removes sessions idle for longer than maxIdle.
func (e *Engine) ExpireIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	return e.runtime.ExpireIdle(ctx, maxIdle)
}

// Sessions exposes the session manager, mainly for the HTTP layer.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Metrics exposes the engine's instrumentation.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.runtime.Metrics()
}
