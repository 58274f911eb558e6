package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/internal/metrics"
	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
	"github.com/cauceflow/cauce/pkg/session"
)

const (
	defaultMaxSteps    = 128
	defaultMaxAttempts = 3
	maxOutboundRunes   = 4000

	defaultErrorMessage  = "Lo siento, ocurrió un error. Por favor intenta de nuevo más tarde."
	defaultCancelMessage = "Operación cancelada. Escríbeme cuando quieras retomarla."
	tooManyAttemptsMsg   = "Demasiados intentos fallidos. Empecemos de nuevo cuando quieras."
)

var defaultCancelKeywords = []string{"cancelar", "salir", "stop"}

// Reply is the outcome of one inbound message. Handled is false when the
// message matched no running session and no flow trigger.
type Reply struct {
	Handled bool
	Text    string
}

// Engine drives sessions through flow graphs. All processing for one
// identity is serialized by the session manager; different identities run
// fully concurrently.
type Engine struct {
	flows    ports.FlowSource
	sessions *session.Manager
	registry *Registry

	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxSteps       int
	maxAttempts    int
	cancelKeywords []string
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the instrumentation sink.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxSteps bounds node transitions per inbound message, guarding
// against authored cycles that never suspend.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithMaxAttempts sets the default cap on consecutive rejected inputs.
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithCancelKeywords overrides the words that abandon a running flow.
func WithCancelKeywords(words []string) EngineOption {
	return func(e *Engine) {
		if len(words) > 0 {
			e.cancelKeywords = words
		}
	}
}

// NewEngine assembles the interpreter.
func NewEngine(flows ports.FlowSource, sessions *session.Manager, registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		flows:          flows,
		sessions:       sessions,
		registry:       registry,
		logger:         logging.NewNop(),
		metrics:        metrics.New(),
		maxSteps:       defaultMaxSteps,
		maxAttempts:    defaultMaxAttempts,
		cancelKeywords: defaultCancelKeywords,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics exposes the engine's instrumentation for the HTTP layer.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// HandleMessage processes one inbound message for an identity. It resumes a
// waiting session, or matches flow triggers when the session is idle, and
// returns the accumulated outbound text.
func (e *Engine) HandleMessage(ctx context.Context, id domain.Identity, text string) (Reply, error) {
	var reply Reply
	err := e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		reply, err = e.handleLocked(ctx, id, text)
		return err
	})
	if err != nil {
		e.metrics.MessagesTotal.WithLabelValues("error").Inc()
		return Reply{}, err
	}
	if reply.Handled {
		e.metrics.MessagesTotal.WithLabelValues("handled").Inc()
	} else {
		e.metrics.MessagesTotal.WithLabelValues("unhandled").Inc()
	}
	return reply, nil
}

func (e *Engine) handleLocked(ctx context.Context, id domain.Identity, text string) (Reply, error) {
	store := e.sessions.Store()

	sess, err := store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return Reply{}, fmt.Errorf("failed to load session: %w", err)
		}
		sess = domain.NewSession(id)
	}

	if !sess.Idle() && e.isCancelKeyword(text) {
		return e.abandon(ctx, sess)
	}

	if sess.Idle() {
		flow, err := e.matchTrigger(ctx, text)
		if err != nil {
			return Reply{}, err
		}
		if flow == nil {
			return Reply{Handled: false}, nil
		}
		e.logger.Info("flow started",
			"identity", id.Key(),
			"flow", flow.ID,
		)
		sess.ActiveFlowID = flow.ID
		sess.CurrentNodeID = flow.EntryNodeID
		sess.Variables = make(map[string]any)
		sess.WaitingForInput = false
		sess.FailedAttempts = 0
		e.metrics.ActiveSessions.Inc()
		return e.run(ctx, sess, flow, "", false)
	}

	flow, err := e.flows.GetFlow(ctx, sess.ActiveFlowID)
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			// The flow was unpublished mid-conversation.
			return e.abort(ctx, sess, defaultErrorMessage)
		}
		return Reply{}, fmt.Errorf("failed to load flow %q: %w", sess.ActiveFlowID, err)
	}
	return e.run(ctx, sess, flow, text, sess.WaitingForInput)
}

// run steps through the graph until a node suspends, the flow completes, or
// something aborts. It never consumes more than the one inbound message it
// was given.
func (e *Engine) run(ctx context.Context, sess *domain.Session, flow *domain.Flow, input string, hasInput bool) (Reply, error) {
	store := e.sessions.Store()
	var responses []string

	for step := 0; step < e.maxSteps; step++ {
		node := flow.NodeByID(sess.CurrentNodeID)
		if node == nil {
			e.logger.Error("session points at missing node",
				"identity", sess.Identity.Key(),
				"flow", flow.ID,
				"node", sess.CurrentNodeID,
			)
			return e.abortWith(ctx, sess, flow, responses)
		}

		exec, err := e.registry.Get(node.Type)
		if err != nil {
			e.logger.Error("unknown node type",
				"flow", flow.ID,
				"node", node.ID,
				"type", node.Type,
			)
			return e.abortWith(ctx, sess, flow, responses)
		}

		start := time.Now()
		res := exec.Execute(ctx, Request{
			Flow:     flow,
			Node:     node,
			Session:  sess,
			Input:    input,
			HasInput: hasInput,
		})
		e.metrics.NodeDuration.WithLabelValues(node.Type).Observe(time.Since(start).Seconds())
		e.observeNode(node.Type, res)
		input, hasInput = "", false

		if res.Variables != nil {
			sess.Variables = res.Variables
		}

		if res.WaitingForInput {
			if !res.Success {
				sess.FailedAttempts++
				if sess.FailedAttempts >= e.attemptsLimit(flow) {
					responses = append(responses, tooManyAttemptsMsg)
					return e.finishAborted(ctx, sess, responses)
				}
				sess.WaitingForInput = true
				if err := e.save(ctx, store, sess); err != nil {
					return Reply{}, err
				}
				responses = append(responses, firstNonEmpty(res.Response, res.Err))
				return e.reply(responses), nil
			}

			sess.FailedAttempts = 0
			sess.WaitingForInput = true
			if res.Response != "" {
				responses = append(responses, res.Response)
			}
			if err := e.save(ctx, store, sess); err != nil {
				return Reply{}, err
			}
			return e.reply(responses), nil
		}

		if !res.Success {
			if node.Type == domain.NodeFilter {
				next := node.Next(domain.EdgeFalse)
				if next == "" {
					return e.finishCompleted(ctx, sess, responses)
				}
				sess.CurrentNodeID = next
				continue
			}
			e.logger.Warn("node failed, aborting flow",
				"identity", sess.Identity.Key(),
				"flow", flow.ID,
				"node", node.ID,
				"type", node.Type,
				"err", res.Err,
			)
			return e.abortWith(ctx, sess, flow, responses)
		}

		sess.FailedAttempts = 0
		sess.WaitingForInput = false
		if res.Response != "" {
			responses = append(responses, res.Response)
		}

		label := ""
		if node.Type == domain.NodeFilter {
			label = domain.EdgeTrue
		}
		next := node.Next(label)
		if next == "" {
			return e.finishCompleted(ctx, sess, responses)
		}
		sess.CurrentNodeID = next
	}

	e.logger.Error("step limit exceeded, aborting flow",
		"identity", sess.Identity.Key(),
		"flow", flow.ID,
	)
	return e.abortWith(ctx, sess, flow, responses)
}

// Cancel abandons whatever the identity is doing and discards its session.
func (e *Engine) Cancel(ctx context.Context, id domain.Identity) error {
	return e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		err := e.sessions.Store().Delete(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	})
}

// ExpireIdle aborts sessions whose last activity is older than maxIdle and
// returns how many were removed. Intended to run on a timer.
func (e *Engine) ExpireIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	ids, err := e.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	expired := 0
	cutoff := time.Now().UTC().Add(-maxIdle)
	for _, id := range ids {
		err := e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
			sess, err := e.sessions.Store().Load(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					return nil
				}
				return err
			}
			if sess.UpdatedAt.After(cutoff) {
				return nil
			}
			expired++
			if !sess.Idle() {
				e.metrics.ActiveSessions.Dec()
			}
			e.logger.Info("session expired",
				"identity", id.Key(),
				"flow", sess.ActiveFlowID,
			)
			return e.sessions.Store().Delete(ctx, id)
		})
		if err != nil {
			return expired, err
		}
	}
	return expired, nil
}

func (e *Engine) matchTrigger(ctx context.Context, text string) (*domain.Flow, error) {
	flows, err := e.flows.ListFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	// Keyword triggers outrank catch-all message triggers.
	var fallback *domain.Flow
	for _, f := range flows {
		if !f.MatchesTrigger(text) {
			continue
		}
		if f.Trigger.Type == domain.TriggerKeyword {
			return f, nil
		}
		if fallback == nil {
			fallback = f
		}
	}
	return fallback, nil
}

func (e *Engine) isCancelKeyword(text string) bool {
	text = strings.TrimSpace(text)
	for _, kw := range e.cancelKeywords {
		if strings.EqualFold(text, kw) {
			return true
		}
	}
	return false
}

func (e *Engine) attemptsLimit(flow *domain.Flow) int {
	if flow.MaxAttempts > 0 {
		return flow.MaxAttempts
	}
	return e.maxAttempts
}

// abandon handles an explicit cancel keyword from the counterpart.
func (e *Engine) abandon(ctx context.Context, sess *domain.Session) (Reply, error) {
	flow, err := e.flows.GetFlow(ctx, sess.ActiveFlowID)
	msg := defaultCancelMessage
	if err == nil && flow.CancelMessage != "" {
		msg = flow.CancelMessage
	}
	e.logger.Info("flow cancelled by counterpart",
		"identity", sess.Identity.Key(),
		"flow", sess.ActiveFlowID,
	)
	return e.finishAborted(ctx, sess, []string{msg})
}

// abort ends the flow with an explicit message.
func (e *Engine) abort(ctx context.Context, sess *domain.Session, msg string) (Reply, error) {
	return e.finishAborted(ctx, sess, []string{msg})
}

// abortWith ends the flow with the flow's configured error message.
func (e *Engine) abortWith(ctx context.Context, sess *domain.Session, flow *domain.Flow, responses []string) (Reply, error) {
	msg := flow.ErrorMessage
	if msg == "" {
		msg = defaultErrorMessage
	}
	return e.finishAborted(ctx, sess, append(responses, msg))
}

func (e *Engine) finishAborted(ctx context.Context, sess *domain.Session, responses []string) (Reply, error) {
	e.metrics.ActiveSessions.Dec()
	sess.Reset()
	if err := e.save(ctx, e.sessions.Store(), sess); err != nil {
		return Reply{}, err
	}
	return e.reply(responses), nil
}

func (e *Engine) finishCompleted(ctx context.Context, sess *domain.Session, responses []string) (Reply, error) {
	e.logger.Info("flow completed",
		"identity", sess.Identity.Key(),
		"flow", sess.ActiveFlowID,
	)
	e.metrics.ActiveSessions.Dec()
	sess.Reset()
	if err := e.save(ctx, e.sessions.Store(), sess); err != nil {
		return Reply{}, err
	}
	return e.reply(responses), nil
}

func (e *Engine) save(ctx context.Context, store ports.SessionStore, sess *domain.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := store.Save(ctx, sess.Identity, sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (e *Engine) reply(responses []string) Reply {
	return Reply{Handled: true, Text: truncateRunes(strings.Join(responses, "\n\n"), maxOutboundRunes)}
}

func (e *Engine) observeNode(nodeType string, res *domain.Result) {
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}
	e.metrics.NodeExecutions.WithLabelValues(nodeType, outcome).Inc()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// truncateRunes caps outbound text at the transport's message size.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
