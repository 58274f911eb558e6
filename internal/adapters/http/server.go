// Package http exposes the engine to the message-transport collaborator.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/internal/metrics"
	"github.com/cauceflow/cauce/internal/runtime"
	"github.com/cauceflow/cauce/pkg/domain"
)

// Engine is the part of the runtime the transport needs.
type Engine interface {
	HandleMessage(ctx context.Context, id domain.Identity, text string) (runtime.Reply, error)
	Cancel(ctx context.Context, id domain.Identity) error
	Metrics() *metrics.Metrics
}

// SessionLister lets operators inspect which conversations exist.
type SessionLister interface {
	List(ctx context.Context) ([]domain.Identity, error)
}

// Server wires the engine into a chi router.
type Server struct {
	engine   Engine
	sessions SessionLister
	logger   *slog.Logger
}

// NewHandler builds the HTTP handler.
func NewHandler(engine Engine, sessions SessionLister, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{engine: engine, sessions: sessions, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		engine.Metrics().Registry(),
		promhttp.HandlerOpts{},
	))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
		r.Get("/sessions", s.listSessions)
		r.Delete("/sessions/{tenantID}/{address}", s.cancelSession)
	})
	return r
}

type messageRequest struct {
	TenantID string `json:"tenant_id"`
	Address  string `json:"address"`
	Text     string `json:"text"`
}

type messageResponse struct {
	Handled bool   `json:"handled"`
	Text    string `json:"text,omitempty"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TenantID == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "tenant_id and address are required")
		return
	}

	id := domain.Identity{TenantID: req.TenantID, Address: req.Address}
	reply, err := s.engine.HandleMessage(r.Context(), id, req.Text)
	if err != nil {
		s.logger.Error("message handling failed",
			"identity", id.Key(),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "message handling failed")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Handled: reply.Handled, Text: reply.Text})
}

type sessionsResponse struct {
	Sessions []domain.Identity `json:"sessions"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("session listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "session listing failed")
		return
	}
	if ids == nil {
		ids = []domain.Identity{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: ids})
}

func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request) {
	id := domain.Identity{
		TenantID: chi.URLParam(r, "tenantID"),
		Address:  chi.URLParam(r, "address"),
	}
	if err := s.engine.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("session cancel failed",
			"identity", id.Key(),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "session cancel failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
