// Package http exposes the research engine over a JSON REST surface.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tillerhq/tiller/internal/logging"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/session"
)

// Engine defines the interface for the research orchestration core.
type Engine interface {
	Start(ctx context.Context, message string) (*domain.Outcome, error)
	Continue(ctx context.Context, state *domain.State, message string) (*domain.Outcome, error)
	Resume(ctx context.Context, handle *domain.State, answer string) (*domain.Outcome, error)
}

// Server handles the session REST API backed by an Engine and a session
// manager for persistence.
type Server struct {
	engine   Engine
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for the server.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/", s.handleList)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/messages", s.handleMessage)
			r.Post("/resume", s.handleResume)
		})
	})
	return r
}

type messageRequest struct {
	Message string `json:"message"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type outcomeResponse struct {
	SessionID string             `json:"session_id"`
	Status    domain.OutcomeKind `json:"status"`
	Response  string             `json:"response,omitempty"`
	Question  string             `json:"question,omitempty"`
	Trace     []domain.StepName  `json:"trace"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStart runs the first turn of a new session.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	outcome, err := s.engine.Start(r.Context(), req.Message)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.persistAndWrite(w, r, outcome)
}

// handleMessage runs the next turn of an existing completed session.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	state, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	outcome, err := s.engine.Continue(r.Context(), state, req.Message)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.persistAndWrite(w, r, outcome)
}

// handleResume hands the human's answer back to a suspended session.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answer == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	state, err := s.sessions.LoadSuspended(r.Context(), sessionID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	outcome, err := s.engine.Resume(r.Context(), state, req.Answer)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.persistAndWrite(w, r, outcome)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// persistAndWrite checkpoints the outcome's state and writes the response.
// Suspended outcomes answer 202 so clients can tell a pending question from a
// final answer without parsing the body.
func (s *Server) persistAndWrite(w http.ResponseWriter, r *http.Request, outcome *domain.Outcome) {
	if err := s.sessions.Save(r.Context(), outcome.State.SessionID, outcome.State); err != nil {
		s.logger.Error("failed to persist session", "session_id", outcome.State.SessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	status := http.StatusOK
	if outcome.Kind == domain.OutcomeSuspended {
		status = http.StatusAccepted
	}
	writeJSON(w, status, outcomeResponse{
		SessionID: outcome.State.SessionID,
		Status:    outcome.Kind,
		Response:  outcome.Response,
		Question:  outcome.Question,
		Trace:     outcome.Trace,
	})
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var stepErr *domain.StepError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrNotSuspended):
		writeError(w, http.StatusConflict, "session is not waiting for clarification")
	case errors.As(err, &stepErr):
		s.logger.Error("step failed", "step", stepErr.Step, "kind", stepErr.Kind, "err", err)
		writeError(w, http.StatusBadGateway, "upstream step failed: "+string(stepErr.Step))
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
