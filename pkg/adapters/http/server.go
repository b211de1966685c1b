// Package http exposes live game sessions over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/input"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/internal/presentation/graph"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/session"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies; lines are far smaller.
const maxBodySize = 64 << 10

// Server implements the session routes.
type Server struct {
	Sessions *session.Manager

	logger   *slog.Logger
	metrics  http.Handler
	chapters []domain.Chapter
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts a Prometheus handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithChapters sets the story GET /graph renders. The embedded story is the
// default.
func WithChapters(chapters []domain.Chapter) Option {
	return func(s *Server) {
		s.chapters = chapters
	}
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chapters == nil {
		s.chapters = content.MustDefault().Chapters
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.Health)
	r.Get("/graph", s.GetGraph)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/command", s.Command)
			r.Post("/advance", s.Advance)
			r.Post("/continue", s.Continue)
			r.Post("/complete", s.Complete)
			r.Post("/minigame", s.Minigame)
			r.Put("/saves/{slot}", s.Save)
			r.Post("/saves/{slot}/load", s.Load)
		})
	})
	return r
}

// enableCORS adds CORS headers to every response.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse pairs a session id with its snapshot.
type SessionResponse struct {
	ID     string              `json:"id"`
	Status disconnected.Status `json:"status"`
}

// LineRequest carries one terminal or mini-game line.
type LineRequest struct {
	Line  string `json:"line"`
	Input string `json:"input"`
}

// AdvanceRequest optionally names a choice.
type AdvanceRequest struct {
	Choice string `json:"choice"`
}

// LinesResponse is the output of a command or mini-game turn.
type LinesResponse struct {
	Lines  []domain.Line         `json:"lines"`
	Result domain.MinigameResult `json:"result,omitempty"`
	Status disconnected.Status   `json:"status"`
}

// StepResponse reports whether a dialogue or cutscene step moved the story.
type StepResponse struct {
	OK     bool                `json:"ok"`
	Status disconnected.Status `json:"status"`
}

// CompleteResponse lists tab-completion candidates.
type CompleteResponse struct {
	Candidates []string `json:"candidates"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(disconnected.Version),
	})
}

// GetGraph handles GET /graph. With ?session=<id> the session's path is
// highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var out string
	if id := r.URL.Query().Get("session"); id != "" {
		err := s.Sessions.Do(r.Context(), id, func(_ context.Context, g *disconnected.Game) error {
			out = g.Graph(true)
			return nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		out = graph.GenerateMermaid(s.chapters, nil)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, out)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{ID: id, Status: g.Status()})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp SessionResponse
	err := s.Sessions.Do(r.Context(), id, func(_ context.Context, g *disconnected.Game) error {
		resp = SessionResponse{ID: id, Status: g.Status()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Command handles POST /sessions/{id}/command.
func (s *Server) Command(w http.ResponseWriter, r *http.Request) {
	var body LineRequest
	if !s.decode(w, r, &body) {
		return
	}
	line, err := input.Sanitize(body.Line)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var resp LinesResponse
	err = s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, g *disconnected.Game) error {
		res := g.Execute(ctx, line)
		resp = LinesResponse{Lines: res.Lines, Status: g.Status()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Advance handles POST /sessions/{id}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.step(w, r, func(ctx context.Context, g *disconnected.Game) bool {
		return g.Advance(ctx, body.Choice)
	})
}

// Continue handles POST /sessions/{id}/continue.
func (s *Server) Continue(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, func(ctx context.Context, g *disconnected.Game) bool {
		return g.Continue(ctx)
	})
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, fn func(context.Context, *disconnected.Game) bool) {
	var resp StepResponse
	err := s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, g *disconnected.Game) error {
		resp = StepResponse{OK: fn(ctx, g), Status: g.Status()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Complete handles POST /sessions/{id}/complete.
func (s *Server) Complete(w http.ResponseWriter, r *http.Request) {
	var body LineRequest
	if !s.decode(w, r, &body) {
		return
	}
	resp := CompleteResponse{Candidates: []string{}}
	err := s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, g *disconnected.Game) error {
		if c := g.Complete(body.Line); c != nil {
			resp.Candidates = c
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Minigame handles POST /sessions/{id}/minigame.
func (s *Server) Minigame(w http.ResponseWriter, r *http.Request) {
	var body LineRequest
	if !s.decode(w, r, &body) {
		return
	}
	line, err := input.Sanitize(body.Input)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var resp LinesResponse
	err = s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, g *disconnected.Game) error {
		out, err := g.SubmitMinigame(ctx, line)
		if err != nil {
			return err
		}
		resp = LinesResponse{Lines: out.Lines, Result: out.Result, Status: g.Status()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Save handles PUT /sessions/{id}/saves/{slot}. The optional ?name= labels
// the slot.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	var slot domain.SaveSlot
	err := s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, g *disconnected.Game) error {
		var err error
		slot, err = g.Save(ctx, chi.URLParam(r, "slot"), r.URL.Query().Get("name"))
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	slot.Data = ""
	s.writeJSON(w, http.StatusOK, slot)
}

// Load handles POST /sessions/{id}/saves/{slot}/load.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp SessionResponse
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, g *disconnected.Game) error {
		if _, err := g.Load(ctx, chi.URLParam(r, "slot")); err != nil {
			return err
		}
		resp = SessionResponse{ID: id, Status: g.Status()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCorruptSave):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoActiveMinigame):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
