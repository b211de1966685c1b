// Package mcp exposes game sessions to MCP clients as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/input"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/internal/presentation/graph"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI names the story graph resource.
const GraphURI = "disconnected://graph"

// SessionResponse is returned by tools that report the whole game.
type SessionResponse struct {
	SessionID string              `json:"session_id" jsonschema_description:"The session to pass to later calls"`
	Status    disconnected.Status `json:"status" jsonschema_description:"Snapshot of the game"`
}

// TerminalResponse is the output of one terminal or mini-game line.
type TerminalResponse struct {
	Lines  []domain.Line         `json:"lines" jsonschema_description:"Output lines in order"`
	Result domain.MinigameResult `json:"result,omitempty" jsonschema_description:"Set when the line decided a mini-game"`
	Status disconnected.Status   `json:"status"`
}

// StepResponse reports whether a dialogue or cutscene step moved the story.
type StepResponse struct {
	OK     bool                `json:"ok" jsonschema_description:"False when the step was not allowed"`
	Status disconnected.Status `json:"status"`
}

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// TerminalArgs carries one input line.
type TerminalArgs struct {
	SessionID string `json:"session_id"`
	Line      string `json:"line"`
}

// AdvanceArgs optionally names a choice.
type AdvanceArgs struct {
	SessionID string `json:"session_id"`
	Choice    string `json:"choice"`
}

// SlotArgs names a save slot.
type SlotArgs struct {
	SessionID string `json:"session_id"`
	Slot      string `json:"slot"`
	Name      string `json:"name"`
}

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	chapters  []domain.Chapter
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithChapters sets the story the graph resource renders.
func WithChapters(chapters []domain.Chapter) Option {
	return func(s *Server) {
		s.chapters = chapters
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("disconnected-mcp", strings.TrimSpace(disconnected.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chapters == nil {
		s.chapters = content.MustDefault().Chapters
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by new_game"))

	s.mcpServer.AddTool(mcp.NewTool("new_game",
		mcp.WithDescription("Start a new playthrough and return its session id."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleNewGame))

	s.mcpServer.AddTool(mcp.NewTool("terminal",
		mcp.WithDescription("Type one line. It runs as a shell command, or goes to the mini-game when one is running."),
		sessionID,
		mcp.WithString("line", mcp.Required(), mcp.Description("The input line, e.g. 'ls -la'")),
		mcp.WithOutputSchema[TerminalResponse](),
	), mcp.NewStructuredToolHandler(s.handleTerminal))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Leave the dialogue on screen, taking a choice when the node offers them."),
		sessionID,
		mcp.WithString("choice", mcp.Description("Choice id from status.dialogue.choices")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("continue",
		mcp.WithDescription("Leave the cutscene or transition on screen."),
		sessionID,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleContinue))

	s.mcpServer.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Describe the game: chapter, node, dialogue, objectives and prompt."),
		sessionID,
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Save the game into a slot."),
		sessionID,
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot id")),
		mcp.WithString("name", mcp.Description("Display name")),
		mcp.WithOutputSchema[domain.SaveSlot](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("load",
		mcp.WithDescription("Load a saved slot into the session."),
		sessionID,
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot id")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleLoad))
}

// Handler methods for structured tools

func (s *Server) handleNewGame(ctx context.Context, _ mcp.CallToolRequest, _ SessionArgs) (SessionResponse, error) {
	id, g, err := s.sessions.Create(ctx)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{SessionID: id, Status: g.Status()}, nil
}

func (s *Server) handleTerminal(ctx context.Context, _ mcp.CallToolRequest, args TerminalArgs) (TerminalResponse, error) {
	clean, err := input.Sanitize(args.Line)
	if err != nil {
		s.logger.Warn("MCP terminal: input rejected", "err", err, "size", len(args.Line))
		return TerminalResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var resp TerminalResponse
	err = s.sessions.Do(ctx, args.SessionID, func(ctx context.Context, g *disconnected.Game) error {
		if g.Status().Minigame != nil {
			out, err := g.SubmitMinigame(ctx, clean)
			if err != nil {
				return err
			}
			resp = TerminalResponse{Lines: out.Lines, Result: out.Result}
		} else {
			resp = TerminalResponse{Lines: g.Execute(ctx, clean).Lines}
		}
		resp.Status = g.Status()
		return nil
	})
	return resp, err
}

func (s *Server) handleAdvance(ctx context.Context, _ mcp.CallToolRequest, args AdvanceArgs) (StepResponse, error) {
	return s.step(ctx, args.SessionID, func(ctx context.Context, g *disconnected.Game) bool {
		return g.Advance(ctx, args.Choice)
	})
}

func (s *Server) handleContinue(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (StepResponse, error) {
	return s.step(ctx, args.SessionID, func(ctx context.Context, g *disconnected.Game) bool {
		return g.Continue(ctx)
	})
}

func (s *Server) step(ctx context.Context, id string, fn func(context.Context, *disconnected.Game) bool) (StepResponse, error) {
	var resp StepResponse
	err := s.sessions.Do(ctx, id, func(ctx context.Context, g *disconnected.Game) error {
		resp = StepResponse{OK: fn(ctx, g), Status: g.Status()}
		return nil
	})
	return resp, err
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	var resp SessionResponse
	err := s.sessions.Do(ctx, args.SessionID, func(_ context.Context, g *disconnected.Game) error {
		resp = SessionResponse{SessionID: args.SessionID, Status: g.Status()}
		return nil
	})
	return resp, err
}

func (s *Server) handleSave(ctx context.Context, _ mcp.CallToolRequest, args SlotArgs) (domain.SaveSlot, error) {
	var slot domain.SaveSlot
	err := s.sessions.Do(ctx, args.SessionID, func(ctx context.Context, g *disconnected.Game) error {
		var err error
		slot, err = g.Save(ctx, args.Slot, args.Name)
		return err
	})
	slot.Data = ""
	return slot, err
}

func (s *Server) handleLoad(ctx context.Context, _ mcp.CallToolRequest, args SlotArgs) (SessionResponse, error) {
	var resp SessionResponse
	err := s.sessions.Do(ctx, args.SessionID, func(ctx context.Context, g *disconnected.Game) error {
		if _, err := g.Load(ctx, args.Slot); err != nil {
			return err
		}
		resp = SessionResponse{SessionID: args.SessionID, Status: g.Status()}
		return nil
	})
	return resp, err
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Story Graph",
		mcp.WithResourceDescription("Mermaid flowchart of every chapter"),
		mcp.WithMIMEType("text/vnd.mermaid"),
	), s.handleGraph)
}

func (s *Server) handleGraph(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/vnd.mermaid",
			Text:     graph.GenerateMermaid(s.chapters, nil),
		},
	}, nil
}
