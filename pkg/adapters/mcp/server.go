// Package mcp exposes the research engine as a Model Context Protocol server
// so AI agents can drive sessions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/tillerhq/tiller"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/session"
)

// OutcomeResponse is the unified structured result across the MCP tools.
type OutcomeResponse struct {
	SessionID string             `json:"session_id" jsonschema_description:"The session identifier for follow-up calls"`
	Status    domain.OutcomeKind `json:"status" jsonschema_description:"completed or suspended"`
	Response  string             `json:"response,omitempty" jsonschema_description:"The final answer when completed"`
	Question  string             `json:"question,omitempty" jsonschema_description:"The clarification question when suspended"`
	Trace     []domain.StepName  `json:"trace" jsonschema_description:"Steps executed during this pass"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	Start(ctx context.Context, message string) (*domain.Outcome, error)
	Continue(ctx context.Context, state *domain.State, message string) (*domain.Outcome, error)
	Resume(ctx context.Context, handle *domain.State, answer string) (*domain.Outcome, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("tiller-mcp", tiller.Version),
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
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type startArgs struct {
	Message string `mapstructure:"message"`
}

type continueArgs struct {
	SessionID string `mapstructure:"session_id"`
	Message   string `mapstructure:"message"`
}

type resumeArgs struct {
	SessionID string `mapstructure:"session_id"`
	Answer    string `mapstructure:"answer"`
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_research",
		mcp.WithDescription("Start a new research session with a user query. Returns a final answer, or a clarification question plus a session_id to resume with."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's research query")),
		mcp.WithOutputSchema[OutcomeResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	continueTool := mcp.NewTool("continue_research",
		mcp.WithDescription("Ask a follow-up question in an existing completed session, preserving the conversation context for pronoun resolution."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to continue")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The follow-up query")),
		mcp.WithOutputSchema[OutcomeResponse](),
	)
	s.mcpServer.AddTool(continueTool, mcp.NewStructuredToolHandler(s.handleContinue))

	resumeTool := mcp.NewTool("resume_research",
		mcp.WithDescription("Answer the clarification question of a suspended session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The suspended session")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("The human's answer to the pending question")),
		mcp.WithOutputSchema[OutcomeResponse](),
	)
	s.mcpServer.AddTool(resumeTool, mcp.NewStructuredToolHandler(s.handleResume))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Fetch the full state snapshot of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to inspect")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := request.GetArguments()["session_id"].(string)
		if sessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		state, err := s.sessions.Load(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(state)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OutcomeResponse, error) {
	var in startArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return OutcomeResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.Message == "" {
		return OutcomeResponse{}, fmt.Errorf("message is required")
	}

	outcome, err := s.engine.Start(ctx, in.Message)
	if err != nil {
		return OutcomeResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.persist(ctx, outcome)
}

func (s *Server) handleContinue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OutcomeResponse, error) {
	var in continueArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return OutcomeResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.SessionID == "" || in.Message == "" {
		return OutcomeResponse{}, fmt.Errorf("session_id and message are required")
	}

	state, err := s.sessions.Load(ctx, in.SessionID)
	if err != nil {
		return OutcomeResponse{}, fmt.Errorf("load failed: %w", err)
	}

	outcome, err := s.engine.Continue(ctx, state, in.Message)
	if err != nil {
		return OutcomeResponse{}, fmt.Errorf("continue failed: %w", err)
	}
	return s.persist(ctx, outcome)
}

func (s *Server) handleResume(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OutcomeResponse, error) {
	var in resumeArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return OutcomeResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.SessionID == "" || in.Answer == "" {
		return OutcomeResponse{}, fmt.Errorf("session_id and answer are required")
	}

	state, err := s.sessions.LoadSuspended(ctx, in.SessionID)
	if err != nil {
		return OutcomeResponse{}, fmt.Errorf("load failed: %w", err)
	}

	outcome, err := s.engine.Resume(ctx, state, in.Answer)
	if err != nil {
		return OutcomeResponse{}, fmt.Errorf("resume failed: %w", err)
	}
	return s.persist(ctx, outcome)
}

func (s *Server) persist(ctx context.Context, outcome *domain.Outcome) (OutcomeResponse, error) {
	if err := s.sessions.Save(ctx, outcome.State.SessionID, outcome.State); err != nil {
		return OutcomeResponse{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return OutcomeResponse{
		SessionID: outcome.State.SessionID,
		Status:    outcome.Kind,
		Response:  outcome.Response,
		Question:  outcome.Question,
		Trace:     outcome.Trace,
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: tiller://sessions
	s.mcpServer.AddResource(mcp.NewResource("tiller://sessions", "Active Research Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tiller://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
