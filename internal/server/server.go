// Package server exposes the structured memory engine over HTTP: a
// chat-turn endpoint that drives an LLM tool-calling loop against one
// session's engine, and an MCP-over-HTTP endpoint exposing manageMemory
// directly to MCP-speaking clients. HTTP transport is an external
// collaborator of the engine, never the other way around.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/worldline-go/types"

	"github.com/rakunlabs/ada"
	mcors "github.com/rakunlabs/ada/middleware/cors"
	mlog "github.com/rakunlabs/ada/middleware/log"
	mrecover "github.com/rakunlabs/ada/middleware/recover"
	mrequestid "github.com/rakunlabs/ada/middleware/requestid"
	mserver "github.com/rakunlabs/ada/middleware/server"
	mtelemetry "github.com/rakunlabs/ada/middleware/telemetry"

	"github.com/indigofenix/aac/internal/config"
	"github.com/indigofenix/aac/internal/memory"
	"github.com/indigofenix/aac/internal/service"
	"github.com/indigofenix/aac/internal/session"
	"github.com/indigofenix/aac/pkg/mcp"
)

// Server wires the HTTP surface around one fixed memory schema, one session
// store, and one LLM provider.
type Server struct {
	config config.Server
	memCfg config.Memory
	server *ada.Server

	schema     *memory.Schema
	memoryTool service.Tool
	sessions   session.Store
	provider   service.LLMProvider
}

// New builds the ada router and registers the chat-turn and MCP endpoints.
func New(cfg config.Server, memCfg config.Memory, schema *memory.Schema, sessions session.Store, provider service.LLMProvider) (*Server, error) {
	toolSchema, err := memory.BuildTool()
	if err != nil {
		return nil, fmt.Errorf("build manageMemory tool schema: %w", err)
	}

	mux := ada.New()
	mux.Use(
		mrecover.Middleware(),
		mserver.Middleware(config.Service),
		mcors.Middleware(),
		mrequestid.Middleware(),
		mlog.Middleware(),
		mtelemetry.Middleware(),
	)

	s := &Server{
		config: cfg,
		memCfg: memCfg,
		server: mux,
		schema: schema,
		memoryTool: service.Tool{
			Name:        memory.ToolName,
			Description: memory.ToolDescription,
			InputSchema: toolSchema,
		},
		sessions: sessions,
		provider: provider,
	}

	if cfg.BasePath != "" {
		slog.Info("configuring server with base path", "base_path", cfg.BasePath)
	}

	baseGroup := mux.Group(cfg.BasePath)
	baseGroup.POST("/v1/sessions/{id}/turn", s.ChatTurn)
	baseGroup.Handle("/mcp/{id}", http.HandlerFunc(s.handleMCP))

	return s, nil
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	return s.server.StartWithContext(ctx, net.JoinHostPort(s.config.Host, s.config.Port))
}

// sessionState is the live, decoded form of a session.Snapshot: a ready
// engine plus the conversation history driving the Agent.
type sessionState struct {
	engine   *memory.Engine
	messages []service.Message
}

func (s *Server) newEngine(id string) *memory.Engine {
	return &memory.Engine{
		Schema:         s.schema,
		Tree:           memory.NewTree(),
		State:          memory.NewMemoryState(),
		BaseCtx:        map[string]any{"session_id": id},
		VisibilityGate: s.memCfg.VisibilityGate,
	}
}

func (s *Server) loadSession(ctx context.Context, id string) (*sessionState, error) {
	snap, err := s.sessions.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return &sessionState{engine: s.newEngine(id)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}

	var rawTree map[string]any
	if snap.Tree != "" {
		if err := json.Unmarshal([]byte(snap.Tree), &rawTree); err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
	}

	state := memory.NewMemoryState()
	state.RestoreVisible([]string(snap.Visible))

	if snap.Pagination != "" {
		var pagination map[string]memory.Pagination
		if err := json.Unmarshal([]byte(snap.Pagination), &pagination); err != nil {
			return nil, fmt.Errorf("decode pagination: %w", err)
		}
		state.RestorePagination(pagination)
	}

	if snap.LoadState != "" {
		var loadState memory.LoadStateSnapshot
		if err := json.Unmarshal([]byte(snap.LoadState), &loadState); err != nil {
			return nil, fmt.Errorf("decode load state: %w", err)
		}
		state.RestoreLoadState(loadState)
	}

	var messages []service.Message
	if snap.Messages != "" {
		if err := json.Unmarshal([]byte(snap.Messages), &messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
	}

	return &sessionState{
		engine: &memory.Engine{
			Schema:         s.schema,
			Tree:           memory.DecodeValues(s.schema, rawTree),
			State:          state,
			BaseCtx:        map[string]any{"session_id": id},
			VisibilityGate: s.memCfg.VisibilityGate,
		},
		messages: messages,
	}, nil
}

func (s *Server) saveSession(ctx context.Context, id string, sess *sessionState) error {
	treeBytes, err := json.Marshal(sess.engine.Tree.EncodeValues())
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	paginationBytes, err := json.Marshal(sess.engine.State.SnapshotPagination())
	if err != nil {
		return fmt.Errorf("encode pagination: %w", err)
	}
	loadStateBytes, err := json.Marshal(sess.engine.State.SnapshotLoadState())
	if err != nil {
		return fmt.Errorf("encode load state: %w", err)
	}
	messagesBytes, err := json.Marshal(sess.messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	return s.sessions.Save(ctx, session.Snapshot{
		ID:         id,
		Tree:       string(treeBytes),
		Visible:    types.Slice[string](sess.engine.State.VisiblePaths()),
		Pagination: string(paginationBytes),
		LoadState:  string(loadStateBytes),
		Messages:   string(messagesBytes),
	})
}

type turnRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	Reply   string            `json:"reply"`
	Results []memory.OpResult `json:"results,omitempty"`
	Memory  string            `json:"memory"`
}

// ChatTurn handles POST /v1/sessions/{id}/turn: it loads the named session
// (creating an empty one on first use), runs one user message through the
// LLM's tool-calling loop against the session's memory engine, persists the
// updated tree, visibility overlay and conversation, and returns the
// assistant's reply alongside the per-op results and the next render.
func (s *Server) ChatTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpResponse(w, "session id is required", http.StatusBadRequest)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpResponse(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		httpResponse(w, "message is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	sess, err := s.loadSession(ctx, id)
	if err != nil {
		slog.Error("load session", "id", id, "error", err)
		httpResponse(w, fmt.Sprintf("load session: %v", err), http.StatusInternalServerError)
		return
	}

	var results []memory.OpResult
	executor := service.NewMemoryToolExecutor(func(ctx context.Context, arguments map[string]any) (any, error) {
		opResults, err := memory.HandleToolCall(ctx, sess.engine, arguments)
		if err != nil {
			return nil, err
		}
		results = append(results, opResults...)
		return opResults, nil
	})

	agent := service.NewAgent(executor, s.provider)
	agent.Seed(sess.messages)
	agent.Tools = []service.Tool{s.memoryTool}

	reply, err := agent.Run(ctx, req.Message)
	if err != nil {
		slog.Error("run chat turn", "id", id, "error", err)
		httpResponse(w, fmt.Sprintf("run turn: %v", err), http.StatusBadGateway)
		return
	}
	sess.messages = agent.Messages()

	if err := memory.Populate(ctx, s.schema, sess.engine.Tree, sess.engine.State, sess.engine.BaseCtx); err != nil {
		slog.Error("populate db-backed fields", "id", id, "error", err)
	}

	if err := s.saveSession(ctx, id, sess); err != nil {
		slog.Error("save session", "id", id, "error", err)
	}

	httpResponseJSON(w, turnResponse{
		Reply:   reply,
		Results: results,
		Memory:  memory.Render(s.schema, sess.engine.Tree, sess.engine.State),
	}, http.StatusOK)
}

// handleMCP mounts the manageMemory tool over the JSON-RPC MCP transport at
// /mcp/{id}, for MCP-speaking clients that drive the engine directly instead
// of going through the chat-turn tool-calling loop. A fresh *mcp.MCP is built
// per request because mcp.ToolHandler carries no context or session
// parameter; the closure below captures this request's loaded engine
// instead.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpResponse(w, "session id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	sess, err := s.loadSession(ctx, id)
	if err != nil {
		slog.Error("load session", "id", id, "error", err)
		httpResponse(w, fmt.Sprintf("load session: %v", err), http.StatusInternalServerError)
		return
	}

	mc := mcp.New()
	mc.AddTool(mcp.Tool{
		Name:        s.memoryTool.Name,
		Description: s.memoryTool.Description,
		InputSchema: s.memoryTool.InputSchema,
	}, func(arguments map[string]any) (any, error) {
		return memory.HandleToolCall(ctx, sess.engine, arguments)
	})

	mc.ServeHTTP(w, r)

	if err := s.saveSession(ctx, id, sess); err != nil {
		slog.Error("save session after mcp call", "id", id, "error", err)
	}
}
