package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// LLMProvider is the generic chat-completion interface a model provider
// implements to drive an Agent's tool-calling loop.
type LLMProvider interface {
	// Chat sends messages to the LLM and returns a response.
	// The model parameter allows per-request model override;
	// if empty, the provider's default model is used.
	Chat(ctx context.Context, model string, messages []Message, tools []Tool) (*LLMResponse, error)
}

// ToolExecutor runs a single tool call against whatever backs the Agent's
// tool surface. In this service it is always the structured memory engine,
// called in-process rather than over a network round trip.
type ToolExecutor interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (string, error)
}

// Tool is the provider-agnostic description of a callable tool, matching the
// shape both Anthropic's tool-use API and the MCP tools/list response use.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // Can be string or array of content blocks
}

type ContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	Source    *MediaSource   `json:"source,omitempty"` // For media content blocks (images, documents, audio, video — Anthropic format)
}

// MediaSource represents a media source for content blocks (images, documents, audio, video).
// Used by Anthropic-format content blocks where the source contains base64-encoded data
// or a URL reference.
type MediaSource struct {
	Type      string `json:"type"`                 // "base64" or "url"
	MediaType string `json:"media_type,omitempty"` // e.g. "image/png", "application/pdf", "audio/wav"
	Data      string `json:"data,omitempty"`       // base64-encoded data (when type="base64")
	URL       string `json:"url,omitempty"`        // URL reference (when type="url")
}

// Usage contains token usage statistics from the upstream provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type LLMResponse struct {
	Content   string
	ToolCalls []ToolCall
	Finished  bool
	Usage     Usage
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Agent drives a single chat turn: it sends the running conversation to the
// provider, executes any requested tool calls against the memory engine, and
// repeats until the provider reports it is done.
type Agent struct {
	tools    ToolExecutor
	provider LLMProvider
	messages []Message

	Tools []Tool
}

func NewAgent(tools ToolExecutor, provider LLMProvider) *Agent {
	return &Agent{
		tools:    tools,
		provider: provider,
		messages: []Message{},
		Tools:    []Tool{},
	}
}

// Seed replaces the conversation history, for resuming a persisted session.
func (a *Agent) Seed(messages []Message) {
	a.messages = messages
}

// Messages returns the current conversation history, for persisting a
// session after a turn completes.
func (a *Agent) Messages() []Message {
	return a.messages
}

// Run appends userMessage to the conversation and drives the tool-calling
// loop until the provider returns a final, non-tool-use response.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	a.messages = append(a.messages, Message{
		Role:    "user",
		Content: userMessage,
	})

	var final string

	for {
		resp, err := a.provider.Chat(ctx, "", a.messages, a.Tools)
		if err != nil {
			return "", err
		}

		final = resp.Content

		var assistantContent []ContentBlock
		if resp.Content != "" {
			assistantContent = append(assistantContent, ContentBlock{
				Type: "text",
				Text: resp.Content,
			})
		}
		for _, tc := range resp.ToolCalls {
			assistantContent = append(assistantContent, ContentBlock{
				Type:  "tool_use",
				ID:    tc.ID,
				Name:  tc.Name,
				Input: tc.Arguments,
			})
		}

		a.messages = append(a.messages, Message{
			Role:    "assistant",
			Content: assistantContent,
		})

		if resp.Finished {
			break
		}

		if len(resp.ToolCalls) == 0 {
			break
		}

		var toolResults []ContentBlock
		for _, tc := range resp.ToolCalls {
			slog.Debug("agent tool call", "name", tc.Name, "arguments", tc.Arguments)

			result, err := a.tools.CallTool(ctx, tc.Name, tc.Arguments)
			if err != nil {
				result = fmt.Sprintf("error: %v", err)
			}

			toolResults = append(toolResults, ContentBlock{
				Type:      "tool_result",
				ToolUseID: tc.ID,
				Name:      tc.Name,
				Content:   result,
			})
		}

		a.messages = append(a.messages, Message{
			Role:    "user",
			Content: toolResults,
		})
	}

	return final, nil
}

// memoryToolExecutor adapts a structured memory engine to the ToolExecutor
// interface, so an Agent can call it without a network round trip.
type memoryToolExecutor struct {
	call func(ctx context.Context, arguments map[string]any) (any, error)
}

// NewMemoryToolExecutor wraps a handler function (typically
// memory.HandleToolCall bound to one session's Engine) as a ToolExecutor.
func NewMemoryToolExecutor(call func(ctx context.Context, arguments map[string]any) (any, error)) ToolExecutor {
	return &memoryToolExecutor{call: call}
}

func (m *memoryToolExecutor) CallTool(ctx context.Context, name string, arguments map[string]any) (string, error) {
	result, err := m.call(ctx, arguments)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}

	return string(encoded), nil
}
