package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolName is the single tool name the engine exposes to an LLM.
const ToolName = "manageMemory"

// ToolDescription is the model-facing summary of what the tool does.
const ToolDescription = "View, hide, and edit your structured memory. Accepts a batch of operations and applies them in order."

// BuildInputSchema returns the JSON Schema for manageMemory's arguments: a
// single batch of operations, each naming an action, a path, and whatever
// extra fields that action needs.
func BuildInputSchema() *jsonschema.Schema {
	opSchema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"action": {
				Type: "string",
				Enum: []any{"view", "hide", "set", "upsert", "add", "insert", "delete", "clear", "rename"},
			},
			"path": {
				Type:        "string",
				Description: "JSON-Pointer-style path, e.g. /profile/name or /notes/*",
			},
			"paths": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Multiple paths to apply the same op to, instead of path.",
			},
			"value":  {Description: "Value for set/upsert/add/insert."},
			"key":    {Type: "string", Description: "Map key for upsert/add, or subtopic name for add on a topic."},
			"newKey": {Type: "string", Description: "Target key for rename."},
			"index":  {Type: "integer", Description: "Array index for insert."},
			"offset": {Type: "integer", Description: "Pagination offset for view."},
			"limit":  {Type: "integer", Description: "Pagination page size for view."},
			"page": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"offset": {Type: "integer"},
					"limit":  {Type: "integer"},
				},
				Description: "Pagination window for view, alternative to offset/limit.",
			},
			"openChildren": {
				Type:        "boolean",
				Description: "For view: whether to also open the target's immediate children. Defaults to true for object/array/map/topic, false otherwise.",
			},
		},
		Required: []string{"action"},
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"operations": {
				Type:  "array",
				Items: opSchema,
			},
		},
		Required: []string{"operations"},
	}
}

// BuildTool renders the JSON Schema as the plain map[string]any shape the
// MCP Tool wire type expects.
func BuildTool() (map[string]any, error) {
	b, err := json.Marshal(BuildInputSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling manageMemory schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding manageMemory schema: %w", err)
	}
	return m, nil
}

// rawPage mirrors the wire shape of an op's page field.
type rawPage struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// rawOp mirrors the wire shape of one operation argument.
type rawOp struct {
	Action       string   `json:"action"`
	Path         string   `json:"path"`
	Paths        []string `json:"paths"`
	Value        any      `json:"value"`
	Key          string   `json:"key"`
	NewKey       string   `json:"newKey"`
	Index        *int     `json:"index"`
	Offset       int      `json:"offset"`
	Limit        int      `json:"limit"`
	Page         *rawPage `json:"page"`
	OpenChildren *bool    `json:"openChildren"`
}

type toolArgs struct {
	Operations []rawOp `json:"operations"`
}

// HandleToolCall decodes a manageMemory call's arguments, runs the batch
// against e, and returns the per-op results ready for JSON encoding back to
// the LLM.
func HandleToolCall(ctx context.Context, e *Engine, arguments map[string]any) ([]OpResult, error) {
	e.Ctx = ctx

	raw, err := json.Marshal(arguments)
	if err != nil {
		return nil, fmt.Errorf("re-encoding tool arguments: %w", err)
	}
	var args toolArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decoding manageMemory arguments: %w", err)
	}

	ops := make([]Op, 0, len(args.Operations))
	for _, r := range args.Operations {
		index := -1
		if r.Index != nil {
			index = *r.Index
		}

		offset, limit := r.Offset, r.Limit
		if r.Page != nil {
			offset, limit = r.Page.Offset, r.Page.Limit
		}

		paths := r.Paths
		if len(paths) == 0 {
			paths = []string{r.Path}
		}

		for _, p := range paths {
			ops = append(ops, Op{
				Action:       Action(r.Action),
				Path:         p,
				Value:        r.Value,
				Key:          r.Key,
				NewKey:       r.NewKey,
				Index:        index,
				Offset:       offset,
				Limit:        limit,
				OpenChildren: r.OpenChildren,
			})
		}
	}

	return ApplyBatch(e, ops), nil
}
