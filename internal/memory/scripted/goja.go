// Package scripted adapts author-supplied JavaScript snippets into
// memory.DBBinding hooks, for deployments that want to back a field with a
// lightweight scripted store instead of writing Go CRUD hooks by hand.
package scripted

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	"github.com/indigofenix/aac/internal/memory"
)

// Hooks is the source form: one JS expression body per CRUD operation. Each
// body runs as an IIFE with `ctx` (the DBContext map) and the relevant
// positional arguments (`key`, `value`, `index`, `offset`, `limit`) bound as
// globals, mirroring how workflow tool handlers receive `args`.
type Hooks struct {
	Read   string
	Write  string
	List   string
	Get    string
	Add    string
	Insert string
	Update string
	Upsert string
	Delete string
	Clear  string
	Rename string

	// ExtractChildContext, if set, runs for every traversal step and must
	// return an object merged into the child's DBContext.
	ExtractChildContext string
}

// Bind compiles hooks into a *memory.DBBinding. Every hook is independently
// optional: an empty string leaves the corresponding DBBinding field nil.
func Bind(hooks Hooks) *memory.DBBinding {
	binding := &memory.DBBinding{}

	if hooks.Read != "" {
		body := hooks.Read
		binding.Read = func(ctx context.Context, dbCtx map[string]any) (any, error) {
			return runExpr(body, map[string]any{"ctx": dbCtx})
		}
	}
	if hooks.Write != "" {
		body := hooks.Write
		binding.Write = func(ctx context.Context, dbCtx map[string]any, value any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "value": value})
			return err
		}
	}
	if hooks.List != "" {
		body := hooks.List
		binding.List = func(ctx context.Context, dbCtx map[string]any, offset, limit int) ([]any, int, error) {
			raw, err := runExpr(body, map[string]any{"ctx": dbCtx, "offset": offset, "limit": limit})
			if err != nil {
				return nil, 0, err
			}
			return decodeListResult(raw)
		}
	}
	if hooks.Get != "" {
		body := hooks.Get
		binding.Get = func(ctx context.Context, dbCtx map[string]any, key string) (any, bool, error) {
			raw, err := runExpr(body, map[string]any{"ctx": dbCtx, "key": key})
			if err != nil {
				return nil, false, err
			}
			if raw == nil {
				return nil, false, nil
			}
			return raw, true, nil
		}
	}
	if hooks.Add != "" {
		body := hooks.Add
		binding.Add = func(ctx context.Context, dbCtx map[string]any, value any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "value": value})
			return err
		}
	}
	if hooks.Insert != "" {
		body := hooks.Insert
		binding.Insert = func(ctx context.Context, dbCtx map[string]any, index int, value any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "index": index, "value": value})
			return err
		}
	}
	if hooks.Update != "" {
		body := hooks.Update
		binding.Update = func(ctx context.Context, dbCtx map[string]any, key string, value any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "key": key, "value": value})
			return err
		}
	}
	if hooks.Upsert != "" {
		body := hooks.Upsert
		binding.Upsert = func(ctx context.Context, dbCtx map[string]any, key string, value any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "key": key, "value": value})
			return err
		}
	}
	if hooks.Delete != "" {
		body := hooks.Delete
		binding.Delete = func(ctx context.Context, dbCtx map[string]any, key string) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "key": key})
			return err
		}
	}
	if hooks.Clear != "" {
		body := hooks.Clear
		binding.Clear = func(ctx context.Context, dbCtx map[string]any) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx})
			return err
		}
	}
	if hooks.Rename != "" {
		body := hooks.Rename
		binding.Rename = func(ctx context.Context, dbCtx map[string]any, oldKey, newKey string) error {
			_, err := runExpr(body, map[string]any{"ctx": dbCtx, "oldKey": oldKey, "newKey": newKey})
			return err
		}
	}
	if hooks.ExtractChildContext != "" {
		body := hooks.ExtractChildContext
		binding.ExtractChildContext = func(value any, nextKey string) map[string]any {
			raw, err := runExpr(body, map[string]any{"value": value, "nextKey": nextKey})
			if err != nil {
				return nil
			}
			m, _ := raw.(map[string]any)
			return m
		}
	}

	return binding
}

// runExpr evaluates body as an IIFE in a fresh VM, with globals bound from
// env, and exports the JS return value as a Go value. A fresh goja.Runtime
// per call keeps each invocation isolated; the engine never calls these
// hooks at a rate that makes VM setup cost matter.
func runExpr(body string, env map[string]any) (any, error) {
	vm := goja.New()
	for k, v := range env {
		if err := vm.Set(k, v); err != nil {
			return nil, fmt.Errorf("scripted hook: binding %q: %w", k, err)
		}
	}

	script := "(function() {\n" + body + "\n})()"
	val, err := vm.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("scripted hook: %w", err)
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	return val.Export(), nil
}

func decodeListResult(raw any) ([]any, int, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("scripted list hook must return {items, total}")
	}
	items, _ := m["items"].([]any)
	total, ok := toInt(m["total"])
	if !ok {
		total = len(items)
	}
	return items, total, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// MarshalContext is a convenience for hooks that want to log/debug the
// accumulated DBContext as JSON.
func MarshalContext(ctx map[string]any) string {
	b, err := json.Marshal(ctx)
	if err != nil {
		return "{}"
	}
	return string(b)
}
