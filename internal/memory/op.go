package memory

import "context"

// Action names the closed set of operations manageMemory accepts.
type Action string

const (
	ActionView   Action = "view"
	ActionHide   Action = "hide"
	ActionSet    Action = "set"
	ActionUpsert Action = "upsert"
	ActionAdd    Action = "add"
	ActionInsert Action = "insert"
	ActionDelete Action = "delete"
	ActionClear  Action = "clear"
	ActionRename Action = "rename"
)

// Op is a single instruction out of a manageMemory batch call.
type Op struct {
	Action Action
	Path   string
	Value  any    // set/upsert/add/insert
	Index  int    // insert; -1 means append
	Key    string // upsert/add (map key), existing key a rename targets
	NewKey string // rename: the key to rename to
	Offset int    // view pagination
	Limit  int    // view pagination

	// OpenChildren overrides view's default open-children behavior when
	// non-nil; nil means "apply the kind-based default" (see ops/view.go).
	OpenChildren *bool
}

// OpResult is the per-operation outcome returned to the caller, matching
// spec.md §5's batch contract: execution never stops early and results come
// back in op order. An op gets one result, except a wildcard view/hide, which
// gets one result per expanded child (see ApplyBatch).
type OpResult struct {
	Path    string
	Ok      bool
	Message string
}

// Engine bundles everything an operation handler needs: the schema, the live
// tree, the visibility overlay, and ambient context (ctx for DB calls, a base
// DBContext seed).
type Engine struct {
	Schema  *Schema
	Tree    *Tree
	State   *MemoryState
	Ctx     context.Context
	BaseCtx map[string]any

	// VisibilityGate carries the configured gate setting. ApplyBatch does not
	// consult it: view/hide, wildcard expansion and mutations run the same
	// whether it is true or false, and mutations do not require the target
	// to be visible.
	VisibilityGate bool
}

// OpHandler executes one resolved operation against e, returning the message
// to surface on success (empty is fine) or an error (folded into OpResult by
// the caller).
type OpHandler func(e *Engine, op Op, step *SchemaStep) (string, error)

var registry = map[Action]OpHandler{}

// RegisterOp installs the handler for an action. Called from ops/*.go init()
// functions, one per action.
func RegisterOp(action Action, handler OpHandler) {
	registry[action] = handler
}

func lookupOp(action Action) (OpHandler, bool) {
	h, ok := registry[action]
	return h, ok
}

// resolveForOp resolves op.Path, threading the engine's DB context. It
// applies no visibility gating. Non-wildcard ops call this
// directly; wildcard expansion happens one level up in ApplyBatch.
func (e *Engine) resolveForOp(path string) (*SchemaStep, error) {
	return Resolve(e.Schema, e.Tree.Values, path, e.BaseCtx)
}

// CheckTopicBounds enforces maxDepth/maxBreadthPerNode before a new subtopic
// is added under nodePath, per spec.md §3's topic invariants.
func CheckTopicBounds(field *Field, tree *TopicTree, nodePath []string) error {
	if field.MaxDepth != nil && len(nodePath)+1 > *field.MaxDepth {
		return topicErrorf("adding a subtopic under %v would exceed maxDepth %d", nodePath, *field.MaxDepth)
	}
	if field.MaxBreadthPerNode != nil && tree.breadthAt(nodePath) >= *field.MaxBreadthPerNode {
		return topicErrorf("node %v already has maxBreadthPerNode %d subtopics", nodePath, *field.MaxBreadthPerNode)
	}
	return nil
}
