// Package ops holds one file per manageMemory action. Each file registers
// its handler from an init() function, mirroring the self-registering
// handler-per-file pattern the workflow engine this package is modeled on
// uses for its node types.
package ops

import (
	"fmt"
	"strconv"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionView, view)
}

// view marks a path visible and, for DB-backed paginated containers,
// triggers a List load into the tree for the requested window. It never
// mutates the value itself.
func view(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	e.State.Open(step.Path)

	if op.Limit > 0 || op.Offset > 0 {
		e.State.SetPagination(step.Path, memory.Pagination{Offset: op.Offset, Limit: op.Limit})
	}

	openChildren := defaultOpenChildren(step)
	if op.OpenChildren != nil {
		openChildren = *op.OpenChildren
	}
	if openChildren {
		if keys := childKeysOf(e, step); len(keys) > 0 {
			e.State.OpenChildren(step.Path, keys)
		}
	}

	binding := step.Field
	if binding == nil || binding.DB == nil || binding.DB.List == nil {
		return "", nil
	}

	items, total, err := binding.DB.List(e.Ctx, step.DBContext, op.Offset, op.Limit)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", step.Path, err)
	}

	converted := make([]any, len(items))
	for i, raw := range items {
		v, err := binding.DB.DecodeFromDB(raw)
		if err != nil {
			return "", fmt.Errorf("decoding item %d of %s: %w", i, step.Path, err)
		}
		converted[i] = v
	}

	if err := e.Tree.SetAtStep(step, converted); err != nil {
		return "", fmt.Errorf("storing loaded items for %s: %w", step.Path, err)
	}
	e.State.MarkLoaded(step.Path)
	e.State.SetTotal(step.Path, total)

	return "", nil
}

// defaultOpenChildren implements view's documented default: containers open
// their immediate children, primitives and topic descriptions don't.
func defaultOpenChildren(step *memory.SchemaStep) bool {
	switch step.Kind {
	case memory.StepTopicDescription:
		return false
	case memory.StepTopicNode, memory.StepTopicSubtopics:
		return true
	}
	if step.Field == nil {
		return false
	}
	switch step.Field.Kind {
	case memory.KindObject, memory.KindArray, memory.KindMap, memory.KindTopic:
		return true
	default:
		return false
	}
}

// childKeysOf enumerates the current immediate child keys/indices of step's
// value, for feeding MemoryState.OpenChildren.
func childKeysOf(e *memory.Engine, step *memory.SchemaStep) []string {
	if step.Kind == memory.StepTopicNode || step.Kind == memory.StepTopicSubtopics {
		return topicChildKeys(e, step)
	}
	if step.Field == nil {
		return nil
	}

	switch step.Field.Kind {
	case memory.KindTopic:
		return topicChildKeys(e, step)
	case memory.KindObject, memory.KindMap:
		value, exists, _ := e.Tree.Get(e.Schema, step.Path)
		if !exists {
			return nil
		}
		m, _ := value.(map[string]any)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		return keys
	case memory.KindArray:
		value, exists, _ := e.Tree.Get(e.Schema, step.Path)
		if !exists {
			return nil
		}
		arr, _ := value.([]any)
		keys := make([]string, len(arr))
		for i := range arr {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	default:
		return nil
	}
}

func topicChildKeys(e *memory.Engine, step *memory.SchemaStep) []string {
	tree, _ := e.Tree.Values[step.Field.ID].(*memory.TopicTree)
	if tree == nil {
		return nil
	}
	nodeMap, ok := tree.ChildrenAt(step.NodePath)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(nodeMap))
	for k := range nodeMap {
		keys = append(keys, k)
	}
	return keys
}
