package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionAdd, add)
}

// add appends a value to the array field addressed by path, inserts a new
// entry under op.Key for a map field, or (for topic fields) creates a
// subtopic named by op.Key under the node path addresses.
func add(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	if step.Field != nil && step.Field.Kind == memory.KindTopic {
		return addTopicChild(e, op, step)
	}
	if step.Field != nil && step.Field.Kind == memory.KindMap {
		return addMapEntry(e, op, step)
	}

	arrayField := step.Field
	if arrayField == nil || arrayField.Kind != memory.KindArray {
		return "", fmt.Errorf("%s is not an array field", step.Path)
	}

	if err := memory.Validate(arrayField.Items, op.Value, true); err != nil {
		return "", err
	}

	value := op.Value
	if arrayField.DB != nil {
		encoded, err := arrayField.DB.EncodeToDB(value)
		if err != nil {
			return "", fmt.Errorf("encoding item for %s: %w", step.Path, err)
		}
		if arrayField.DB.Add != nil {
			if err := arrayField.DB.Add(e.Ctx, step.DBContext, encoded); err != nil {
				return "", fmt.Errorf("adding to %s: %w", step.Path, err)
			}
			e.State.MarkStale(step.Path)
		}
	}

	if err := e.Tree.AppendAtStep(step, value); err != nil {
		return "", err
	}
	return "", nil
}

// addMapEntry inserts a brand-new entry under op.Key into a map field,
// refusing a key already present rather than overwriting it (that's what
// upsert is for).
func addMapEntry(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	mapField := step.Field
	if op.Key == "" {
		return "", fmt.Errorf("adding to map %s requires a key", step.Path)
	}

	current, exists, err := e.Tree.Get(e.Schema, step.Path)
	if err != nil {
		return "", err
	}
	existing, _ := current.(map[string]any)
	if exists && existing != nil {
		if _, dup := existing[op.Key]; dup {
			return "", fmt.Errorf("key %q already exists in %s", op.Key, step.Path)
		}
	}

	candidate := make(map[string]any, len(existing)+1)
	for k, v := range existing {
		candidate[k] = v
	}
	candidate[op.Key] = op.Value
	if err := memory.Validate(mapField, candidate, true); err != nil {
		return "", err
	}

	entryPath := memory.Child(step.Path, op.Key)
	entryStep, err := memory.Resolve(e.Schema, e.Tree.Values, entryPath, step.DBContext)
	if err != nil {
		return "", err
	}

	value := op.Value
	if mapField.DB != nil {
		encoded, err := mapField.DB.EncodeToDB(value)
		if err != nil {
			return "", fmt.Errorf("encoding %s for store: %w", entryStep.Path, err)
		}
		switch {
		case mapField.DB.Add != nil:
			if err := mapField.DB.Add(e.Ctx, entryStep.DBContext, encoded); err != nil {
				return "", fmt.Errorf("adding to %s: %w", entryStep.Path, err)
			}
			e.State.MarkStale(step.Path)
		case mapField.DB.Upsert != nil:
			if err := mapField.DB.Upsert(e.Ctx, entryStep.DBContext, op.Key, encoded); err != nil {
				return "", fmt.Errorf("adding to %s: %w", entryStep.Path, err)
			}
			e.State.MarkStale(step.Path)
		}
	}

	if err := e.Tree.UpsertAtStep(entryStep, value); err != nil {
		return "", err
	}
	return "", nil
}

func addTopicChild(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	name := op.Key
	if name == "" {
		return "", fmt.Errorf("adding a subtopic requires a key naming it")
	}

	tree := e.Tree.EnsureTopicTree(step.Field.ID)
	if err := memory.CheckTopicBounds(step.Field, tree, step.NodePath); err != nil {
		return "", err
	}

	children, ok := tree.ChildrenAt(step.NodePath)
	if !ok {
		return "", fmt.Errorf("parent topic node %s does not exist", step.Path)
	}
	if _, exists := children[name]; exists {
		return "", fmt.Errorf("subtopic %q already exists under %s", name, step.Path)
	}

	node := memory.NewTopicNode()
	switch v := op.Value.(type) {
	case nil:
	case string:
		node.Description = &v
	default:
		node = memory.DecodeTopicNode(op.Value)
	}
	children[name] = node
	return "", nil
}
