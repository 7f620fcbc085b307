package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionUpsert, upsert)
}

// upsert creates or replaces one entry of a map-kind field without touching
// its sibling entries. path may address the map container directly (with
// op.Key naming the entry) or an existing entry path (op.Key empty, reusing
// the path's own key) — both forms resolve to the same write.
func upsert(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	mapField := step.Field
	key := op.Key
	entryStep := step

	if step.Kind != memory.StepMapValue {
		if key == "" {
			return "", fmt.Errorf("upsert on %s requires a key", step.Path)
		}
		if mapField == nil || mapField.Kind != memory.KindMap {
			return "", fmt.Errorf("%s is not a map field", step.Path)
		}
		entryPath := memory.Child(step.Path, key)
		var err error
		entryStep, err = memory.Resolve(e.Schema, e.Tree.Values, entryPath, step.DBContext)
		if err != nil {
			return "", err
		}
		mapField = mapField.Values
	} else {
		if key == "" {
			key = step.Key
		}
		mapField = step.Field
	}

	if err := memory.Validate(mapField, op.Value, true); err != nil {
		return "", err
	}

	if mapField != nil && mapField.DB != nil {
		encoded, err := mapField.DB.EncodeToDB(op.Value)
		if err != nil {
			return "", fmt.Errorf("encoding %s for store: %w", entryStep.Path, err)
		}
		if mapField.DB.Upsert != nil {
			if err := mapField.DB.Upsert(e.Ctx, entryStep.DBContext, key, encoded); err != nil {
				return "", fmt.Errorf("upserting %s: %w", entryStep.Path, err)
			}
			e.State.MarkLoaded(entryStep.Path)
		}
	}

	if err := e.Tree.UpsertAtStep(entryStep, op.Value); err != nil {
		return "", err
	}
	return "", nil
}
