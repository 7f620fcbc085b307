package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionInsert, insert)
}

// insert places a value at a specific index of an array field, shifting
// later elements right. op.Index == -1 behaves like add.
func insert(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
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
		if arrayField.DB.Insert != nil {
			if err := arrayField.DB.Insert(e.Ctx, step.DBContext, op.Index, encoded); err != nil {
				return "", fmt.Errorf("inserting into %s: %w", step.Path, err)
			}
			e.State.MarkStale(step.Path)
		}
	}

	index := op.Index
	if index < 0 {
		current, _, err := e.Tree.Get(e.Schema, step.Path)
		if err != nil {
			return "", err
		}
		arr, _ := current.([]any)
		index = len(arr)
	}

	if err := e.Tree.InsertAtStep(step, index, value); err != nil {
		return "", err
	}
	return "", nil
}
