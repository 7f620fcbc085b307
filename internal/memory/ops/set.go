package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionSet, set)
}

// set replaces the whole value at path, validating it deeply since set can
// overwrite an entire subtree in one call.
func set(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	if step.Field == nil {
		return "", fmt.Errorf("no schema governs %s", step.Path)
	}
	if err := memory.Validate(step.Field, op.Value, true); err != nil {
		return "", err
	}

	value := op.Value
	if step.Field.DB != nil {
		encoded, err := step.Field.DB.EncodeToDB(value)
		if err != nil {
			return "", fmt.Errorf("encoding %s for store: %w", step.Path, err)
		}
		if step.Field.DB.Write != nil {
			if err := step.Field.DB.Write(e.Ctx, step.DBContext, encoded); err != nil {
				return "", fmt.Errorf("writing %s: %w", step.Path, err)
			}
			e.State.MarkLoaded(step.Path)
		}
	}

	parentSeeded := false
	if step.Kind == memory.StepObjectProp {
		if _, exists, err := e.Tree.Get(e.Schema, step.ParentPath); err == nil && !exists {
			parentSeeded = true
		}
	}

	if err := e.Tree.SetAtStep(step, value); err != nil {
		return "", err
	}
	if parentSeeded {
		e.State.Open(step.ParentPath)
	}
	return "", nil
}
