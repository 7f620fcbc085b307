package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionDelete, del)
}

// delete removes the value at path from its parent entirely: an object
// property or map entry disappears, an array element is spliced out, a
// topic node is removed along with its whole subtree.
func del(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	if !step.Exists {
		return "", fmt.Errorf("%s does not exist", step.Path)
	}
	if step.Kind == memory.StepObjectProp && step.ParentField.IsRequired(step.Key) {
		return "", fmt.Errorf("%q is required on %s and cannot be deleted", step.Key, step.ParentPath)
	}

	binding := dbBindingFor(step)
	if binding != nil && binding.Delete != nil {
		if err := binding.Delete(e.Ctx, step.DBContext, step.Key); err != nil {
			return "", fmt.Errorf("deleting %s: %w", step.Path, err)
		}
	}

	if err := e.Tree.Delete(step); err != nil {
		return "", err
	}
	e.State.CloseDescendants(step.Path)
	return "", nil
}

// dbBindingFor returns the DB binding governing the container step's value
// lives in, which for keyed/indexed steps is the container field's own
// binding (arrays/maps/objects carry one DB per field, not per element).
func dbBindingFor(step *memory.SchemaStep) *memory.DBBinding {
	if step.ParentField != nil {
		switch step.Kind {
		case memory.StepArrayItem:
			if step.ParentField.DB != nil {
				return step.ParentField.DB
			}
		case memory.StepObjectProp, memory.StepMapValue:
			if step.ParentField.DB != nil {
				return step.ParentField.DB
			}
		}
	}
	if step.Field != nil {
		return step.Field.DB
	}
	return nil
}
