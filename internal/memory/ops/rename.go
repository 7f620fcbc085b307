package ops

import (
	"fmt"
	"regexp"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionRename, rename)
}

// rename changes the key of an object property, map entry, or topic node in
// place, preserving its value/subtree. The new key is carried in op.NewKey.
func rename(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	if op.NewKey == "" {
		return "", fmt.Errorf("rename requires a new key")
	}
	if !step.Exists {
		return "", fmt.Errorf("%s does not exist", step.Path)
	}
	if step.Kind == memory.StepMapValue && step.ParentField != nil && step.ParentField.KeyPattern != "" {
		re, err := regexp.Compile(step.ParentField.KeyPattern)
		if err != nil {
			return "", fmt.Errorf("invalid keyPattern on %s: %w", step.ParentPath, err)
		}
		if !re.MatchString(op.NewKey) {
			return "", fmt.Errorf("new key %q does not match keyPattern %q", op.NewKey, step.ParentField.KeyPattern)
		}
	}

	binding := dbBindingFor(step)
	if binding != nil && binding.Rename != nil {
		if err := binding.Rename(e.Ctx, step.DBContext, step.Key, op.NewKey); err != nil {
			return "", fmt.Errorf("renaming %s: %w", step.Path, err)
		}
	}

	oldPath := step.Path
	if err := e.Tree.RenameKey(step, op.NewKey); err != nil {
		return "", err
	}

	newPath, _ := memory.Parent(oldPath)
	newPath = memory.Child(newPath, op.NewKey)
	if e.State.IsVisible(oldPath) {
		e.State.Open(newPath)
	}
	e.State.CloseDescendants(oldPath)

	return fmt.Sprintf("renamed to %s", newPath), nil
}
