package ops

import "github.com/indigofenix/aac/internal/memory"

func init() {
	memory.RegisterOp(memory.ActionHide, hide)
}

// hide closes path and everything nested under it. It never touches the
// underlying value; a hidden path's data is still in the tree and reopening
// it brings the same value back.
func hide(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	e.State.CloseDescendants(step.Path)
	return "", nil
}
