package ops

import (
	"fmt"

	"github.com/indigofenix/aac/internal/memory"
)

func init() {
	memory.RegisterOp(memory.ActionClear, clear)
}

// clear empties a container in place without removing the field or key
// itself: an object becomes {}, an array becomes [], a map becomes {}, and a
// topic node's subtopics become {} (its own description is untouched).
func clear(e *memory.Engine, op memory.Op, step *memory.SchemaStep) (string, error) {
	field := step.Field
	if field == nil {
		return "", fmt.Errorf("no schema governs %s", step.Path)
	}
	if field.Kind != memory.KindObject && field.Kind != memory.KindArray && field.Kind != memory.KindMap &&
		field.Kind != memory.KindTopic && step.Kind != memory.StepTopicSubtopics {
		return "", fmt.Errorf("%s is not a container", step.Path)
	}

	if field.DB != nil && field.DB.Clear != nil {
		if err := field.DB.Clear(e.Ctx, step.DBContext); err != nil {
			return "", fmt.Errorf("clearing %s: %w", step.Path, err)
		}
	}

	if err := e.Tree.Clear(step); err != nil {
		return "", err
	}
	return "", nil
}
