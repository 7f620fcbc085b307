package ops_test

import (
	"context"

	"github.com/indigofenix/aac/internal/memory"
	_ "github.com/indigofenix/aac/internal/memory/ops"
)

// opsTestSchema mirrors the fixture in package memory's own tests, scoped
// locally since package ops_test cannot reach unexported test helpers across
// package boundaries.
func opsTestSchema() *memory.Schema {
	profile := &memory.Field{
		ID:   "profile",
		Kind: memory.KindObject,
		Properties: map[string]*memory.Field{
			"name": {ID: "name", Kind: memory.KindString},
		},
		PropertyOrder:        []string{"name"},
		Required:             map[string]struct{}{"name": {}},
		AdditionalProperties: false,
	}

	contacts := &memory.Field{
		ID:         "contacts",
		Kind:       memory.KindMap,
		KeyPattern: `^[A-Z][a-zA-Z]*$`,
		Values: &memory.Field{
			ID:   "contact",
			Kind: memory.KindObject,
			Properties: map[string]*memory.Field{
				"relation": {ID: "relation", Kind: memory.KindString},
			},
			PropertyOrder:        []string{"relation"},
			AdditionalProperties: false,
		},
		MaxProperties: intp(5),
	}

	vocabulary := &memory.Field{
		ID:    "vocabulary",
		Kind:  memory.KindArray,
		Items: &memory.Field{ID: "word", Kind: memory.KindString},
	}

	topics := &memory.Field{
		ID:                "topics",
		Kind:              memory.KindTopic,
		MaxDepth:          intp(3),
		MaxBreadthPerNode: intp(2),
	}

	return memory.NewSchema(
		[]string{"profile", "contacts", "vocabulary", "topics"},
		map[string]*memory.Field{
			"profile":    profile,
			"contacts":   contacts,
			"vocabulary": vocabulary,
			"topics":     topics,
		},
	)
}

func newOpsEngine() *memory.Engine {
	return &memory.Engine{
		Schema:         opsTestSchema(),
		Tree:           memory.NewTree(),
		State:          memory.NewMemoryState(),
		Ctx:            context.Background(),
		BaseCtx:        map[string]any{},
		VisibilityGate: true,
	}
}

func intp(v int) *int { return &v }
