package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigofenix/aac/internal/memory"
	_ "github.com/indigofenix/aac/internal/memory/ops"
)

func newTestEngine() *memory.Engine {
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
	}
	schema := memory.NewSchema([]string{"profile", "contacts"}, map[string]*memory.Field{
		"profile":  profile,
		"contacts": contacts,
	})

	return &memory.Engine{
		Schema:         schema,
		Tree:           memory.NewTree(),
		State:          memory.NewMemoryState(),
		Ctx:            context.Background(),
		BaseCtx:        map[string]any{},
		VisibilityGate: true,
	}
}

func TestApplyBatch_SetAutoOpensWrittenPath(t *testing.T) {
	e := newTestEngine()
	e.Tree.Values["profile"] = map[string]any{"name": "Ana"}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionSet, Path: "/profile/name", Value: "Ben"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/profile/name"))
}

func TestApplyBatch_DeleteDoesNotLeavePathVisible(t *testing.T) {
	e := newTestEngine()
	e.Tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}
	e.State.Open("/contacts/Ana")

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionDelete, Path: "/contacts/Ana"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.False(t, e.State.IsVisible("/contacts/Ana"))
}

func TestApplyBatch_RenameDoesNotLeaveOldPathVisible(t *testing.T) {
	e := newTestEngine()
	e.Tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}
	e.State.Open("/contacts/Ana")

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionRename, Path: "/contacts/Ana", NewKey: "Anabelle"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.False(t, e.State.IsVisible("/contacts/Ana"))
	assert.True(t, e.State.IsVisible("/contacts/Anabelle"))
}

func TestApplyBatch_ContinuesPastFailedOp(t *testing.T) {
	e := newTestEngine()

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionDelete, Path: "/profile/name"},
		{Action: memory.ActionSet, Path: "/profile/name", Value: "Cal"},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Ok)
	assert.True(t, results[1].Ok)
}

func TestApplyBatch_WildcardExpandsOverCurrentChildren(t *testing.T) {
	e := newTestEngine()
	e.Tree.Values["contacts"] = map[string]any{
		"Ana": map[string]any{"relation": "sister"},
		"Bob": map[string]any{"relation": "brother"},
	}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/contacts/*"},
	})

	require.Len(t, results, 2)
	assert.True(t, e.State.IsVisible("/contacts/Ana"))
	assert.True(t, e.State.IsVisible("/contacts/Bob"))
}

func TestApplyBatch_WildcardRejectedForNonViewHideActions(t *testing.T) {
	e := newTestEngine()

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionSet, Path: "/contacts/*", Value: "x"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Ok)
}
