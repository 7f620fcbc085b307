package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigofenix/aac/internal/memory"
)

func TestDelete_RefusesRequiredProperty(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["profile"] = map[string]any{"name": "Ana"}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionDelete, Path: "/profile/name"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Ok)
	assert.Contains(t, e.Tree.Values["profile"].(map[string]any), "name")
}

func TestDelete_AllowsOptionalMapEntry(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionDelete, Path: "/contacts/Ana"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	_, exists := e.Tree.Values["contacts"].(map[string]any)["Ana"]
	assert.False(t, exists)
}

func TestDelete_NonexistentPathFails(t *testing.T) {
	e := newOpsEngine()

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionDelete, Path: "/contacts/Ghost"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Ok)
}
