package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigofenix/aac/internal/memory"
)

func TestView_DefaultOpensChildrenForContainerKinds(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["contacts"] = map[string]any{
		"Ana": map[string]any{"relation": "sister"},
		"Bob": map[string]any{"relation": "brother"},
	}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/contacts"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/contacts"))
	assert.True(t, e.State.IsVisible("/contacts/Ana"))
	assert.True(t, e.State.IsVisible("/contacts/Bob"))
}

func TestView_DefaultDoesNotOpenChildrenForScalarField(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["profile"] = map[string]any{"name": "Ana"}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/profile/name"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/profile/name"))
}

func TestView_ExplicitOpenChildrenFalseSuppressesDefault(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}
	closed := false

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/contacts", OpenChildren: &closed},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/contacts"))
	assert.False(t, e.State.IsVisible("/contacts/Ana"))
}

func TestView_ExplicitOpenChildrenTrueOverridesScalarDefault(t *testing.T) {
	e := newOpsEngine()
	topic := e.Tree.EnsureTopicTree("topics")
	desc := "notes"
	topic.Nodes["AI"] = &memory.TopicNode{Description: &desc, Subtopics: map[string]*memory.TopicNode{}}
	open := true

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/topics/AI/description", OpenChildren: &open},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/topics/AI/description"))
}

func TestView_TopicNodeOpensSubtopicChildren(t *testing.T) {
	e := newOpsEngine()
	topic := e.Tree.EnsureTopicTree("topics")
	node := memory.NewTopicNode()
	node.Subtopics["ML"] = memory.NewTopicNode()
	topic.Nodes["AI"] = node

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/topics/AI"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.True(t, e.State.IsVisible("/topics/AI"))
	assert.True(t, e.State.IsVisible("/topics/AI/ML"))
}

func TestView_PaginationRecordsWindow(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["vocabulary"] = []any{"a", "b", "c"}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionView, Path: "/vocabulary", Offset: 1, Limit: 2},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.Equal(t, memory.Pagination{Offset: 1, Limit: 2}, e.State.GetPagination("/vocabulary"))
}
