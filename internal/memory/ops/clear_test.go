package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigofenix/aac/internal/memory"
)

func TestClear_Map(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionClear, Path: "/contacts"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.Equal(t, map[string]any{}, e.Tree.Values["contacts"])
}

func TestClear_TopicRoot(t *testing.T) {
	e := newOpsEngine()
	topic := e.Tree.EnsureTopicTree("topics")
	topic.Nodes["AI"] = memory.NewTopicNode()

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionClear, Path: "/topics"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.Empty(t, topic.Nodes)

	// the pointer installed in the tree must survive the clear intact.
	same := e.Tree.EnsureTopicTree("topics")
	assert.Same(t, topic, same)
}

func TestClear_TopicSubtopics(t *testing.T) {
	e := newOpsEngine()
	topic := e.Tree.EnsureTopicTree("topics")
	node := memory.NewTopicNode()
	node.Subtopics["ML"] = memory.NewTopicNode()
	topic.Nodes["AI"] = node

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionClear, Path: "/topics/AI/subtopics"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
	assert.Empty(t, node.Subtopics)
}

func TestClear_ScalarFieldRejected(t *testing.T) {
	e := newOpsEngine()
	e.Tree.Values["profile"] = map[string]any{"name": "Ana"}

	results := memory.ApplyBatch(e, []memory.Op{
		{Action: memory.ActionClear, Path: "/profile/name"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Ok)
}
