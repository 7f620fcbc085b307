package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_SetAtStep_AutoSeedsWhenRequiredMatchesKey(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/profile/name", nil)
	require.NoError(t, err)

	err = tree.SetAtStep(step, "Ana")
	require.NoError(t, err)

	profile, _ := tree.Values["profile"].(map[string]any)
	assert.Equal(t, "Ana", profile["name"])
}

func TestTree_SetAtStep_RejectsAutoSeedWhenMultipleRequired(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/strict/a", nil)
	require.NoError(t, err)

	err = tree.SetAtStep(step, "x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestTree_SetAtStep_AllowsWriteWhenParentAlreadyExists(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["strict"] = map[string]any{"a": "x", "b": "y"}

	step, err := Resolve(schema, tree.Values, "/strict/a", nil)
	require.NoError(t, err)

	err = tree.SetAtStep(step, "z")
	require.NoError(t, err)
	assert.Equal(t, "z", tree.Values["strict"].(map[string]any)["a"])
}

func TestTree_AppendAndInsertAtStep(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/vocabulary", nil)
	require.NoError(t, err)

	require.NoError(t, tree.AppendAtStep(step, "hi"))
	require.NoError(t, tree.AppendAtStep(step, "world"))
	assert.Equal(t, []any{"hi", "world"}, tree.Values["vocabulary"])

	require.NoError(t, tree.InsertAtStep(step, 1, "bye"))
	assert.Equal(t, []any{"hi", "bye", "world"}, tree.Values["vocabulary"])
}

func TestTree_RenameKey_ObjectProp(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["profile"] = map[string]any{"name": "Ana"}

	step, err := Resolve(schema, tree.Values, "/profile/name", nil)
	require.NoError(t, err)

	require.NoError(t, tree.RenameKey(step, "fullName"))
	profile := tree.Values["profile"].(map[string]any)
	assert.Equal(t, "Ana", profile["fullName"])
	_, hasOld := profile["name"]
	assert.False(t, hasOld)
}

func TestTree_RenameKey_RejectsCollision(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["contacts"] = map[string]any{
		"Ana": map[string]any{"relation": "sister"},
		"Bob": map[string]any{"relation": "brother"},
	}

	step, err := Resolve(schema, tree.Values, "/contacts/Ana", nil)
	require.NoError(t, err)

	err = tree.RenameKey(step, "Bob")
	assert.Error(t, err)
}

func TestTree_Delete_ObjectProp(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["profile"] = map[string]any{"name": "Ana", "age": 30.0}

	step, err := Resolve(schema, tree.Values, "/profile/age", nil)
	require.NoError(t, err)

	require.NoError(t, tree.Delete(step))
	_, exists := tree.Values["profile"].(map[string]any)["age"]
	assert.False(t, exists)
}

func TestTree_Clear_Object(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["profile"] = map[string]any{"name": "Ana"}

	step, err := Resolve(schema, tree.Values, "/profile", nil)
	require.NoError(t, err)

	require.NoError(t, tree.Clear(step))
	assert.Equal(t, map[string]any{}, tree.Values["profile"])
}

func TestTree_Clear_TopicRootResetsNodesWithoutCorruptingPointer(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	topic := tree.EnsureTopicTree("topics")
	topic.Nodes["AI"] = NewTopicNode()

	step, err := Resolve(schema, tree.Values, "/topics", nil)
	require.NoError(t, err)

	require.NoError(t, tree.Clear(step))

	same := tree.EnsureTopicTree("topics")
	assert.Same(t, topic, same)
	assert.Empty(t, same.Nodes)

	same.Nodes["Biology"] = NewTopicNode()
	assert.Len(t, topic.Nodes, 1)
}

func TestTree_EncodeDecodeValues_RoundTripsTopicTree(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	topic := tree.EnsureTopicTree("topics")
	desc := "machine learning and friends"
	topic.Nodes["AI"] = &TopicNode{Description: &desc, Subtopics: map[string]*TopicNode{
		"ML": NewTopicNode(),
	}}
	tree.Values["profile"] = map[string]any{"name": "Ana"}

	encoded := tree.EncodeValues()
	restored := DecodeValues(schema, encoded)

	restoredTopic, ok := restored.Values["topics"].(*TopicTree)
	require.True(t, ok)
	require.Contains(t, restoredTopic.Nodes, "AI")
	assert.Equal(t, desc, *restoredTopic.Nodes["AI"].Description)
	assert.Contains(t, restoredTopic.Nodes["AI"].Subtopics, "ML")
	assert.Equal(t, "Ana", restored.Values["profile"].(map[string]any)["name"])
}

func TestTree_UpsertAtStep_MapValue(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/contacts/Ana", nil)
	require.NoError(t, err)

	require.NoError(t, tree.UpsertAtStep(step, map[string]any{"relation": "sister"}))
	assert.Equal(t, "sister", tree.Values["contacts"].(map[string]any)["Ana"].(map[string]any)["relation"])
}
