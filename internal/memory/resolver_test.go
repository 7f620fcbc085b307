package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TopLevelField(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/profile", nil)
	require.NoError(t, err)
	assert.Equal(t, StepField, step.Kind)
	assert.False(t, step.Exists)
}

func TestResolve_ObjectProp(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["profile"] = map[string]any{"name": "Ana"}

	step, err := Resolve(schema, tree.Values, "/profile/name", nil)
	require.NoError(t, err)
	assert.Equal(t, StepObjectProp, step.Kind)
	assert.True(t, step.Exists)
	assert.Equal(t, "name", step.Key)
	assert.Equal(t, "/profile", step.ParentPath)
}

func TestResolve_ClosedObjectRejectsUnknownProperty(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	_, err := Resolve(schema, tree.Values, "/profile/unknown", nil)
	assert.Error(t, err)
}

func TestResolve_ArrayItem(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["vocabulary"] = []any{"hi", "bye"}

	step, err := Resolve(schema, tree.Values, "/vocabulary/1", nil)
	require.NoError(t, err)
	assert.Equal(t, StepArrayItem, step.Kind)
	assert.Equal(t, 1, step.Index)
	assert.True(t, step.Exists)
}

func TestResolve_ArrayRejectsNonIntegerToken(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	_, err := Resolve(schema, tree.Values, "/vocabulary/first", nil)
	assert.Error(t, err)
}

func TestResolve_MapValue(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	tree.Values["contacts"] = map[string]any{"Ana": map[string]any{"relation": "sister"}}

	step, err := Resolve(schema, tree.Values, "/contacts/Ana", nil)
	require.NoError(t, err)
	assert.Equal(t, StepMapValue, step.Kind)
	assert.Equal(t, "Ana", step.Key)
	assert.True(t, step.Exists)
}

func TestResolve_TopicNodeAndMarkers(t *testing.T) {
	schema := testSchema()
	tree := NewTree()
	topic := NewTopicTree()
	topic.Nodes["AI"] = NewTopicNode()
	tree.Values["topics"] = topic

	nodeStep, err := Resolve(schema, tree.Values, "/topics/AI", nil)
	require.NoError(t, err)
	assert.Equal(t, StepTopicNode, nodeStep.Kind)
	assert.Equal(t, []string{"AI"}, nodeStep.NodePath)
	assert.True(t, nodeStep.Exists)

	descStep, err := Resolve(schema, tree.Values, "/topics/AI/description", nil)
	require.NoError(t, err)
	assert.Equal(t, StepTopicDescription, descStep.Kind)

	subStep, err := Resolve(schema, tree.Values, "/topics/AI/subtopics", nil)
	require.NoError(t, err)
	assert.Equal(t, StepTopicSubtopics, subStep.Kind)
}

func TestResolve_TopicMissingNode(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	_, err := Resolve(schema, tree.Values, "/topics/AI/description", nil)
	assert.Error(t, err)
}

func TestResolve_UnknownTopLevelField(t *testing.T) {
	schema := testSchema()
	tree := NewTree()

	_, err := Resolve(schema, tree.Values, "/nonexistent", nil)
	assert.Error(t, err)
}

func TestResolve_DBContextAccumulates(t *testing.T) {
	schema := testSchema()
	schema.Fields["contacts"].DB = &DBBinding{
		ExtractChildContext: func(value any, nextKey string) map[string]any {
			return map[string]any{"contactKey": nextKey}
		},
	}
	tree := NewTree()

	step, err := Resolve(schema, tree.Values, "/contacts/Ana", map[string]any{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", step.DBContext["session_id"])
	assert.Equal(t, "Ana", step.DBContext["contactKey"])
}
