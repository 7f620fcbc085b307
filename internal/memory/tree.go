package memory

import "sort"

// Tree is the runtime value store: a top-level map keyed by field id, holding
// plain Go values for scalar/object/array/map fields and *TopicTree for topic
// fields. It has no notion of schema or visibility; those live in Schema and
// MemoryState respectively.
type Tree struct {
	Values map[string]any
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{Values: map[string]any{}}
}

// Get returns the value at path and whether it exists. It does not validate
// against schema; callers resolve first if they need shape guarantees.
func (t *Tree) Get(schema *Schema, path string) (any, bool, error) {
	if Normalize(path) == Root {
		return t.Values, true, nil
	}
	step, err := Resolve(schema, t.Values, path, nil)
	if err != nil {
		return nil, false, err
	}
	return t.valueAtStep(step)
}

func (t *Tree) valueAtStep(step *SchemaStep) (any, bool, error) {
	switch step.Kind {
	case StepField:
		return t.Values[step.Field.ID], step.Exists, nil
	case StepObjectProp:
		obj, ok := t.containerAt(step.ParentPath)
		if !ok {
			return nil, false, nil
		}
		m, _ := obj.(map[string]any)
		if m == nil {
			return nil, false, nil
		}
		v, exists := m[step.Key]
		return v, exists, nil
	case StepArrayItem:
		container, ok := t.containerAt(step.ParentPath)
		if !ok {
			return nil, false, nil
		}
		arr, _ := container.([]any)
		if step.Index < 0 || step.Index >= len(arr) {
			return nil, false, nil
		}
		return arr[step.Index], true, nil
	case StepMapValue:
		container, ok := t.containerAt(step.ParentPath)
		if !ok {
			return nil, false, nil
		}
		m, _ := container.(map[string]any)
		if m == nil {
			return nil, false, nil
		}
		v, exists := m[step.Key]
		return v, exists, nil
	case StepTopicNode:
		topic := t.topicTreeFor(step)
		node, _, exists := topic.walk(step.NodePath)
		return node, exists, nil
	case StepTopicDescription:
		topic := t.topicTreeFor(step)
		node, _, exists := topic.walk(step.NodePath)
		if !exists || node == nil || node.Description == nil {
			return nil, false, nil
		}
		return *node.Description, true, nil
	case StepTopicSubtopics:
		topic := t.topicTreeFor(step)
		node, _, exists := topic.walk(step.NodePath)
		if !exists || node == nil {
			return nil, false, nil
		}
		return node.Subtopics, true, nil
	default:
		return nil, false, shapeErrorf("unhandled step kind %q", step.Kind)
	}
}

// containerAt returns the raw container value (object/array/map) currently
// stored at path, via a direct re-resolve against the live tree.
func (t *Tree) containerAt(path string) (any, bool) {
	if Normalize(path) == Root {
		return t.Values, true
	}
	tokens := Split(path)
	cur := any(t.Values)
	for _, tok := range tokens {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx := parseIndex(tok)
			if idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func (t *Tree) topicTreeFor(step *SchemaStep) *TopicTree {
	fieldID := step.Field.ID
	tree, _ := t.Values[fieldID].(*TopicTree)
	if tree == nil {
		tree = NewTopicTree()
		t.Values[fieldID] = tree
	}
	return tree
}

// EnsureTopicTree returns the *TopicTree stored under fieldID, creating and
// installing an empty one if absent.
func (t *Tree) EnsureTopicTree(fieldID string) *TopicTree {
	tree, _ := t.Values[fieldID].(*TopicTree)
	if tree == nil {
		tree = NewTopicTree()
		t.Values[fieldID] = tree
	}
	return tree
}

// SetField replaces the whole value of a top-level field.
func (t *Tree) SetField(fieldID string, value any) {
	t.Values[fieldID] = value
}

// setInContainer writes value as the child keyed by key/index inside the
// container at parentPath, auto-seeding intermediate containers per
// spec.md §3 invariant 3 (objects/arrays/maps spring into existence lazily
// on first write beneath them, never on mere reads).
func (t *Tree) setInContainer(schema *Schema, parentStep *SchemaStep, key string, index int, value any) error {
	parent, ok := t.containerAt(parentStep.Path)
	if !ok || parent == nil {
		parent = seedContainer(parentStep.Field)
		if err := t.writeAt(parentStep, parent); err != nil {
			return err
		}
	}

	switch c := parent.(type) {
	case map[string]any:
		c[key] = value
		return nil
	case []any:
		if index < 0 || index > len(c) {
			return shapeErrorf("array index %d out of bounds at %q", index, parentStep.Path)
		}
		if index == len(c) {
			c = append(c, value)
		} else {
			c[index] = value
		}
		return t.writeAt(parentStep, c)
	default:
		return shapeErrorf("cannot write into non-container at %q", parentStep.Path)
	}
}

// writeAt stores a full container value back at the location step denotes.
// Used after auto-seeding or array growth (since []any append may reallocate).
func (t *Tree) writeAt(step *SchemaStep, value any) error {
	switch step.Kind {
	case StepField:
		t.Values[step.Field.ID] = value
		return nil
	case StepObjectProp:
		parent, ok := t.containerAt(step.ParentPath)
		if !ok {
			if !autoSeedAllowed(step.ParentField, step.Key) {
				return shapeErrorf("cannot auto-create %q: it requires %v; set %q with a complete value instead",
					step.ParentPath, missingRequiredExcept(step.ParentField, step.Key), step.ParentPath)
			}
			seeded := seedContainer(step.ParentField)
			if err := t.writeAtPath(step.ParentPath, seeded); err != nil {
				return err
			}
			parent = seeded
		}
		m, ok := parent.(map[string]any)
		if !ok {
			return shapeErrorf("expected object container at %q", step.ParentPath)
		}
		m[step.Key] = value
		return nil
	case StepArrayItem:
		return t.writeAtPath(step.ParentPath, value)
	case StepMapValue:
		parent, ok := t.containerAt(step.ParentPath)
		if !ok {
			seeded := seedContainer(step.ParentField)
			if err := t.writeAtPath(step.ParentPath, seeded); err != nil {
				return err
			}
			parent = seeded
		}
		m, ok := parent.(map[string]any)
		if !ok {
			return shapeErrorf("expected map container at %q", step.ParentPath)
		}
		m[step.Key] = value
		return nil
	default:
		return shapeErrorf("cannot write container value at step kind %q", step.Kind)
	}
}

// writeAtPath is a narrow helper: it re-resolves path against schema-free raw
// structure to assign a container value up the chain. It only ever gets used
// for object/map parents one level deep from setInContainer/writeAt, so a
// shallow token walk mirroring containerAt suffices.
func (t *Tree) writeAtPath(path string, value any) error {
	if Normalize(path) == Root {
		m, ok := value.(map[string]any)
		if !ok {
			return shapeErrorf("root value must be an object")
		}
		t.Values = m
		return nil
	}
	tokens := Split(path)
	parentPath, last := Join(tokens[:len(tokens)-1]), tokens[len(tokens)-1]
	parent, ok := t.containerAt(parentPath)
	if !ok {
		return dbErrorf("cannot seed intermediate container at %q", parentPath)
	}
	switch c := parent.(type) {
	case map[string]any:
		c[last] = value
	case []any:
		idx := parseIndex(last)
		if idx < 0 || idx >= len(c) {
			return shapeErrorf("array index %d out of bounds at %q", idx, parentPath)
		}
		c[idx] = value
	default:
		return shapeErrorf("cannot write into non-container at %q", parentPath)
	}
	return nil
}

// EncodeValues returns a JSON-serializable copy of t.Values, flattening any
// *TopicTree fields (held in memory as pointers so ops can mutate them in
// place) into plain nested maps.
func (t *Tree) EncodeValues() map[string]any {
	out := make(map[string]any, len(t.Values))
	for k, v := range t.Values {
		if tt, ok := v.(*TopicTree); ok {
			out[k] = encodeTopicTree(tt)
			continue
		}
		out[k] = v
	}
	return out
}

func encodeTopicTree(t *TopicTree) map[string]any {
	nodes := make(map[string]any, len(t.Nodes))
	for name, n := range t.Nodes {
		nodes[name] = encodeTopicNode(n)
	}
	return map[string]any{"nodes": nodes}
}

func encodeTopicNode(n *TopicNode) map[string]any {
	sub := make(map[string]any, len(n.Subtopics))
	for name, c := range n.Subtopics {
		sub[name] = encodeTopicNode(c)
	}
	out := map[string]any{"subtopics": sub}
	if n.Description != nil {
		out["description"] = *n.Description
	}
	return out
}

// DecodeValues rebuilds a Tree's runtime Values from schema and a map shaped
// like EncodeValues's output (typically round-tripped through encoding/json
// when loading a persisted session), restoring *TopicTree pointers for every
// topic-kind field.
func DecodeValues(schema *Schema, raw map[string]any) *Tree {
	t := NewTree()
	for id, v := range raw {
		field, ok := schema.Field(id)
		if ok && field.Kind == KindTopic {
			t.Values[id] = decodeTopicTree(v)
			continue
		}
		t.Values[id] = v
	}
	return t
}

func decodeTopicTree(v any) *TopicTree {
	tree := NewTopicTree()
	m, ok := v.(map[string]any)
	if !ok {
		return tree
	}
	nodesRaw, _ := m["nodes"].(map[string]any)
	for name, nv := range nodesRaw {
		tree.Nodes[name] = decodeTopicNode(nv)
	}
	return tree
}

// DecodeTopicNode decodes a raw value (as produced by a TopicNode literal in
// a tool call, shaped like encodeTopicNode's output) into a *TopicNode.
// Exported for use by ops handlers that accept a TopicNode literal outside
// this package.
func DecodeTopicNode(v any) *TopicNode {
	return decodeTopicNode(v)
}

func decodeTopicNode(v any) *TopicNode {
	node := NewTopicNode()
	m, ok := v.(map[string]any)
	if !ok {
		return node
	}
	if desc, ok := m["description"].(string); ok {
		node.Description = &desc
	}
	subRaw, _ := m["subtopics"].(map[string]any)
	for name, nv := range subRaw {
		node.Subtopics[name] = decodeTopicNode(nv)
	}
	return node
}

// seedContainer returns a freshly allocated empty container matching field's
// Kind. Callers only invoke this for object/array/map fields.
func seedContainer(field *Field) any {
	if field == nil {
		return map[string]any{}
	}
	switch field.Kind {
	case KindArray:
		return []any{}
	case KindMap, KindObject:
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// autoSeedAllowed reports whether writeAt may lazily create parentField's
// object value in order to write propName into it. Auto-seeding is only safe
// when doing so cannot leave the freshly created object missing one of its
// other required properties.
func autoSeedAllowed(parentField *Field, propName string) bool {
	if parentField == nil || len(parentField.Required) == 0 {
		return true
	}
	if len(parentField.Required) == 1 {
		return parentField.IsRequired(propName)
	}
	return false
}

// missingRequiredExcept returns field's required property names other than
// except, sorted, for use in the auto-seed rejection hint.
func missingRequiredExcept(field *Field, except string) []string {
	if field == nil {
		return nil
	}
	missing := make([]string, 0, len(field.Required))
	for name := range field.Required {
		if name == except {
			continue
		}
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

// SetAtStep replaces the whole value currently at step's path. A missing
// immediate parent map is seeded, and a missing immediate parent object is
// seeded when autoSeedAllowed permits; an array item must already exist.
func (t *Tree) SetAtStep(step *SchemaStep, value any) error {
	if step.Kind == StepArrayItem {
		parent, ok := t.containerAt(step.ParentPath)
		arr, isArr := parent.([]any)
		if !ok || !isArr || step.Index < 0 || step.Index >= len(arr) {
			return shapeErrorf("array index %d out of bounds at %q", step.Index, step.ParentPath)
		}
		arr[step.Index] = value
		return nil
	}
	return t.writeAt(step, value)
}

// UpsertAtStep creates or replaces the keyed child (object property or map
// entry) denoted by step.
func (t *Tree) UpsertAtStep(step *SchemaStep, value any) error {
	switch step.Kind {
	case StepObjectProp, StepMapValue:
		return t.writeAt(step, value)
	default:
		return shapeErrorf("upsert requires a keyed object or map location")
	}
}

// AppendAtStep appends value to the array denoted by step (an array field
// itself, not one of its elements), auto-seeding an empty array if absent.
func (t *Tree) AppendAtStep(arrayStep *SchemaStep, value any) error {
	container, ok := t.containerAt(arrayStep.Path)
	arr, _ := container.([]any)
	if !ok {
		arr = []any{}
	}
	arr = append(arr, value)
	return t.writeAt(arrayStep, arr)
}

// InsertAtStep inserts value into the array denoted by arrayStep at index,
// shifting subsequent elements right. index == len(arr) behaves like append.
func (t *Tree) InsertAtStep(arrayStep *SchemaStep, index int, value any) error {
	container, _ := t.containerAt(arrayStep.Path)
	arr, _ := container.([]any)
	if index < 0 || index > len(arr) {
		return shapeErrorf("insert index %d out of bounds (len %d)", index, len(arr))
	}
	next := make([]any, 0, len(arr)+1)
	next = append(next, arr[:index]...)
	next = append(next, value)
	next = append(next, arr[index:]...)
	return t.writeAt(arrayStep, next)
}

// RenameKey renames an object property or map entry in place, preserving its
// value and its position relative to other keys where the underlying
// representation is order-sensitive (object PropertyOrder is schema-level,
// not value-level, so plain map reassignment suffices here).
func (t *Tree) RenameKey(step *SchemaStep, newKey string) error {
	switch step.Kind {
	case StepObjectProp, StepMapValue:
		parent, ok := t.containerAt(step.ParentPath)
		if !ok {
			return shapeErrorf("rename source %q does not exist", step.Path)
		}
		m, ok := parent.(map[string]any)
		if !ok {
			return shapeErrorf("rename requires an object or map container")
		}
		v, exists := m[step.Key]
		if !exists {
			return shapeErrorf("rename source key %q does not exist", step.Key)
		}
		if _, clash := m[newKey]; clash {
			return shapeErrorf("rename target key %q already exists", newKey)
		}
		delete(m, step.Key)
		m[newKey] = v
		return nil
	case StepTopicNode:
		topic := t.topicTreeFor(step)
		if len(step.NodePath) == 0 {
			return topicErrorf("cannot rename topic tree root")
		}
		parentMap, ok := topic.childrenMapAt(step.NodePath[:len(step.NodePath)-1])
		if !ok {
			return topicErrorf("rename source topic node does not exist")
		}
		oldKey := step.NodePath[len(step.NodePath)-1]
		node, exists := parentMap[oldKey]
		if !exists {
			return topicErrorf("rename source topic node %q does not exist", oldKey)
		}
		if _, clash := parentMap[newKey]; clash {
			return topicErrorf("rename target topic node %q already exists", newKey)
		}
		delete(parentMap, oldKey)
		parentMap[newKey] = node
		return nil
	default:
		return shapeErrorf("rename not supported at step kind %q", step.Kind)
	}
}

// Delete removes the value denoted by step from its parent container. For a
// top-level field it clears the map entry entirely.
func (t *Tree) Delete(step *SchemaStep) error {
	switch step.Kind {
	case StepField:
		delete(t.Values, step.Field.ID)
		return nil
	case StepObjectProp, StepMapValue:
		parent, ok := t.containerAt(step.ParentPath)
		if !ok {
			return nil
		}
		m, _ := parent.(map[string]any)
		if m == nil {
			return nil
		}
		delete(m, step.Key)
		return nil
	case StepArrayItem:
		parent, ok := t.containerAt(step.ParentPath)
		if !ok {
			return nil
		}
		arr, _ := parent.([]any)
		if step.Index < 0 || step.Index >= len(arr) {
			return nil
		}
		next := append(arr[:step.Index:step.Index], arr[step.Index+1:]...)
		return t.writeAt(step, next)
	case StepTopicNode:
		topic := t.topicTreeFor(step)
		if len(step.NodePath) == 0 {
			return topicErrorf("cannot delete topic tree root")
		}
		parentMap, ok := topic.childrenMapAt(step.NodePath[:len(step.NodePath)-1])
		if !ok {
			return nil
		}
		delete(parentMap, step.NodePath[len(step.NodePath)-1])
		return nil
	default:
		return shapeErrorf("delete not supported at step kind %q", step.Kind)
	}
}

// Clear empties a container in place (object -> {}, array -> [], map -> {},
// topic node's subtopics -> {}) without removing the field/key itself.
func (t *Tree) Clear(step *SchemaStep) error {
	var targetField *Field
	switch step.Kind {
	case StepField:
		if step.Field != nil && step.Field.Kind == KindTopic {
			topic := t.topicTreeFor(step)
			topic.Nodes = map[string]*TopicNode{}
			return nil
		}
		targetField = step.Field
	case StepObjectProp, StepArrayItem, StepMapValue:
		targetField = step.Field
	case StepTopicSubtopics:
		topic := t.topicTreeFor(step)
		node, _, ok := topic.walk(step.NodePath)
		if !ok || node == nil {
			return topicErrorf("cannot clear subtopics of missing node")
		}
		node.Subtopics = map[string]*TopicNode{}
		return nil
	default:
		return shapeErrorf("clear not supported at step kind %q", step.Kind)
	}
	return t.SetAtStep(step, seedContainer(targetField))
}
