package memory

// StepKind discriminates what a resolved path denotes.
type StepKind string

const (
	StepField            StepKind = "field"
	StepObjectProp       StepKind = "objectProp"
	StepArrayItem        StepKind = "arrayItem"
	StepMapValue         StepKind = "mapValue"
	StepTopicNode        StepKind = "topic"
	StepTopicDescription StepKind = "topicDescription"
	StepTopicSubtopics   StepKind = "topicSubtopics"
)

// SchemaStep is what Resolve returns: everything later stages (Validator,
// executor, Renderer) need to act on a path without re-walking it.
type SchemaStep struct {
	Kind StepKind
	Path string

	// Field is the schema node governing the value at Path. For StepTopicNode
	// and its description/subtopics variants this is the owning topic Field,
	// not a per-node Field (topics have no per-node schema).
	Field *Field

	ParentPath  string
	ParentField *Field // the container Field one level up (object/array/map/topic)

	Key   string // property name (objectProp), map key (mapValue), last node name (topic*)
	Index int    // parsed array index (arrayItem); -1 if not applicable

	// NodePath is the chain of subtopic names from the topic tree root,
	// populated for StepTopicNode/StepTopicDescription/StepTopicSubtopics.
	NodePath []string

	// Exists reports whether the value at Path is currently present in the
	// tree (false for e.g. an object property that hasn't been set yet, or
	// an array append position).
	Exists bool

	// DBContext is the accumulated context built by threading each
	// traversal step through the owning field's DB.ExtractChildContext hook,
	// seeded from the base context Resolve was called with.
	DBContext map[string]any
}

// Resolve walks path against schema and tree, returning the terminal step.
// value is the current runtime tree (map[string]any keyed by top-level field
// id); baseCtx seeds the DB-context accumulation described in spec.md §4.C
// and may be nil.
func Resolve(schema *Schema, tree map[string]any, path string, baseCtx map[string]any) (*SchemaStep, error) {
	tokens := Split(path)
	if len(tokens) == 0 {
		return nil, pathErrorf("cannot resolve root path %q directly", path)
	}

	fieldID := tokens[0]
	field, ok := schema.Field(fieldID)
	if !ok {
		return nil, pathErrorf("unknown top-level field %q", fieldID)
	}

	ctx := map[string]any{}
	for k, v := range baseCtx {
		ctx[k] = v
	}

	rest := tokens[1:]
	fieldPath := Join(tokens[:1])
	fieldValue, fieldExists := tree[fieldID]

	if len(rest) == 0 {
		return &SchemaStep{
			Kind:      StepField,
			Path:      fieldPath,
			Field:     field,
			Exists:    fieldExists,
			Index:     -1,
			DBContext: ctx,
		}, nil
	}

	if field.DB != nil && field.DB.ExtractChildContext != nil {
		mergeCtx(ctx, field.DB.ExtractChildContext(fieldValue, rest[0]))
	}

	return resolveInto(field, fieldValue, fieldPath, fieldExists, rest, ctx)
}

// resolveInto continues traversal one token at a time into the value housed
// by `field` (already known to exist conceptually, though `value` may be nil
// if `exists` is false).
func resolveInto(field *Field, value any, basePath string, exists bool, tokens []string, ctx map[string]any) (*SchemaStep, error) {
	switch field.Kind {
	case KindObject:
		return resolveObject(field, value, basePath, exists, tokens, ctx)
	case KindArray:
		return resolveArray(field, value, basePath, exists, tokens, ctx)
	case KindMap:
		return resolveMap(field, value, basePath, exists, tokens, ctx)
	case KindTopic:
		return resolveTopic(field, value, basePath, tokens, ctx)
	default:
		return nil, pathErrorf("cannot traverse primitive at %q", basePath)
	}
}

func resolveObject(field *Field, value any, basePath string, exists bool, tokens []string, ctx map[string]any) (*SchemaStep, error) {
	name := tokens[0]
	rest := tokens[1:]

	childField, declared := field.Properties[name]
	if !declared {
		allowed, genericField := field.AdditionalAllowed()
		if !allowed {
			return nil, pathErrorf("property %q not allowed on closed object %q", name, basePath)
		}
		childField = genericField
	}

	obj, _ := value.(map[string]any)
	var childValue any
	childExists := false
	if obj != nil {
		childValue, childExists = obj[name]
	}
	childPath := Child(basePath, name)

	if childField != nil && childField.DB != nil && childField.DB.ExtractChildContext != nil && len(rest) > 0 {
		mergeCtx(ctx, childField.DB.ExtractChildContext(childValue, rest[0]))
	}

	if len(rest) == 0 {
		return &SchemaStep{
			Kind:        StepObjectProp,
			Path:        childPath,
			Field:       childField,
			ParentPath:  basePath,
			ParentField: field,
			Key:         name,
			Index:       -1,
			Exists:      childExists,
			DBContext:   ctx,
		}, nil
	}

	if childField == nil {
		return nil, pathErrorf("cannot traverse untyped additional property %q", childPath)
	}

	return resolveInto(childField, childValue, childPath, childExists, rest, ctx)
}

func resolveArray(field *Field, value any, basePath string, exists bool, tokens []string, ctx map[string]any) (*SchemaStep, error) {
	tok := tokens[0]
	rest := tokens[1:]

	if !IsIntegerToken(tok) {
		return nil, pathErrorf("non-integer token %q on array %q", tok, basePath)
	}

	arr, _ := value.([]any)
	idx := parseIndex(tok)
	childExists := idx >= 0 && idx < len(arr)
	var childValue any
	if childExists {
		childValue = arr[idx]
	}
	childPath := Child(basePath, tok)

	if field.Items != nil && field.Items.DB != nil && field.Items.DB.ExtractChildContext != nil && len(rest) > 0 {
		mergeCtx(ctx, field.Items.DB.ExtractChildContext(childValue, rest[0]))
	}

	if len(rest) == 0 {
		return &SchemaStep{
			Kind:        StepArrayItem,
			Path:        childPath,
			Field:       field.Items,
			ParentPath:  basePath,
			ParentField: field,
			Key:         tok,
			Index:       idx,
			Exists:      childExists,
			DBContext:   ctx,
		}, nil
	}

	if field.Items == nil {
		return nil, pathErrorf("array %q has no item schema to traverse into", basePath)
	}

	return resolveInto(field.Items, childValue, childPath, childExists, rest, ctx)
}

func resolveMap(field *Field, value any, basePath string, exists bool, tokens []string, ctx map[string]any) (*SchemaStep, error) {
	key := tokens[0]
	rest := tokens[1:]

	m, _ := value.(map[string]any)
	var childValue any
	childExists := false
	if m != nil {
		childValue, childExists = m[key]
	}
	childPath := Child(basePath, key)

	if field.Values != nil && field.Values.DB != nil && field.Values.DB.ExtractChildContext != nil && len(rest) > 0 {
		mergeCtx(ctx, field.Values.DB.ExtractChildContext(childValue, rest[0]))
	}

	if len(rest) == 0 {
		return &SchemaStep{
			Kind:        StepMapValue,
			Path:        childPath,
			Field:       field.Values,
			ParentPath:  basePath,
			ParentField: field,
			Key:         key,
			Index:       -1,
			Exists:      childExists,
			DBContext:   ctx,
		}, nil
	}

	if field.Values == nil {
		return nil, pathErrorf("map %q has no value schema to traverse into", basePath)
	}

	return resolveInto(field.Values, childValue, childPath, childExists, rest, ctx)
}

// resolveTopic consumes tokens as a nodePath until it hits the literal
// "description" or "subtopics" marker, or runs out of tokens (denoting the
// node itself).
func resolveTopic(field *Field, value any, basePath string, tokens []string, ctx map[string]any) (*SchemaStep, error) {
	tree, _ := value.(*TopicTree)
	if tree == nil {
		tree = NewTopicTree()
	}

	var nodePath []string
	i := 0
	for ; i < len(tokens); i++ {
		if tokens[i] == "description" || tokens[i] == "subtopics" {
			break
		}
		nodePath = append(nodePath, tokens[i])
	}

	node, _, exists := tree.walk(nodePath)

	if i == len(tokens) {
		return &SchemaStep{
			Kind:      StepTopicNode,
			Path:      Join(prependSelf(basePath, nodePath)),
			Field:     field,
			Key:       lastOrEmpty(nodePath),
			Index:     -1,
			NodePath:  nodePath,
			Exists:    exists,
			DBContext: ctx,
		}, nil
	}

	marker := tokens[i]
	remaining := tokens[i+1:]
	if len(remaining) != 0 {
		return nil, pathErrorf("unexpected tokens after topic %q marker at %q", marker, basePath)
	}

	if !exists {
		return nil, pathErrorf("topic node %q does not exist", Join(append(Split(basePath), nodePath...)))
	}

	switch marker {
	case "description":
		return &SchemaStep{
			Kind:      StepTopicDescription,
			Path:      Join(append(prependSelf(basePath, nodePath), "description")),
			Field:     field,
			Key:       lastOrEmpty(nodePath),
			Index:     -1,
			NodePath:  nodePath,
			Exists:    node != nil && node.Description != nil,
			DBContext: ctx,
		}, nil
	default: // "subtopics"
		return &SchemaStep{
			Kind:      StepTopicSubtopics,
			Path:      Join(append(prependSelf(basePath, nodePath), "subtopics")),
			Field:     field,
			Key:       lastOrEmpty(nodePath),
			Index:     -1,
			NodePath:  nodePath,
			Exists:    true,
			DBContext: ctx,
		}, nil
	}
}

func mergeCtx(dst map[string]any, extra map[string]any) {
	for k, v := range extra {
		dst[k] = v
	}
}

func parseIndex(tok string) int {
	neg := false
	i := 0
	if tok[0] == '-' {
		neg = true
		i = 1
	}
	n := 0
	for ; i < len(tok); i++ {
		n = n*10 + int(tok[i]-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func lastOrEmpty(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

func prependSelf(base string, nodePath []string) []string {
	return append(Split(base), nodePath...)
}
