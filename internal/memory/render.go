package memory

import (
	"fmt"
	"sort"
	"strings"
)

// Render produces the deterministic textual snapshot the LLM sees: an
// instructions preamble followed by the visible subset of the tree, in
// schema declaration order. Render is a pure function of (schema, tree,
// state); identical inputs yield byte-identical output.
func Render(schema *Schema, tree *Tree, state *MemoryState) string {
	var b strings.Builder
	writeInstructions(&b, schema)
	b.WriteString("\n")

	wrote := false
	for _, id := range schema.Order {
		field, _ := schema.Field(id)
		if renderField(&b, schema, tree, state, field, Join([]string{id}), 0) {
			wrote = true
		}
	}
	if !wrote {
		b.WriteString("(nothing is currently visible — use view to open a field)\n")
	}
	return b.String()
}

func writeInstructions(b *strings.Builder, schema *Schema) {
	b.WriteString("Structured memory. Only the fields you have viewed are shown below.\n")
	b.WriteString("Use manageMemory with actions view/hide/set/upsert/add/insert/delete/clear/rename to inspect and edit it.\n")
	b.WriteString("Available top-level fields:\n")
	for _, id := range schema.Order {
		field, _ := schema.Field(id)
		hint := exampleInvocation(field)
		b.WriteString(fmt.Sprintf("  - %s (%s)%s\n", id, field.Kind, hint))
	}
}

func exampleInvocation(field *Field) string {
	switch field.Kind {
	case KindArray:
		return fmt.Sprintf(" e.g. {\"action\":\"add\",\"path\":\"/%s\",\"value\":...}", field.ID)
	case KindMap:
		return fmt.Sprintf(" e.g. {\"action\":\"upsert\",\"path\":\"/%s\",\"key\":\"...\",\"value\":...}", field.ID)
	case KindTopic:
		return fmt.Sprintf(" e.g. {\"action\":\"add\",\"path\":\"/%s\",\"key\":\"subtopic-name\",\"value\":\"description\"}", field.ID)
	default:
		return fmt.Sprintf(" e.g. {\"action\":\"set\",\"path\":\"/%s\",\"value\":...}", field.ID)
	}
}

// renderField writes field's rendering if path is visible, returning whether
// anything was written. indent is the nesting level for readability.
func renderField(b *strings.Builder, schema *Schema, tree *Tree, state *MemoryState, field *Field, path string, indent int) bool {
	visible := state.Visible(schema, path)
	value, exists, err := tree.Get(schema, path)
	if err != nil {
		exists = false
	}

	if !visible {
		return false
	}

	pad := strings.Repeat("  ", indent)
	if !exists {
		b.WriteString(fmt.Sprintf("%s%s: (unset)\n", pad, lastSegment(path)))
		return true
	}

	switch field.Kind {
	case KindObject:
		b.WriteString(fmt.Sprintf("%s%s:\n", pad, lastSegment(path)))
		wroteAny := false
		for _, name := range field.PropertyOrder {
			child := field.Properties[name]
			if renderField(b, schema, tree, state, child, Child(path, name), indent+1) {
				wroteAny = true
			}
		}
		if !wroteAny {
			b.WriteString(fmt.Sprintf("%s  (no visible properties)\n", pad))
		}
	case KindArray:
		renderArray(b, schema, tree, state, field, path, value, indent)
	case KindMap:
		renderMap(b, schema, tree, state, field, path, value, indent)
	case KindTopic:
		renderTopic(b, field, path, value, state, indent)
	default:
		b.WriteString(fmt.Sprintf("%s%s: %s\n", pad, lastSegment(path), renderScalar(value)))
	}
	return true
}

func renderArray(b *strings.Builder, schema *Schema, tree *Tree, state *MemoryState, field *Field, path string, value any, indent int) {
	pad := strings.Repeat("  ", indent)
	arr, _ := value.([]any)

	pg := state.GetPagination(path)
	start, end := paginationWindow(len(arr), pg)

	ls, hasLoad := state.GetLoadState(path)
	total := len(arr)
	if hasLoad && ls.Total > total {
		total = ls.Total
	}

	b.WriteString(fmt.Sprintf("%s%s: [%d-%d of %d]\n", pad, lastSegment(path), start, end, total))
	for i := start; i < end; i++ {
		itemPath := Child(path, itoa(i))
		if field.Items != nil && (field.Items.Kind == KindObject || field.Items.Kind == KindArray || field.Items.Kind == KindMap || field.Items.Kind == KindTopic) {
			renderField(b, schema, tree, state, field.Items, itemPath, indent+1)
			continue
		}
		b.WriteString(fmt.Sprintf("%s  [%d]: %s\n", pad, i, renderScalar(arr[i])))
	}
	if hasLoad && ls.Stale {
		b.WriteString(fmt.Sprintf("%s  (stale — view again to refresh)\n", pad))
	}
}

func renderMap(b *strings.Builder, schema *Schema, tree *Tree, state *MemoryState, field *Field, path string, value any, indent int) {
	pad := strings.Repeat("  ", indent)
	m, _ := value.(map[string]any)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pg := state.GetPagination(path)
	start, end := paginationWindow(len(keys), pg)

	ls, hasLoad := state.GetLoadState(path)
	total := len(keys)
	if hasLoad && ls.Total > total {
		total = ls.Total
	}

	b.WriteString(fmt.Sprintf("%s%s: [%d-%d of %d]\n", pad, lastSegment(path), start, end, total))
	for i := start; i < end; i++ {
		key := keys[i]
		entryPath := Child(path, key)
		if field.Values != nil && (field.Values.Kind == KindObject || field.Values.Kind == KindArray || field.Values.Kind == KindMap || field.Values.Kind == KindTopic) {
			renderField(b, schema, tree, state, field.Values, entryPath, indent+1)
			continue
		}
		b.WriteString(fmt.Sprintf("%s  %s: %s\n", pad, key, renderScalar(m[key])))
	}
}

func renderTopic(b *strings.Builder, field *Field, path string, value any, state *MemoryState, indent int) {
	pad := strings.Repeat("  ", indent)
	tree, _ := value.(*TopicTree)
	if tree == nil {
		tree = NewTopicTree()
	}
	names := make([]string, 0, len(tree.Nodes))
	for n := range tree.Nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	b.WriteString(fmt.Sprintf("%s%s:\n", pad, lastSegment(path)))
	for _, name := range names {
		renderTopicNode(b, tree.Nodes[name], name, Child(path, name), state, indent+1)
	}
}

func renderTopicNode(b *strings.Builder, node *TopicNode, name, path string, state *MemoryState, indent int) {
	if !state.VisibleNoSchema(path) {
		return
	}
	pad := strings.Repeat("  ", indent)
	desc := ""
	if node.Description != nil {
		desc = " — " + *node.Description
	}
	b.WriteString(fmt.Sprintf("%s%s%s\n", pad, name, desc))

	children := make([]string, 0, len(node.Subtopics))
	for c := range node.Subtopics {
		children = append(children, c)
	}
	sort.Strings(children)
	for _, c := range children {
		renderTopicNode(b, node.Subtopics[c], c, Child(path, c), state, indent+1)
	}
}

func renderScalar(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func lastSegment(path string) string {
	tokens := Split(path)
	if len(tokens) == 0 {
		return path
	}
	return tokens[len(tokens)-1]
}

// paginationWindow resolves a requested offset/limit (0 meaning "unset") into
// a concrete [start, end) slice window clamped to length.
func paginationWindow(length int, pg Pagination) (int, int) {
	start := pg.Offset
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	limit := pg.Limit
	if limit <= 0 {
		limit = 20
	}
	end := start + limit
	if end > length {
		end = length
	}
	return start, end
}
