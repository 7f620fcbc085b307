package memory

// TopicNode is one node of a TopicTree: an optional free-form description
// plus a (possibly empty) mapping of subtopic name to child TopicNode.
// Invariant: Subtopics is never nil once a node has been created by the
// engine (spec.md §3 invariant 6).
type TopicNode struct {
	Description *string                `json:"description,omitempty"`
	Subtopics   map[string]*TopicNode  `json:"subtopics"`
}

// NewTopicNode returns an empty, well-formed TopicNode.
func NewTopicNode() *TopicNode {
	return &TopicNode{Subtopics: map[string]*TopicNode{}}
}

// TopicTree is the runtime value of a top-level `topic` field: a named
// collection of root TopicNodes.
type TopicTree struct {
	Nodes map[string]*TopicNode
}

// NewTopicTree returns an empty TopicTree.
func NewTopicTree() *TopicTree {
	return &TopicTree{Nodes: map[string]*TopicNode{}}
}

// walk follows nodePath (a sequence of subtopic names) from the tree root and
// returns the last named node, the 1-based depth it sits at, and whether
// every named node exists. An empty nodePath denotes the tree root: it
// returns a nil node, depth 0 and true.
func (t *TopicTree) walk(nodePath []string) (*TopicNode, int, bool) {
	if len(nodePath) == 0 {
		return nil, 0, true
	}

	node, ok := t.Nodes[nodePath[0]]
	if !ok {
		return nil, 0, false
	}
	depth := 1
	for _, name := range nodePath[1:] {
		child, ok := node.Subtopics[name]
		if !ok {
			return nil, 0, false
		}
		node = child
		depth++
	}
	return node, depth, true
}

// breadthAt returns the number of direct subtopics nodePath's node currently
// has (or the number of root topics, if nodePath is empty).
func (t *TopicTree) breadthAt(nodePath []string) int {
	if len(nodePath) == 0 {
		return len(t.Nodes)
	}
	node, _, ok := t.walk(nodePath)
	if !ok || node == nil {
		return 0
	}
	return len(node.Subtopics)
}

// ChildrenAt is the exported form of childrenMapAt, for use by ops handlers
// outside this package.
func (t *TopicTree) ChildrenAt(nodePath []string) (map[string]*TopicNode, bool) {
	return t.childrenMapAt(nodePath)
}

// childrenMapAt returns the map subtopics would be added to/removed from at
// nodePath (root map if nodePath is empty), or nil if nodePath doesn't resolve.
func (t *TopicTree) childrenMapAt(nodePath []string) (map[string]*TopicNode, bool) {
	if len(nodePath) == 0 {
		return t.Nodes, true
	}
	node, _, ok := t.walk(nodePath)
	if !ok || node == nil {
		return nil, false
	}
	if node.Subtopics == nil {
		node.Subtopics = map[string]*TopicNode{}
	}
	return node.Subtopics, true
}
