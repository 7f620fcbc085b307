package memory

// Pagination is the per-container window the LLM has currently requested
// via view's offset/limit arguments.
type Pagination struct {
	Offset int
	Limit  int
}

// MemoryState is the visibility overlay: which paths are currently visible to
// the LLM, what pagination window each paginated container is showing, and
// DB load-state per path. It holds no schema or value data itself.
type MemoryState struct {
	visible    map[string]struct{}
	pagination map[string]Pagination
	loadState  map[string]*LoadState
}

// NewMemoryState returns an empty overlay: nothing visible, no pagination
// windows, no load state.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		visible:    map[string]struct{}{},
		pagination: map[string]Pagination{},
		loadState:  map[string]*LoadState{},
	}
}

// IsVisible reports whether path is directly visible (explicitly opened).
// It does not account for the implicit-visibility rule; use Visible for that.
func (s *MemoryState) IsVisible(path string) bool {
	_, ok := s.visible[Normalize(path)]
	return ok
}

// Visible reports whether path should be shown to the LLM: either it was
// explicitly opened, one of its ancestors was opened and the field chain
// down to it is all marked Opened (spec.md §4.F's implicit-visibility rule),
// or it is a descendant of an explicitly-visible path.
func (s *MemoryState) Visible(schema *Schema, path string) bool {
	path = Normalize(path)
	if s.IsVisible(path) {
		return true
	}

	for ancestor := range s.visible {
		if IsDescendant(path, ancestor) {
			return true
		}
	}

	return s.impliedVisible(schema, path)
}

// impliedVisible walks path from the schema root, checking that every field
// along the way, down to and including the terminal one, is marked Opened.
// If so the whole chain is implicitly visible once its nearest explicitly
// visible ancestor (possibly the root) is shown.
func (s *MemoryState) impliedVisible(schema *Schema, path string) bool {
	tokens := Split(path)
	if len(tokens) == 0 {
		return false
	}

	field, ok := schema.Field(tokens[0])
	if !ok || !field.Opened {
		return false
	}

	cur := field
	for _, tok := range tokens[1:] {
		switch cur.Kind {
		case KindObject:
			child, declared := cur.Properties[tok]
			if !declared {
				_, generic := cur.AdditionalAllowed()
				child = generic
			}
			if child == nil || !child.Opened {
				return false
			}
			cur = child
		case KindArray:
			if cur.Items == nil || !cur.Items.Opened {
				return false
			}
			cur = cur.Items
		case KindMap:
			if cur.Values == nil || !cur.Values.Opened {
				return false
			}
			cur = cur.Values
		default:
			return false
		}
	}
	return true
}

// VisibleNoSchema reports whether path is explicitly visible or nested under
// an explicitly visible ancestor, without consulting the schema-driven
// implicit-visibility rule. Used for topic nodes, which have no per-node
// schema for Opened to apply to.
func (s *MemoryState) VisibleNoSchema(path string) bool {
	path = Normalize(path)
	if s.IsVisible(path) {
		return true
	}
	for ancestor := range s.visible {
		if IsDescendant(path, ancestor) {
			return true
		}
	}
	return false
}

// Open marks path (and, implicitly, everything under it per Visible) as
// directly visible.
func (s *MemoryState) Open(path string) {
	s.visible[Normalize(path)] = struct{}{}
}

// OpenChildren marks every immediate child path as visible, without marking
// the parent itself (used by view's open-children step in ops/view.go).
func (s *MemoryState) OpenChildren(parent string, childKeys []string) {
	for _, k := range childKeys {
		s.Open(Child(parent, k))
	}
}

// Close hides exactly path, without affecting descendants.
func (s *MemoryState) Close(path string) {
	delete(s.visible, Normalize(path))
}

// CloseDescendants hides path and every path nested under it, and drops any
// pagination windows scoped to them. Load-state entries are kept.
func (s *MemoryState) CloseDescendants(path string) {
	path = Normalize(path)
	for p := range s.visible {
		if IsDescendant(p, path) {
			delete(s.visible, p)
		}
	}
	for p := range s.pagination {
		if IsDescendant(p, path) {
			delete(s.pagination, p)
		}
	}
}

// SetPagination records the offset/limit window currently requested for a
// paginated container path.
func (s *MemoryState) SetPagination(path string, p Pagination) {
	s.pagination[Normalize(path)] = p
}

// GetPagination returns the recorded window for path, or the zero window
// (offset 0, limit 0 meaning "engine default") if none was set.
func (s *MemoryState) GetPagination(path string) Pagination {
	return s.pagination[Normalize(path)]
}

// VisiblePaths returns every explicitly-opened path, for serialization.
func (s *MemoryState) VisiblePaths() []string {
	out := make([]string, 0, len(s.visible))
	for p := range s.visible {
		out = append(out, p)
	}
	return out
}

// RestoreVisible replaces the overlay's visible set with a previously
// persisted list of paths, as when resuming a persisted session.
func (s *MemoryState) RestoreVisible(paths []string) {
	s.visible = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		s.visible[Normalize(p)] = struct{}{}
	}
}

// SnapshotPagination returns every recorded pagination window, for
// serialization alongside VisiblePaths and SnapshotLoadState.
func (s *MemoryState) SnapshotPagination() map[string]Pagination {
	out := make(map[string]Pagination, len(s.pagination))
	for p, v := range s.pagination {
		out[p] = v
	}
	return out
}

// RestorePagination replaces the overlay's pagination windows with a
// previously persisted set, as when resuming a persisted session.
func (s *MemoryState) RestorePagination(windows map[string]Pagination) {
	s.pagination = make(map[string]Pagination, len(windows))
	for p, v := range windows {
		s.pagination[Normalize(p)] = v
	}
}
