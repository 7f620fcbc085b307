package memory

// ApplyBatch runs every op in order against e, never stopping early on
// failure, and returns one OpResult per op (with wildcard ops expanding into
// one result per matched child, per spec.md §5).
func ApplyBatch(e *Engine, ops []Op) []OpResult {
	var results []OpResult
	for _, op := range ops {
		results = append(results, e.applyOne(op)...)
	}
	return results
}

func (e *Engine) applyOne(op Op) []OpResult {
	if op.Action != ActionView && op.Action != ActionHide && HasTrailingWildcard(op.Path) {
		return []OpResult{{
			Path:    op.Path,
			Ok:      false,
			Message: "wildcard paths are only valid for view and hide",
		}}
	}

	if HasTrailingWildcard(op.Path) {
		return e.applyWildcard(op)
	}

	handler, ok := lookupOp(op.Action)
	if !ok {
		return []OpResult{{Path: op.Path, Ok: false, Message: "unknown action"}}
	}

	step, err := e.resolveForOp(op.Path)
	if err != nil {
		return []OpResult{{Path: op.Path, Ok: false, Message: err.Error()}}
	}

	msg, err := handler(e, op, step)
	if err != nil {
		return []OpResult{{Path: op.Path, Ok: false, Message: err.Error()}}
	}

	e.autoOpenOnWrite(op.Action, step)

	return []OpResult{{Path: op.Path, Ok: true, Message: msg}}
}

// applyWildcard expands a trailing-"*" view/hide op into one op per current
// child of the base container, per spec.md §4.G: wildcard expansion reflects
// the shape of the tree at the moment the batch op runs, not a later state.
func (e *Engine) applyWildcard(op Op) []OpResult {
	base, _ := TrimWildcard(op.Path)

	children, err := e.childKeys(base)
	if err != nil {
		return []OpResult{{Path: op.Path, Ok: false, Message: err.Error()}}
	}

	if len(children) == 0 {
		return []OpResult{{Path: op.Path, Ok: true, Message: "no children to expand"}}
	}

	var results []OpResult
	for _, key := range children {
		childOp := op
		childOp.Path = Child(base, key)
		handler, _ := lookupOp(op.Action)
		step, err := e.resolveForOp(childOp.Path)
		if err != nil {
			results = append(results, OpResult{Path: childOp.Path, Ok: false, Message: err.Error()})
			continue
		}
		msg, err := handler(e, childOp, step)
		if err != nil {
			results = append(results, OpResult{Path: childOp.Path, Ok: false, Message: err.Error()})
			continue
		}
		e.autoOpenOnWrite(op.Action, step)
		results = append(results, OpResult{Path: childOp.Path, Ok: true, Message: msg})
	}
	return results
}

// childKeys enumerates the current keys/indices directly under base,
// regardless of visibility (expansion sees the true shape of the tree; the
// visibility gate governs what gets rendered back, not what gets expanded).
func (e *Engine) childKeys(base string) ([]string, error) {
	if Normalize(base) == Root {
		keys := make([]string, 0, len(e.Schema.Order))
		keys = append(keys, e.Schema.Order...)
		return keys, nil
	}

	step, err := e.resolveForOp(base)
	if err != nil {
		return nil, err
	}

	value, exists, err := e.Tree.Get(e.Schema, base)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	switch step.Field.Kind {
	case KindObject, KindMap:
		m, _ := value.(map[string]any)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		return keys, nil
	case KindArray:
		arr, _ := value.([]any)
		keys := make([]string, len(arr))
		for i := range arr {
			keys[i] = itoa(i)
		}
		return keys, nil
	case KindTopic:
		tree, _ := value.(*TopicTree)
		if tree == nil {
			return nil, nil
		}
		nodeMap, ok := tree.childrenMapAt(step.NodePath)
		if !ok {
			return nil, nil
		}
		keys := make([]string, 0, len(nodeMap))
		for k := range nodeMap {
			keys = append(keys, k)
		}
		return keys, nil
	default:
		return nil, shapeErrorf("cannot expand wildcard under scalar field")
	}
}

// autoOpenOnWrite makes the path of every successful mutating op visible
// (whether or not a value was there before), so the LLM never has to chase
// a write with an unprompted view just to see what it just wrote. It opens
// only step.Path itself, not its children; view, hide, delete and rename
// are skipped.
func (e *Engine) autoOpenOnWrite(action Action, step *SchemaStep) {
	if action == ActionView || action == ActionHide || action == ActionDelete || action == ActionRename {
		// delete closes the removed path itself; rename closes the old path
		// and opens the new one. Re-opening the pre-mutation step here would
		// undo both.
		return
	}
	if step == nil {
		return
	}
	e.State.Open(step.Path)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
