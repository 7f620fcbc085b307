package memory

import "time"

// LoadState records DB-backed-field bookkeeping: whether the field's value
// currently held in the tree reflects the store (loaded), has since been
// superseded by a write the engine knows about (stale), and when it was last
// refreshed. Total is the full item count for paginated container fields,
// independent of how much of it is currently materialized.
type LoadState struct {
	Loaded   bool
	Stale    bool
	LoadedAt time.Time
	Total    int
}

// MarkLoaded records that path's value now reflects the store as of now.
func (s *MemoryState) MarkLoaded(path string) {
	path = Normalize(path)
	ls, ok := s.loadState[path]
	if !ok {
		ls = &LoadState{}
		s.loadState[path] = ls
	}
	ls.Loaded = true
	ls.Stale = false
	ls.LoadedAt = nowFunc()
}

// MarkStale records that path's DB-backed value may no longer reflect the
// store (e.g. another session wrote to it).
func (s *MemoryState) MarkStale(path string) {
	path = Normalize(path)
	ls, ok := s.loadState[path]
	if !ok {
		ls = &LoadState{}
		s.loadState[path] = ls
	}
	ls.Stale = true
}

// SetTotal records the full item count for a DB-backed paginated container.
func (s *MemoryState) SetTotal(path string, total int) {
	path = Normalize(path)
	ls, ok := s.loadState[path]
	if !ok {
		ls = &LoadState{}
		s.loadState[path] = ls
	}
	ls.Total = total
}

// GetLoadState returns the recorded LoadState for path, and whether one
// exists at all.
func (s *MemoryState) GetLoadState(path string) (LoadState, bool) {
	ls, ok := s.loadState[Normalize(path)]
	if !ok {
		return LoadState{}, false
	}
	return *ls, true
}

// LoadStateSnapshot is the serializable form of every recorded LoadState,
// keyed by path, for persisting alongside a session's tree and visibility.
type LoadStateSnapshot map[string]LoadState

// SnapshotLoadState returns a serializable copy of all recorded load state.
func (s *MemoryState) SnapshotLoadState() LoadStateSnapshot {
	out := make(LoadStateSnapshot, len(s.loadState))
	for p, ls := range s.loadState {
		out[p] = *ls
	}
	return out
}

// RestoreLoadState replaces the overlay's load state with a previously
// captured snapshot, as when resuming a persisted session.
func (s *MemoryState) RestoreLoadState(snap LoadStateSnapshot) {
	s.loadState = make(map[string]*LoadState, len(snap))
	for p, ls := range snap {
		v := ls
		s.loadState[p] = &v
	}
}

// nowFunc is overridden in tests that need deterministic timestamps.
var nowFunc = time.Now
