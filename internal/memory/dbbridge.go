package memory

import "context"

// DBBinding is an optional set of CRUD hooks that back a field with an
// external data source instead of (or in addition to) the in-process tree.
// A field with a nil DB is purely in-memory. Every hook is optional; the
// executor falls back to in-tree semantics for whichever hooks are absent.
type DBBinding struct {
	// Read loads the field's current value given the accumulated DBContext.
	// Used to populate the tree lazily (see Populate) rather than on every
	// Resolve call.
	Read func(ctx context.Context, dbCtx map[string]any) (any, error)

	// Write persists a full replacement value (used by set).
	Write func(ctx context.Context, dbCtx map[string]any, value any) error

	// List returns the paginated contents of a container field, used to back
	// view without requiring the whole collection to be loaded in memory.
	// total is the full item count regardless of limit/offset.
	List func(ctx context.Context, dbCtx map[string]any, offset, limit int) (items []any, total int, err error)

	// Get loads a single keyed/indexed child of a container field.
	Get func(ctx context.Context, dbCtx map[string]any, key string) (any, bool, error)

	Add    func(ctx context.Context, dbCtx map[string]any, value any) error
	Insert func(ctx context.Context, dbCtx map[string]any, index int, value any) error
	Update func(ctx context.Context, dbCtx map[string]any, key string, value any) error
	Upsert func(ctx context.Context, dbCtx map[string]any, key string, value any) error
	Delete func(ctx context.Context, dbCtx map[string]any, key string) error
	Clear  func(ctx context.Context, dbCtx map[string]any) error
	Rename func(ctx context.Context, dbCtx map[string]any, oldKey, newKey string) error

	// FromDB converts a value as returned by the store into the engine's
	// internal representation (e.g. row -> map[string]any).
	FromDB func(raw any) (any, error)
	// ToDB converts an internal value into the store's wire shape before
	// Write/Add/Insert/Update/Upsert are called.
	ToDB func(value any) (any, error)

	// ExtractChildContext is called while the resolver descends through a
	// value one token at a time; it lets a DB-backed parent inject
	// identifiers (row ids, foreign keys) the child's own hooks will need,
	// without the child itself knowing how its parent is stored. value is
	// the parent's currently-known value (may be nil if not loaded), nextKey
	// is the token about to be descended into.
	ExtractChildContext func(value any, nextKey string) map[string]any
}

// IsDBBacked reports whether f has any DB hooks configured.
func (f *Field) IsDBBacked() bool {
	return f != nil && f.DB != nil
}

func (d *DBBinding) fromDB(raw any) (any, error) {
	if d == nil || d.FromDB == nil {
		return raw, nil
	}
	return d.FromDB(raw)
}

func (d *DBBinding) toDB(value any) (any, error) {
	if d == nil || d.ToDB == nil {
		return value, nil
	}
	return d.ToDB(value)
}

// DecodeFromDB applies the binding's FromDB transform if one is configured,
// otherwise returns raw unchanged. Exported for use by ops handlers that
// decode store rows outside this package.
func (d *DBBinding) DecodeFromDB(raw any) (any, error) { return d.fromDB(raw) }

// EncodeToDB applies the binding's ToDB transform if one is configured,
// otherwise returns value unchanged.
func (d *DBBinding) EncodeToDB(value any) (any, error) { return d.toDB(value) }

// Populate loads every DB-backed top-level field's value into tree via its
// Read hook, recording LoadState for each so the renderer can show
// loaded/stale bookkeeping. Fields without a Read hook, or without a DB
// binding at all, are left untouched. baseCtx seeds DBContext the same way
// Resolve does.
func Populate(ctx context.Context, schema *Schema, tree *Tree, state *MemoryState, baseCtx map[string]any) error {
	for _, id := range schema.Order {
		field, ok := schema.Field(id)
		if !ok || field.DB == nil || field.DB.Read == nil {
			continue
		}
		dbCtx := map[string]any{}
		for k, v := range baseCtx {
			dbCtx[k] = v
		}
		raw, err := field.DB.Read(ctx, dbCtx)
		if err != nil {
			return dbErrorf("loading %q: %v", id, err)
		}
		value, err := field.DB.fromDB(raw)
		if err != nil {
			return dbErrorf("decoding %q: %v", id, err)
		}
		tree.SetField(id, value)
		state.MarkLoaded(Join([]string{id}))
	}
	return nil
}
