// Package session persists and restores the opaque state a structured
// memory session needs to survive a process restart: its value tree, its
// visibility overlay, and the conversation history driving it. The engine
// and the conversation format are both treated as opaque JSON from this
// package's point of view; it never imports internal/memory or
// internal/service.
package session

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/worldline-go/types"
)

// ErrNotFound is returned by Load when no snapshot exists for the given ID.
var ErrNotFound = errors.New("session: not found")

// NewID mints a ULID session identifier for callers that start a session
// without naming one. The chat-turn handler does not call it; it requires
// the session ID in the request path.
func NewID() string {
	return ulid.Make().String()
}

// Snapshot is the full persisted state of one session. Tree, Pagination,
// LoadState and Messages are pre-serialized JSON blobs; callers own
// encoding/decoding against their own types (memory.Tree, memory.MemoryState,
// service.Message, ...). Visible is the one structured field: the flat list
// of paths MemoryState.VisiblePaths reports, carried as a types.Slice so the
// store layer round-trips it without a manual JSON step.
type Snapshot struct {
	ID string

	Tree       string
	Visible    types.Slice[string]
	Pagination string
	LoadState  string
	Messages   string

	CreatedAt types.Time
	UpdatedAt types.Time
}

// Store loads and saves session snapshots.
type Store interface {
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, id string) error
	Close() error
}
