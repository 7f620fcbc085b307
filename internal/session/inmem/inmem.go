// Package inmem is a non-persistent session.Store: data does not survive
// process restarts. It exists for local development and tests where
// standing up postgres or sqlite is unwanted overhead.
package inmem

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/worldline-go/types"

	"github.com/indigofenix/aac/internal/session"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Snapshot
}

func New() *Store {
	slog.Info("using in-memory session store (data will not persist across restarts)")

	return &Store{
		sessions: make(map[string]session.Snapshot),
	}
}

func (s *Store) Load(_ context.Context, id string) (*session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}

	return &snap, nil
}

func (s *Store) Save(_ context.Context, snap session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := types.NewTime(time.Now().UTC())
	if existing, ok := s.sessions[snap.ID]; ok {
		snap.CreatedAt = existing.CreatedAt
	} else {
		snap.CreatedAt = now
	}
	snap.UpdatedAt = now

	s.sessions[snap.ID] = snap

	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)

	return nil
}

func (s *Store) Close() error { return nil }
