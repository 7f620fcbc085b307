package session

import (
	"context"
	"fmt"

	"github.com/indigofenix/aac/internal/config"
	"github.com/indigofenix/aac/internal/crypto"
	"github.com/indigofenix/aac/internal/session/inmem"
	"github.com/indigofenix/aac/internal/session/postgres"
	"github.com/indigofenix/aac/internal/session/sqlite"
)

// New builds a Store from configuration: postgres or sqlite if configured,
// falling back to the non-persistent in-memory store otherwise.
func New(ctx context.Context, cfg config.Store) (Store, error) {
	var encKey []byte
	if cfg.EncryptionKey != "" {
		key, err := crypto.DeriveKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("derive session encryption key: %w", err)
		}
		encKey = key
	}

	switch {
	case cfg.Postgres != nil:
		return postgres.New(ctx, cfg.Postgres, encKey)
	case cfg.SQLite != nil:
		return sqlite.New(ctx, cfg.SQLite, encKey)
	default:
		return inmem.New(), nil
	}
}
