// Package postgres implements session.Store against PostgreSQL via pgx and
// goqu, following the connection/migration wiring rakunlabs-at's own
// postgres-backed store used for its entity tables.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/worldline-go/types"

	"github.com/indigofenix/aac/internal/config"
	"github.com/indigofenix/aac/internal/crypto"
	"github.com/indigofenix/aac/internal/session"
)

var (
	ConnMaxLifetime = 15 * time.Minute
	MaxIdleConns    = 3
	MaxOpenConns    = 3

	DefaultTablePrefix = "aac_"
)

type Store struct {
	db    *sql.DB
	goqu  *goqu.Database
	table exp.IdentifierExpression

	encKey []byte
}

func New(ctx context.Context, cfg *config.StorePostgres, encKey []byte) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("postgres configuration is nil")
	}
	if cfg.Datasource == "" {
		return nil, errors.New("postgres datasource is required")
	}

	tablePrefix := DefaultTablePrefix
	if cfg.TablePrefix != nil {
		tablePrefix = *cfg.TablePrefix
	}

	migrate := cfg.Migrate
	if migrate.Table == "" {
		migrate.Table = "migrations"
	}
	if migrate.Datasource == "" {
		migrate.Datasource = cfg.Datasource
	}
	if migrate.Schema == "" {
		migrate.Schema = cfg.Schema
	}
	migrate.Table = tablePrefix + migrate.Table
	if migrate.Values == nil {
		migrate.Values = make(map[string]string)
	}
	migrate.Values["TABLE_PREFIX"] = tablePrefix

	if err := MigrateDB(ctx, &migrate); err != nil {
		return nil, fmt.Errorf("migrate session postgres: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Datasource)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.Schema != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", cfg.Schema)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set search_path: %w", err)
		}
	}

	connMaxLifetime := ConnMaxLifetime
	maxIdleConns := MaxIdleConns
	maxOpenConns := MaxOpenConns
	if cfg.ConnMaxLifetime != nil {
		connMaxLifetime = *cfg.ConnMaxLifetime
	}
	if cfg.MaxIdleConns != nil {
		maxIdleConns = *cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns != nil {
		maxOpenConns = *cfg.MaxOpenConns
	}

	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetMaxOpenConns(maxOpenConns)

	slog.Info("connected to session postgres store")

	return &Store{
		db:     db,
		goqu:   goqu.New("postgres", db),
		table:  goqu.T(tablePrefix + "sessions"),
		encKey: encKey,
	}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sessionRow struct {
	ID         string              `db:"id"`
	Tree       string              `db:"tree"`
	Visible    types.Slice[string] `db:"visible"`
	Pagination string              `db:"pagination"`
	LoadState  string              `db:"load_state"`
	Messages   string              `db:"messages"`
	CreatedAt  types.Time          `db:"created_at"`
	UpdatedAt  types.Time          `db:"updated_at"`
}

func (s *Store) Load(ctx context.Context, id string) (*session.Snapshot, error) {
	query, _, err := s.goqu.From(s.table).
		Select("id", "tree", "visible", "pagination", "load_state", "messages", "created_at", "updated_at").
		Where(goqu.I("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	var row sessionRow
	err = s.db.QueryRowContext(ctx, query).Scan(
		&row.ID, &row.Tree, &row.Visible, &row.Pagination, &row.LoadState, &row.Messages,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}

	return s.rowToSnapshot(row)
}

func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	tree, err := crypto.EncryptBlob(snap.Tree, s.encKey)
	if err != nil {
		return err
	}
	pagination, err := crypto.EncryptBlob(snap.Pagination, s.encKey)
	if err != nil {
		return err
	}
	loadState, err := crypto.EncryptBlob(snap.LoadState, s.encKey)
	if err != nil {
		return err
	}
	messages, err := crypto.EncryptBlob(snap.Messages, s.encKey)
	if err != nil {
		return err
	}

	now := types.NewTime(time.Now().UTC())

	query, _, err := s.goqu.Insert(s.table).Rows(
		goqu.Record{
			"id":         snap.ID,
			"tree":       tree,
			"visible":    snap.Visible,
			"pagination": pagination,
			"load_state": loadState,
			"messages":   messages,
			"created_at": now,
			"updated_at": now,
		},
	).OnConflict(goqu.DoUpdate("id", goqu.Record{
		"tree":       tree,
		"visible":    snap.Visible,
		"pagination": pagination,
		"load_state": loadState,
		"messages":   messages,
		"updated_at": now,
	})).ToSQL()
	if err != nil {
		return fmt.Errorf("build save query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("save session %q: %w", snap.ID, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	query, _, err := s.goqu.Delete(s.table).Where(goqu.I("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}

	return nil
}

func (s *Store) rowToSnapshot(row sessionRow) (*session.Snapshot, error) {
	tree, err := crypto.DecryptBlob(row.Tree, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt tree for %q: %w", row.ID, err)
	}
	pagination, err := crypto.DecryptBlob(row.Pagination, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt pagination for %q: %w", row.ID, err)
	}
	loadState, err := crypto.DecryptBlob(row.LoadState, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt load state for %q: %w", row.ID, err)
	}
	messages, err := crypto.DecryptBlob(row.Messages, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt messages for %q: %w", row.ID, err)
	}

	return &session.Snapshot{
		ID:         row.ID,
		Tree:       tree,
		Visible:    row.Visible,
		Pagination: pagination,
		LoadState:  loadState,
		Messages:   messages,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
