package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/rakunlabs/chu/loader/external/loaderconsul"
	_ "github.com/rakunlabs/chu/loader/external/loadervault"
	"github.com/rakunlabs/chu/loader/loaderenv"
	"github.com/rakunlabs/logi"

	"github.com/rakunlabs/chu"
	"github.com/rakunlabs/tell"
)

var Service = ""

type Config struct {
	LogLevel string `cfg:"log_level,no_prefix" default:"info"`

	Server    Server      `cfg:"server"`
	Store     Store       `cfg:"store"`
	Memory    Memory      `cfg:"memory"`
	LLM       LLMConfig   `cfg:"llm"`
	Telemetry tell.Config `cfg:"telemetry,noprefix"`
}

type Server struct {
	BasePath string `cfg:"base_path"`
	Port     string `cfg:"port" default:"8080"`
	Host     string `cfg:"host"`
}

// Memory configures the structured memory engine's defaults, independent of
// any particular session's schema.
type Memory struct {
	// DefaultPageSize is loaded from config but not read by the engine or the
	// server; a view without an explicit limit renders a fixed window of 20
	// items.
	DefaultPageSize int `cfg:"default_page_size" default:"20"`

	// VisibilityGate is copied onto each session's memory.Engine. The engine
	// does not act on it: mutations, view/hide and wildcard expansion behave
	// the same whether it is true or false.
	VisibilityGate bool `cfg:"visibility_gate" default:"true"`
}

type Store struct {
	Postgres *StorePostgres `cfg:"postgres"`
	SQLite   *StoreSQLite   `cfg:"sqlite"`

	// EncryptionKey, if set, enables AES-256-GCM encryption of the persisted
	// session blobs (tree, pagination, load-state, messages; the visible-path
	// list is stored in clear). Any non-empty string is accepted; it is hashed
	// with SHA-256 into a 32-byte key (crypto.DeriveKey).
	EncryptionKey string `cfg:"encryption_key" log:"-"`
}

type StorePostgres struct {
	TablePrefix     *string        `cfg:"table_prefix"`
	Datasource      string         `cfg:"datasource" log:"-"`
	Schema          string         `cfg:"schema"`
	ConnMaxLifetime *time.Duration `cfg:"conn_max_lifetime"`
	MaxIdleConns    *int           `cfg:"max_idle_conns"`
	MaxOpenConns    *int           `cfg:"max_open_conns"`

	Migrate Migrate `cfg:"migrate"`
}

type StoreSQLite struct {
	TablePrefix *string `cfg:"table_prefix"`
	Datasource  string  `cfg:"datasource"`

	Migrate Migrate `cfg:"migrate"`
}

type Migrate struct {
	Datasource string            `cfg:"datasource" log:"-"`
	Schema     string            `cfg:"schema"`
	Table      string            `cfg:"table"`
	Values     map[string]string `cfg:"values"`
}

// LLMConfig describes the single demo LLM provider used to drive a chat
// turn's tool-calling loop against the memory engine.
type LLMConfig struct {
	APIKey  string `cfg:"api_key" json:"api_key" log:"-"`
	BaseURL string `cfg:"base_url" json:"base_url"`
	Model   string `cfg:"model" json:"model" default:"claude-haiku-4-5"`

	InsecureSkipVerify bool `cfg:"insecure_skip_verify" json:"insecure_skip_verify"`
}

func Load(ctx context.Context, path string) (*Config, error) {
	var cfg Config
	if err := chu.Load(ctx, path, &cfg, chu.WithLoaderOption(loaderenv.New(loaderenv.WithPrefix("AACD_")))); err != nil {
		return nil, err
	}

	if err := logi.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("set log level %s: %w", cfg.LogLevel, err)
	}

	slog.Info("loaded configuration", "config", chu.MarshalMap(cfg))

	return &cfg, nil
}
