package main

import (
	"context"
	"fmt"

	"github.com/rakunlabs/into"
	"github.com/rakunlabs/logi"

	"github.com/indigofenix/aac/internal/config"
	"github.com/indigofenix/aac/internal/server"
	"github.com/indigofenix/aac/internal/service/llm/antropic"
	"github.com/indigofenix/aac/internal/session"
)

var (
	name    = "aacd"
	version = "v0.0.0"
)

func main() {
	config.Service = name + "/" + version

	into.Init(run,
		into.WithLogger(logi.InitializeLog(logi.WithCaller(false))),
		into.WithMsgf("%s [%s]", name, version),
	)
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is not configured")
	}

	provider, err := antropic.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.InsecureSkipVerify)
	if err != nil {
		return fmt.Errorf("create antropic provider: %w", err)
	}

	sessions, err := session.New(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	defer sessions.Close()

	schema := server.DefaultSchema()

	srv, err := server.New(cfg.Server, cfg.Memory, schema, sessions, provider)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	return srv.Start(ctx)
}
