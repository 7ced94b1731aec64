package main

import (
	"context"
	"errors"
	"fmt"

	"minebot/internal/config"
	"minebot/src"
	"minebot/src/activity"
	"minebot/src/bot"
	"minebot/src/llm/action"
	"minebot/src/logger"
	"minebot/src/storage"

	"github.com/joho/godotenv"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *src.Config
	catalog  config.Catalog
	provider *action.Provider
	runner   *bot.Runner
	store    *storage.RedisStorage
}

// loadConfig reads .env when present, then the environment and flags.
// quiet moves stdout logging to stderr so command output stays parseable.
func loadConfig(quiet bool) (*src.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := src.LoadConfig()
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		cfg.Bot.CatalogPath = catalogPath
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if quiet && cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	if err := logger.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *src.Config) (*app, error) {
	catalog, err := config.LoadCatalog(cfg.Bot.CatalogPath)
	if err != nil {
		return nil, err
	}

	activityLog := activity.NewLog(logger.Component("activity"))

	chatModel, err := action.NewChatModel(ctx, cfg.LLM)
	switch {
	case errors.Is(err, action.ErrNoCredential):
		chatModel = nil
		activityLog.Error("WARNING: OPENAI_API_KEY not set!")
		activityLog.Warning("Add it in GitHub Secrets or .env file")
	case err != nil:
		return nil, err
	}

	provider, err := action.NewProvider(ctx, chatModel, action.Options{
		BotName:  cfg.Bot.Name,
		Server:   cfg.Bot.Server,
		Fallback: catalog.Fallback,
		Timeout:  cfg.LLM.Timeout,
		Logger:   logger.Component("action"),
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, catalog: catalog, provider: provider}

	var sink activity.Sink
	if cfg.Redis.URL != "" {
		store, err := storage.NewRedisStorage(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			// memory stays local
			logger.Warn().Err(err).Msg("Redis unavailable, memory mirror disabled")
		} else {
			a.store = store
			sink = store
		}
	}

	runner, err := bot.NewRunner(provider, activityLog, activity.NewMemory(sink), bot.Options{
		Server:           cfg.Bot.Server,
		Goal:             cfg.Bot.Goal,
		Situations:       catalog.Situations,
		CycleInterval:    cfg.Bot.CycleInterval,
		RecoveryInterval: cfg.Bot.RecoveryInterval,
		Logger:           logger.Component("runner"),
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.runner = runner
	return a, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close redis client")
	}
}
