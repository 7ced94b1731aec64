package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minebot/internal/server"
	"minebot/src/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// serveCmd runs the dashboard and the control endpoints
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Serve the dashboard on PORT. The bot stays idle until started from the
dashboard or with GET /start, and runs one cycle every BOT_CYCLE_INTERVAL.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info().Msg("============================================================")
	logger.Info().Msg("🤖 MINECRAFT AI BOT")
	logger.Info().Str("bot", cfg.Bot.Name).Msg("Bot name")
	logger.Info().Str("server", cfg.Bot.Server).Msg("Server")
	logger.Info().Bool("configured", a.provider.HasModel()).Str("provider", cfg.LLM.Provider).Msg("Action model")
	logger.Info().Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)).Msg("Web dashboard")
	logger.Info().Msg("============================================================")

	opts := server.Options{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		BotName:        cfg.Bot.Name,
		Server:         cfg.Bot.Server,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Logger:         logger.Component("http"),
	}
	if a.store != nil {
		opts.Mirror = a.store
	}
	srv := server.New(ctx, a.runner, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if a.runner.Active() {
			if err := a.runner.Stop(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Run loop did not exit in time")
			}
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
