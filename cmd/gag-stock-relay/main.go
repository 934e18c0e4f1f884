package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/i474232898/gag-stock-relay/internal/api/http"
	"github.com/i474232898/gag-stock-relay/internal/config"
	"github.com/i474232898/gag-stock-relay/internal/discord"
	"github.com/i474232898/gag-stock-relay/internal/gagapi"
	"github.com/i474232898/gag-stock-relay/internal/relay"
	"github.com/i474232898/gag-stock-relay/internal/scheduler"
	"github.com/i474232898/gag-stock-relay/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:   "gag-stock-relay",
		Usage:  "Post Grow a Garden stock and weather snapshots to a Discord webhook",
		Action: runOnce,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Fetch, render and publish once, then exit",
				Action: runOnce,
			},
			{
				Name:   "serve",
				Usage:  "Publish on a fixed interval and expose the status API",
				Action: serve,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// app holds the components shared by both commands.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	store   *store.MemoryStore
	service *relay.Service
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := gagapi.NewClient(httpClient, cfg.APIBase, cfg.HTTPTimeout, log)
	publisher := discord.NewPublisher(httpClient, cfg.WebhookURL, cfg.WebhookUsername, cfg.HTTPTimeout)
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := relay.NewService(source, publisher, memStore, relay.Options{
		MaxItemsPerCategory: cfg.MaxItemsPerCategory,
		Limits:              cfg.Limits,
	}, log)

	return &app{cfg: cfg, logger: log, store: memStore, service: service}, nil
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// runTimeout bounds a whole run: two fetches and one publish.
func (a *app) runTimeout() time.Duration {
	return 3 * a.cfg.HTTPTimeout
}

func runOnce(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.runTimeout())
	defer cancel()

	if _, err := a.service.Run(ctx); err != nil {
		return fmt.Errorf("relay run failed: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	sched := scheduler.New(a.cfg.FetchInterval, a.runTimeout(), a.service, a.logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	server := fiber.New(fiber.Config{
		AppName:               "gag-stock-relay",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          a.runTimeout() + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})
	server.Use(logger.New())
	server.Use(recover.New())
	httpapi.RegisterRoutes(server, a.service, a.store, a.runTimeout())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server", slog.String("port", a.cfg.Port))
		if err := server.Listen(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped successfully")
	return nil
}
