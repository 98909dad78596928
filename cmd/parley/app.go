package main

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/set-night/parley"
	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/logging"
	"github.com/set-night/parley/internal/repository"
	"github.com/set-night/parley/internal/service"
)

// app is the wiring shared by every front-end.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	pool       *pgxpool.Pool
	completion *service.CompletionService
	chat       *service.ChatService
}

// newApp loads configuration, installs the logger and builds the services.
// logOutput is where logs go: the chat window owns the terminal, so it logs
// to a file.
func newApp(ctx context.Context, logOutput, name string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logOutput == "" {
		logOutput = cfg.LogFile
	}

	logger, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Output:   logOutput,
		Service:  name,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pricing, err := cfg.Prices()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	var archive service.Archive
	if cfg.ArchiveEnabled() {
		if err := a.openArchive(ctx); err != nil {
			return nil, err
		}
		archive = repository.NewConversationArchive(a.pool)
	}

	a.completion = service.NewCompletionService(service.CompletionOptions{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Stream:      cfg.Stream,
	})

	conversations := service.NewConversationService(service.ConversationOptions{
		Model:            cfg.Model,
		MaxConversations: cfg.MaxConversations,
		Archive:          archive,
	})
	if archive != nil && cfg.ArchiveRestore {
		n, err := conversations.Restore(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("restore conversations: %w", err)
		}
		logger.Info("conversations restored", zap.Int("count", n))
	}

	a.chat = service.NewChatService(conversations, a.completion, service.ChatOptions{
		Pricing: pricing,
		Timeout: config.RequestTimeout,
	})

	logger.Info("parley started",
		zap.String("model", cfg.Model),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("stream", cfg.Stream),
		zap.Bool("archive", archive != nil),
	)
	return a, nil
}

func (a *app) openArchive(ctx context.Context) error {
	migrationsFS, err := fs.Sub(parley.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	if err := repository.RunMigrations(a.cfg.DatabaseURL, migrationsFS); err != nil {
		return err
	}
	pool, err := repository.NewPool(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.pool = pool
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}
