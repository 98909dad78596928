package main

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/handler"
	"github.com/set-night/parley/internal/middleware"
)

func runBot(ctx context.Context) error {
	a, err := newApp(ctx, "stdout", "bot")
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	if _, err := a.completion.GetModel(ctx, a.cfg.Model); err != nil {
		// The endpoint may still accept the id; the listing is advisory.
		zap.L().Warn("configured model not listed", zap.String("model", a.cfg.Model), zap.Error(err))
	}

	h := handler.New(handler.Deps{
		Cfg:    a.cfg,
		Chat:   a.chat,
		Models: a.completion,
	})

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.Owner(a.cfg),
			middleware.RateLimit(middleware.NewLimiter(config.RateLimitPerMinute)),
		),
		bot.WithDefaultHandler(h.HandleText),
	}
	b, err := bot.New(a.cfg.BotToken, opts...)
	if err != nil {
		return err
	}
	h.Register(b)

	me, err := b.GetMe(ctx)
	if err != nil {
		return err
	}

	if a.cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			zap.L().Warn("drop pending updates", zap.Error(err))
		}
	}

	zap.L().Info("starting bot", zap.String("username", me.Username), zap.Int64("id", me.ID), zap.Int64("owner_id", a.cfg.OwnerID))
	b.Start(ctx)
	zap.L().Info("bot stopped gracefully")
	return nil
}
