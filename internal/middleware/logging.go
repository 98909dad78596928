package middleware

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Logging returns middleware that logs update processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			info := Describe(update)

			next(ctx, b, update)

			zap.L().Debug("update processed",
				zap.String("type", info.Type),
				zap.Int64("chat_id", info.ChatID),
				zap.Int64("user_id", info.UserID),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}
}

// UpdateInfo identifies who sent an update and where.
type UpdateInfo struct {
	Type   string
	ChatID int64
	UserID int64
}

func Describe(update *models.Update) UpdateInfo {
	info := UpdateInfo{Type: "unknown"}
	switch {
	case update.Message != nil:
		info.Type = "message"
		info.ChatID = update.Message.Chat.ID
		if update.Message.From != nil {
			info.UserID = update.Message.From.ID
		}
	case update.CallbackQuery != nil:
		info.Type = "callback_query"
		if update.CallbackQuery.Message.Message != nil {
			info.ChatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		info.UserID = update.CallbackQuery.From.ID
	}
	return info
}
