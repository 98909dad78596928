package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/domain"
)

const notOwnerText = "🔒 This assistant is private."

// Owner returns middleware that drops updates from anyone but the owner.
// Strangers writing in private get a one-line refusal.
func Owner(cfg interface{ IsOwner(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			info := Describe(update)
			if cfg.IsOwner(info.UserID) {
				next(ctx, b, update)
				return
			}

			zap.L().Info("update dropped",
				zap.Error(domain.ErrNotOwner),
				zap.String("type", info.Type),
				zap.Int64("user_id", info.UserID),
			)
			if update.Message != nil && update.Message.Chat.Type == models.ChatTypePrivate {
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   notOwnerText,
				}); err != nil {
					zap.L().Debug("send refusal", zap.Error(err))
				}
			}
		}
	}
}
