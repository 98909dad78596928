package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	tg "github.com/set-night/parley/internal/telegram"
)

func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	conv := h.conversations.CreateNew(ctx)
	zap.L().Info("new conversation", zap.Stringer("conversation_id", conv.ID))

	tg.SendText(ctx, b, update.Message.Chat.ID, "🔄 New chat started.\n\n"+config.Greeting)
}
