package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	tg "github.com/set-night/parley/internal/telegram"
)

const welcomeText = "👋 Hi! I'm your AI assistant.\n\n" +
	"📋 *Commands:*\n" +
	"/new - Start a new chat\n" +
	"/chats - Switch between chats\n" +
	"/models - Choose a model\n\n" +
	"Just send a message to talk to me."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if err := tg.SendLongMessage(ctx, b, chatID, welcomeText, nil); err != nil {
		zap.L().Warn("send welcome", zap.Error(err))
	}

	conv := h.conversations.Current(ctx)
	if visible := conv.Visible(); len(visible) > 0 {
		tg.SendText(ctx, b, chatID, visible[len(visible)-1].Content)
	}
}
