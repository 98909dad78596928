package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	tg "github.com/set-night/parley/internal/telegram"
)

// Callback data prefixes.
const (
	cbChatsPage  = "chats:page:"
	cbChatOpen   = "chat:open:"
	cbChatDelete = "chat:del:"
	cbChatNew    = "chat:new"
	cbModelsPage = "models:page:"
	cbModelSet   = "model:set:"
	cbModelsSync = "models:refresh:"
)

// Register registers all command and callback handlers on the bot instance.
// Plain text goes to HandleText through the bot's default handler.
func (h *Handler) Register(b *bot.Bot) {
	// Commands
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/chats", bot.MatchTypePrefix, h.handleChats)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/models", bot.MatchTypePrefix, h.handleModels)

	// Chats callbacks
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbChatsPage, bot.MatchTypePrefix, h.handleChatsPage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbChatOpen, bot.MatchTypePrefix, h.handleChatOpen)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbChatDelete, bot.MatchTypePrefix, h.handleChatDelete)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbChatNew, bot.MatchTypeExact, h.handleChatNew)

	// Models callbacks
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbModelsPage, bot.MatchTypePrefix, h.handleModelsPage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbModelSet, bot.MatchTypePrefix, h.handleModelSet)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbModelsSync, bot.MatchTypePrefix, h.handleModelsRefresh)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.NoopData, bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges taps on buttons that only display information.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		tg.Answer(ctx, b, update.CallbackQuery, "")
	}
}
