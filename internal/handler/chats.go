package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
	tg "github.com/set-night/parley/internal/telegram"
)

const chatLabelLen = 30

func (h *Handler) handleChats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendChatsPage(ctx, b, update.Message.Chat.ID, 0, false, 0)
}

// chatsPage builds the text and keyboard listing conversations newest first.
func (h *Handler) chatsPage(page int) (string, *models.InlineKeyboardMarkup) {
	convs := h.conversations.List()
	totalPages := tg.TotalPages(len(convs), config.ConversationsPerPage)
	page = tg.ClampPage(page, totalPages)

	start := page * config.ConversationsPerPage
	end := min(start+config.ConversationsPerPage, len(convs))

	current := h.conversations.CurrentID()
	var rows [][]models.InlineKeyboardButton
	for _, c := range convs[start:end] {
		label := chatLabel(c)
		if c.ID == current {
			label += " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, cbChatOpen+c.ID.String()),
			tg.InlineButton("🗑", cbChatDelete+c.ID.String()),
		))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ New chat", cbChatNew)))
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, cbChatsPage))
	}

	text := fmt.Sprintf("💬 *Chats* (%d)\n\nTap a chat to continue it.", len(convs))
	return text, tg.InlineKeyboard(rows...)
}

func chatLabel(c *domain.Conversation) string {
	title := c.Title
	if r := []rune(title); len(r) > chatLabelLen {
		title = string(r[:chatLabelLen]) + "..."
	}
	return fmt.Sprintf("%s · %s", title, c.CreatedAt.Format("Jan 02 15:04"))
}

func (h *Handler) sendChatsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, edit bool, messageID int) {
	text, keyboard := h.chatsPage(page)
	tg.SendOrEdit(ctx, b, chatID, messageID, edit, text, keyboard)
}

func (h *Handler) handleChatsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	tg.Answer(ctx, b, update.CallbackQuery, "")

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, cbChatsPage))
	chatID, messageID := tg.Target(update.CallbackQuery)
	h.sendChatsPage(ctx, b, chatID, page, true, messageID)
}

func (h *Handler) handleChatOpen(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	q := update.CallbackQuery

	id, err := uuid.Parse(strings.TrimPrefix(q.Data, cbChatOpen))
	if err != nil {
		tg.Answer(ctx, b, q, "")
		return
	}
	conv, err := h.conversations.SwitchTo(id)
	if err != nil {
		tg.Answer(ctx, b, q, "❌ Chat not found.")
		return
	}
	tg.Answer(ctx, b, q, "✅ "+conv.Title)

	chatID, messageID := tg.Target(q)
	h.sendChatsPage(ctx, b, chatID, 0, true, messageID)
	if visible := conv.Visible(); len(visible) > 0 {
		last := visible[len(visible)-1]
		if err := tg.SendLongMessage(ctx, b, chatID, last.Content, nil); err != nil {
			zap.L().Warn("send last message", zap.Error(err))
		}
	}
}

func (h *Handler) handleChatDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	q := update.CallbackQuery

	id, err := uuid.Parse(strings.TrimPrefix(q.Data, cbChatDelete))
	if err != nil {
		tg.Answer(ctx, b, q, "")
		return
	}
	switch err := h.conversations.Delete(ctx, id); {
	case errors.Is(err, domain.ErrActiveRequest):
		tg.Answer(ctx, b, q, "⏳ This chat is waiting for a reply.")
		return
	case err != nil:
		tg.Answer(ctx, b, q, "❌ Chat not found.")
	default:
		tg.Answer(ctx, b, q, "🗑 Deleted.")
	}

	chatID, messageID := tg.Target(q)
	h.sendChatsPage(ctx, b, chatID, 0, true, messageID)
}

func (h *Handler) handleChatNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	tg.Answer(ctx, b, update.CallbackQuery, "")

	conv := h.conversations.CreateNew(ctx)
	zap.L().Info("new conversation", zap.Stringer("conversation_id", conv.ID))

	chatID, messageID := tg.Target(update.CallbackQuery)
	h.sendChatsPage(ctx, b, chatID, 0, true, messageID)
	tg.SendText(ctx, b, chatID, config.Greeting)
}
