package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/domain"
	"github.com/set-night/parley/internal/service"
	tg "github.com/set-night/parley/internal/telegram"
)

const (
	busyText       = "⏳ Wait for the reply to your previous message."
	emptyReplyText = "(empty reply)"
)

// HandleText sends a plain text message to the current conversation and
// replies with the assistant's answer.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	// Skip commands
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	chatID := msg.Chat.ID
	conv := h.conversations.Current(ctx)

	stopTyping := tg.StartTyping(ctx, b, chatID)
	reply, err := h.chat.Send(ctx, conv.ID, msg.Text)
	stopTyping()

	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return
	case errors.Is(err, domain.ErrActiveRequest):
		tg.SendText(ctx, b, chatID, busyText)
		return
	case err != nil:
		tg.SendText(ctx, b, chatID, service.ErrorText(err))
		return
	}

	text := reply.Text
	if strings.TrimSpace(text) == "" {
		text = emptyReplyText
	}
	replyTo := msg.ID
	if err := tg.SendLongMessage(ctx, b, chatID, text, &replyTo); err != nil {
		zap.L().Error("send reply", zap.Error(err), zap.Stringer("conversation_id", reply.ConversationID))
	}
}
