package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/format"
)

const typingInterval = 4 * time.Second

// SendLongMessage sends a potentially long message, splitting it into parts if needed.
// Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, replyToID *int) error {
	if !format.Balanced(text) {
		text = format.FixMarkdown(text)
	}
	parts := format.SplitMessage(text, config.MaxTelegramMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if replyToID != nil {
			params.ReplyParameters = &models.ReplyParameters{
				MessageID: *replyToID,
			}
			replyToID = nil // only reply to first part
		}

		if _, err := b.SendMessage(ctx, params); err != nil {
			zap.L().Warn("markdown send failed, falling back to plain text", zap.Error(err), zap.Int64("chat_id", chatID))
			params.ParseMode = ""
			if _, err := b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// SendText sends a short plain message and logs failures.
func SendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		zap.L().Warn("send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// SendOrEdit sends text with a keyboard, or replaces messageID in place when
// edit is set.
func SendOrEdit(ctx context.Context, b *bot.Bot, chatID int64, messageID int, edit bool, text string, keyboard *models.InlineKeyboardMarkup) {
	var err error
	if edit && messageID != 0 {
		params := &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		_, err = b.EditMessageText(ctx, params)
	} else {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		_, err = b.SendMessage(ctx, params)
	}
	if err != nil {
		zap.L().Warn("send keyboard message", zap.Error(err), zap.Int64("chat_id", chatID), zap.Bool("edit", edit))
	}
}

// StartTyping sends "typing..." action every 4 seconds until the returned cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	send := func() {
		if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		}); err != nil && ctx.Err() == nil {
			zap.L().Debug("send chat action", zap.Error(err))
		}
	}
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		send()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()
	return cancel
}

// Target returns the chat and message a callback query belongs to.
func Target(q *models.CallbackQuery) (chatID int64, messageID int) {
	if msg := q.Message.Message; msg != nil {
		return msg.Chat.ID, msg.ID
	}
	return 0, 0
}

// Answer acknowledges a callback query, optionally with a toast.
func Answer(ctx context.Context, b *bot.Bot, q *models.CallbackQuery, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            text,
	}); err != nil {
		zap.L().Debug("answer callback query", zap.Error(err))
	}
}
