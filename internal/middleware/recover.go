package middleware

import (
	"context"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const panicText = "⚠️ Something went wrong. Send /new to start a fresh chat."

// Recover returns middleware that turns a handler panic into a log entry and,
// for messages, a short notice in the chat so the owner is not left waiting.
func Recover() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				info := Describe(update)
				zap.L().Error("handler panic",
					zap.Any("panic", r),
					zap.String("type", info.Type),
					zap.Int64("chat_id", info.ChatID),
					zap.Int64("user_id", info.UserID),
					zap.ByteString("stack", debug.Stack()),
				)
				if b == nil || update.Message == nil {
					return
				}
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: info.ChatID,
					Text:   panicText,
				}); err != nil {
					zap.L().Debug("send panic notice", zap.Error(err))
				}
			}()
			next(ctx, b, update)
		}
	}
}
