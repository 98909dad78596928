package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const rateLimitedText = "⏳ Too many requests. Please wait a moment."

// Limiter counts messages per chat in fixed one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[int64]*bucket
}

type bucket struct {
	start time.Time
	count int
}

func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		limit:   perMinute,
		window:  time.Minute,
		now:     time.Now,
		buckets: make(map[int64]*bucket),
	}
}

// Allow records one message for chatID and reports whether it is within the limit.
func (l *Limiter) Allow(chatID int64) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bk, ok := l.buckets[chatID]
	if !ok || now.Sub(bk.start) >= l.window {
		bk = &bucket{start: now}
		l.buckets[chatID] = bk
	}
	bk.count++
	return bk.count <= l.limit
}

// RateLimit returns middleware that enforces per-minute rate limits.
func RateLimit(limiter *Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !limiter.Allow(chatID) {
				zap.L().Debug("rate limited", zap.Int64("chat_id", chatID))
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   rateLimitedText,
				}); err != nil {
					zap.L().Debug("send rate limit notice", zap.Error(err))
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
