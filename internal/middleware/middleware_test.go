package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownerConfig int64

func (o ownerConfig) IsOwner(id int64) bool { return int64(o) == id }

func callbackFrom(userID int64) *models.Update {
	return &models.Update{
		ID: 1,
		CallbackQuery: &models.CallbackQuery{
			ID:   "q",
			From: models.User{ID: userID},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{Chat: models.Chat{ID: 77}},
			},
		},
	}
}

func messageFrom(userID int64, chatType models.ChatType) *models.Update {
	return &models.Update{
		ID: 2,
		Message: &models.Message{
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: 99, Type: chatType},
			Text: "hi",
		},
	}
}

func counting(calls *int) bot.HandlerFunc {
	return func(context.Context, *bot.Bot, *models.Update) { *calls++ }
}

func TestDescribe(t *testing.T) {
	info := Describe(messageFrom(5, models.ChatTypePrivate))
	assert.Equal(t, UpdateInfo{Type: "message", ChatID: 99, UserID: 5}, info)

	info = Describe(callbackFrom(6))
	assert.Equal(t, UpdateInfo{Type: "callback_query", ChatID: 77, UserID: 6}, info)

	assert.Equal(t, "unknown", Describe(&models.Update{}).Type)
}

func TestOwner_PassesOwner(t *testing.T) {
	var calls int
	h := Owner(ownerConfig(42))(counting(&calls))

	h(context.Background(), nil, messageFrom(42, models.ChatTypePrivate))
	h(context.Background(), nil, callbackFrom(42))
	assert.Equal(t, 2, calls)
}

func TestOwner_DropsStrangerCallback(t *testing.T) {
	var calls int
	h := Owner(ownerConfig(42))(counting(&calls))

	h(context.Background(), nil, callbackFrom(13))
	h(context.Background(), nil, messageFrom(13, models.ChatTypeGroup))
	assert.Zero(t, calls)
}

func TestRecover_SwallowsPanic(t *testing.T) {
	h := Recover()(func(context.Context, *bot.Bot, *models.Update) { panic("boom") })

	assert.NotPanics(t, func() {
		h(context.Background(), nil, &models.Update{ID: 3})
	})
}

func TestRecover_NotifiesChat(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
		texts   []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		mu.Lock()
		methods = append(methods, r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
		texts = append(texts, r.FormValue("text"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":99,"type":"private"}}}`))
	}))
	defer srv.Close()

	b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	h := Recover()(func(context.Context, *bot.Bot, *models.Update) { panic("boom") })
	h(context.Background(), b, callbackFrom(42))
	h(context.Background(), b, messageFrom(42, models.ChatTypePrivate))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"sendMessage"}, methods)
	assert.Equal(t, panicText, texts[0])
}

func TestLogging_CallsNext(t *testing.T) {
	var calls int
	Logging()(counting(&calls))(context.Background(), nil, callbackFrom(1))
	assert.Equal(t, 1, calls)
}

func TestLimiter_Window(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	// Chats are counted separately.
	assert.True(t, l.Allow(2))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(1))
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow(1))
	}
}

func TestRateLimit_PassesCallbacks(t *testing.T) {
	var calls int
	l := NewLimiter(1)
	h := RateLimit(l)(counting(&calls))

	for i := 0; i < 3; i++ {
		h(context.Background(), nil, callbackFrom(1))
	}
	assert.Equal(t, 3, calls)

	h(context.Background(), nil, messageFrom(1, models.ChatTypePrivate))
	assert.Equal(t, 4, calls)
}
