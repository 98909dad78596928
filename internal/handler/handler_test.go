package handler

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
	"github.com/set-night/parley/internal/service"
)

type apiCall struct {
	method string
	form   map[string]string
}

// fakeTelegram answers Bot API calls and records them.
type fakeTelegram struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	form := map[string]string{}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				form[k] = v[0]
			}
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: form})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage", "editMessageText":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":10,"date":0,"chat":{"id":99,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (f *fakeTelegram) sent(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Chat(_ context.Context, _ []service.ChatMessage, model string) (*service.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.Completion{Text: s.reply, Model: model}, nil
}

type stubLister []domain.AIModel

func (s stubLister) ListModels(context.Context) ([]domain.AIModel, error) {
	return s, nil
}

func (s stubLister) RefreshModels() {}

var testModels = stubLister{
	{ID: "gemma2-9b-it", OwnedBy: "Google"},
	{ID: "llama-3.1-8b-instant", OwnedBy: "Meta"},
	{ID: "llama-3.3-70b-versatile", OwnedBy: "Meta"},
}

func newTestHandler(t *testing.T, completer service.Completer) (*Handler, *bot.Bot, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	conversations := service.NewConversationService(service.ConversationOptions{Model: "llama-3.3-70b-versatile"})
	chat := service.NewChatService(conversations, completer, service.ChatOptions{})
	h := New(Deps{Cfg: &config.Config{OwnerID: 1}, Chat: chat, Models: testModels})
	return h, b, fake
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   5,
			From: &models.User{ID: 1},
			Chat: models.Chat{ID: 99, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

func callbackUpdate(data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb",
			From: models.User{ID: 1},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: 99, Type: models.ChatTypePrivate}},
			},
		},
	}
}

func TestHandleText_SendsReply(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{reply: "Hello from the model"})
	ctx := context.Background()

	h.HandleText(ctx, b, textUpdate("hi there"))

	sent := fake.sent("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, "Hello from the model", sent[0].form["text"])
	assert.Equal(t, "99", sent[0].form["chat_id"])
	assert.Contains(t, sent[0].form["reply_parameters"], `"message_id":5`)

	conv := h.conversations.Current(ctx)
	assert.Equal(t, "hi there", conv.Title)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, "Hello from the model", conv.Messages[3].Content)
}

func TestHandleText_Error(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{err: errors.New("upstream down")})
	ctx := context.Background()

	h.HandleText(ctx, b, textUpdate("hi"))

	sent := fake.sent("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, "Error: upstream down", sent[0].form["text"])

	conv := h.conversations.Current(ctx)
	last := conv.Messages[len(conv.Messages)-1]
	assert.True(t, last.Local)
}

func TestHandleText_SkipsCommands(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{reply: "x"})

	h.HandleText(context.Background(), b, textUpdate("/unknown"))
	assert.Empty(t, fake.sent("sendMessage"))
	assert.Len(t, h.conversations.Current(context.Background()).Messages, 2)
}

func TestHandleText_EmptyReply(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{reply: ""})

	h.HandleText(context.Background(), b, textUpdate("hi"))

	sent := fake.sent("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, emptyReplyText, sent[0].form["text"])
}

func TestHandleNew(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{})
	ctx := context.Background()
	first := h.conversations.Current(ctx).ID

	h.handleNew(ctx, b, textUpdate("/new"))

	assert.Equal(t, 2, h.conversations.Count())
	assert.NotEqual(t, first, h.conversations.CurrentID())
	sent := fake.sent("sendMessage")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].form["text"], config.Greeting)
}

func TestChatsPage(t *testing.T) {
	h, _, _ := newTestHandler(t, stubCompleter{})
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		h.conversations.CreateNew(ctx)
		time.Sleep(time.Millisecond)
	}

	text, kb := h.chatsPage(0)
	assert.Contains(t, text, "(7)")
	// 5 chats, the new-chat row and pagination
	require.Len(t, kb.InlineKeyboard, config.ConversationsPerPage+2)
	first := kb.InlineKeyboard[0]
	require.Len(t, first, 2)
	assert.True(t, strings.HasSuffix(first[0].Text, "✅"))
	assert.Equal(t, cbChatOpen+h.conversations.CurrentID().String(), first[0].CallbackData)
	assert.Equal(t, cbChatNew, kb.InlineKeyboard[5][0].CallbackData)

	_, kb = h.chatsPage(1)
	require.Len(t, kb.InlineKeyboard, 2+2)

	_, kb = h.chatsPage(99)
	assert.Len(t, kb.InlineKeyboard, 2+2)
}

func TestHandleChatOpen(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{})
	ctx := context.Background()
	older := h.conversations.CreateNew(ctx)
	h.conversations.CreateNew(ctx)

	h.handleChatOpen(ctx, b, callbackUpdate(cbChatOpen+older.ID.String()))

	assert.Equal(t, older.ID, h.conversations.CurrentID())
	assert.Len(t, fake.sent("answerCallbackQuery"), 1)
	assert.Len(t, fake.sent("editMessageText"), 1)
}

func TestHandleChatDelete(t *testing.T) {
	h, b, _ := newTestHandler(t, stubCompleter{})
	ctx := context.Background()
	c := h.conversations.CreateNew(ctx)
	before := h.conversations.Count()

	h.handleChatDelete(ctx, b, callbackUpdate(cbChatDelete+c.ID.String()))
	assert.Equal(t, before-1, h.conversations.Count())

	_, err := h.conversations.Get(c.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestModelsPage(t *testing.T) {
	h, _, _ := newTestHandler(t, stubCompleter{})
	ctx := context.Background()

	text, kb, err := h.modelsPage(ctx, 0, "")
	require.NoError(t, err)
	assert.Contains(t, text, "`llama-3.3-70b-versatile`")
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Equal(t, cbModelsSync, kb.InlineKeyboard[3][0].CallbackData)
	assert.Equal(t, cbModelSet+"0:"+modelKey("llama-3.3-70b-versatile")+":", kb.InlineKeyboard[2][0].CallbackData)
	assert.True(t, strings.HasSuffix(kb.InlineKeyboard[2][0].Text, "✅"))

	text, kb, err = h.modelsPage(ctx, 0, "google")
	require.NoError(t, err)
	assert.Contains(t, text, "(1 found)")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, cbModelSet+"0:"+modelKey("gemma2-9b-it")+":google", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, cbModelsSync+"google", kb.InlineKeyboard[1][0].CallbackData)
}

func manyModels() stubLister {
	var list stubLister
	for i := range 15 {
		list = append(list,
			domain.AIModel{ID: fmt.Sprintf("llama-%02d", i), OwnedBy: "Meta"},
			domain.AIModel{ID: fmt.Sprintf("gemma-%02d", i), OwnedBy: "Google"},
		)
	}
	return list
}

func TestModelsPage_KeepsSearchAcrossPages(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{})
	h.models = manyModels()
	ctx := context.Background()

	_, kb, err := h.modelsPage(ctx, 0, "llama")
	require.NoError(t, err)
	pagination := kb.InlineKeyboard[config.ModelsPerPage]
	require.Len(t, pagination, 2)
	assert.Equal(t, "1/2", pagination[0].Text)
	next := pagination[1].CallbackData
	assert.Equal(t, cbModelsPage+"1:llama", next)

	h.handleModelsPage(ctx, b, callbackUpdate(next))
	edits := fake.sent("editMessageText")
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].form["text"], "Search: `llama` (15 found)")
	markup := edits[0].form["reply_markup"]
	assert.Contains(t, markup, "llama-14")
	assert.NotContains(t, markup, "gemma")
	assert.Contains(t, markup, "2/2")
}

func TestParseModelsPage(t *testing.T) {
	page, search := parseModelsPage(cbModelsPage + "3")
	assert.Equal(t, 3, page)
	assert.Empty(t, search)

	page, search = parseModelsPage(cbModelsPage + "1:llama 3")
	assert.Equal(t, 1, page)
	assert.Equal(t, "llama 3", search)
}

func TestClipSearch(t *testing.T) {
	assert.Equal(t, "llama", clipSearch("llama"))

	long := strings.Repeat("ж", 20)
	clipped := clipSearch(long)
	assert.LessOrEqual(t, len(clipped), config.MaxModelSearchLen)
	assert.Equal(t, strings.Repeat("ж", 16), clipped)

	data := fmt.Sprintf("%s%d:%s:%s", cbModelSet, 99, modelKey("x"), clipSearch(strings.Repeat("a", 100)))
	assert.LessOrEqual(t, len(data), 64)
}

func TestHandleModelSet(t *testing.T) {
	h, b, _ := newTestHandler(t, stubCompleter{})
	ctx := context.Background()

	h.handleModelSet(ctx, b, callbackUpdate(cbModelSet+"0:"+modelKey("llama-3.1-8b-instant")+":"))
	assert.Equal(t, "llama-3.1-8b-instant", h.conversations.Current(ctx).Model)

	h.handleModelSet(ctx, b, callbackUpdate(cbModelSet+"0:deadbeef:"))
	assert.Equal(t, "llama-3.1-8b-instant", h.conversations.Current(ctx).Model)
}

func TestHandleModelSet_StaleKeyboard(t *testing.T) {
	h, b, _ := newTestHandler(t, stubCompleter{})
	ctx := context.Background()

	_, kb, err := h.modelsPage(ctx, 0, "")
	require.NoError(t, err)
	data := kb.InlineKeyboard[1][0].CallbackData // llama-3.1-8b-instant

	// The listing changes order after the keyboard was sent.
	h.models = stubLister{
		{ID: "llama-3.1-8b-instant", OwnedBy: "Meta"},
		{ID: "gemma2-9b-it", OwnedBy: "Google"},
		{ID: "mixtral-8x7b", OwnedBy: "Mistral"},
	}
	h.handleModelSet(ctx, b, callbackUpdate(data))
	assert.Equal(t, "llama-3.1-8b-instant", h.conversations.Current(ctx).Model)
}

func TestParseModelSet(t *testing.T) {
	tests := []struct {
		data        string
		page        int
		key, search string
		ok          bool
	}{
		{cbModelSet + "0:abcd1234:", 0, "abcd1234", "", true},
		{cbModelSet + "2:abcd1234:llama", 2, "abcd1234", "llama", true},
		{cbModelSet + "1:abcd1234:a:b", 1, "abcd1234", "a:b", true},
		{cbModelSet + "1:abcd1234", 1, "abcd1234", "", true},
		{cbModelSet + "x:abcd1234:", 0, "", "", false},
		{cbModelSet + "1", 0, "", "", false},
		{cbModelSet + "1::", 0, "", "", false},
	}
	for _, tt := range tests {
		page, key, search, ok := parseModelSet(tt.data)
		assert.Equal(t, tt.ok, ok, tt.data)
		if tt.ok {
			assert.Equal(t, tt.page, page, tt.data)
			assert.Equal(t, tt.key, key, tt.data)
			assert.Equal(t, tt.search, search, tt.data)
		}
	}
}

type countingLister struct {
	stubLister
	refreshed int
}

func (c *countingLister) RefreshModels() { c.refreshed++ }

func TestHandleModelsRefresh(t *testing.T) {
	h, b, fake := newTestHandler(t, stubCompleter{})
	lister := &countingLister{stubLister: testModels}
	h.models = lister

	h.handleModelsRefresh(context.Background(), b, callbackUpdate(cbModelsSync))
	assert.Equal(t, 1, lister.refreshed)
	assert.Len(t, fake.sent("answerCallbackQuery"), 1)
	require.Len(t, fake.sent("editMessageText"), 1)
	assert.Contains(t, fake.sent("editMessageText")[0].form["text"], "llama-3.3-70b-versatile")
}
