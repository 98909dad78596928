package handler

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
	tg "github.com/set-night/parley/internal/telegram"
)

const modelLabelLen = 40

func (h *Handler) handleModels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	// Parse search query
	search := ""
	if parts := strings.SplitN(update.Message.Text, " ", 2); len(parts) > 1 {
		search = clipSearch(strings.TrimSpace(parts[1]))
	}

	h.sendModelsPage(ctx, b, update.Message.Chat.ID, 0, search, false, 0)
}

// clipSearch cuts a query to MaxModelSearchLen bytes on a rune boundary so it
// fits in callback data next to the page and model key.
func clipSearch(q string) string {
	if len(q) <= config.MaxModelSearchLen {
		return q
	}
	cut := config.MaxModelSearchLen
	for cut > 0 && !utf8.RuneStart(q[cut]) {
		cut--
	}
	return strings.TrimSpace(q[:cut])
}

// modelKey is a short stable key for a model id. Buttons carry the key
// instead of a list position so a stale keyboard cannot pick another model.
func modelKey(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return fmt.Sprintf("%08x", h.Sum32())
}

func filterModels(all []domain.AIModel, query string) []domain.AIModel {
	query = strings.ToLower(query)
	out := make([]domain.AIModel, 0, len(all))
	for _, m := range all {
		if query == "" || strings.Contains(strings.ToLower(m.ID), query) || strings.Contains(strings.ToLower(m.OwnedBy), query) {
			out = append(out, m)
		}
	}
	return out
}

func (h *Handler) modelsPage(ctx context.Context, page int, search string) (string, *models.InlineKeyboardMarkup, error) {
	all, err := h.models.ListModels(ctx)
	if err != nil {
		return "", nil, err
	}
	filtered := filterModels(all, search)

	totalPages := tg.TotalPages(len(filtered), config.ModelsPerPage)
	page = tg.ClampPage(page, totalPages)
	start := page * config.ModelsPerPage
	end := min(start+config.ModelsPerPage, len(filtered))

	selected := h.conversations.Current(ctx).Model

	var sb strings.Builder
	sb.WriteString("🤖 *Choose a model*\n\n")
	fmt.Fprintf(&sb, "Current: `%s`\n", selected)
	if search != "" {
		fmt.Fprintf(&sb, "Search: `%s` (%d found)\n", search, len(filtered))
	}

	var rows [][]models.InlineKeyboardButton
	for _, m := range filtered[start:end] {
		label := m.ID
		if r := []rune(label); len(r) > modelLabelLen {
			label = string(r[:modelLabelLen]) + "..."
		}
		if m.ID == selected {
			label += " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, fmt.Sprintf("%s%d:%s:%s", cbModelSet, page, modelKey(m.ID), search)),
		))
	}
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRowFunc(page, totalPages, func(p int) string {
			return fmt.Sprintf("%s%d:%s", cbModelsPage, p, search)
		}))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("🔄 Refresh", cbModelsSync+search)))

	return sb.String(), tg.InlineKeyboard(rows...), nil
}

func (h *Handler) sendModelsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, search string, edit bool, messageID int) {
	text, keyboard, err := h.modelsPage(ctx, page, search)
	if err != nil {
		zap.L().Error("list models", zap.Error(err))
		tg.SendText(ctx, b, chatID, "❌ Failed to load models.")
		return
	}
	tg.SendOrEdit(ctx, b, chatID, messageID, edit, text, keyboard)
}

// parseModelsPage reads "<page>[:<search>]" from pagination callback data.
func parseModelsPage(data string) (page int, search string) {
	pageStr, search, _ := strings.Cut(strings.TrimPrefix(data, cbModelsPage), ":")
	page, _ = strconv.Atoi(pageStr)
	return page, search
}

func (h *Handler) handleModelsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	tg.Answer(ctx, b, update.CallbackQuery, "")

	page, search := parseModelsPage(update.CallbackQuery.Data)
	chatID, messageID := tg.Target(update.CallbackQuery)
	h.sendModelsPage(ctx, b, chatID, page, search, true, messageID)
}

// parseModelSet reads "<page>:<key>:<search>" from model selection callback data.
func parseModelSet(data string) (page int, key, search string, ok bool) {
	parts := strings.SplitN(strings.TrimPrefix(data, cbModelSet), ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return 0, "", "", false
	}
	page, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", "", false
	}
	if len(parts) == 3 {
		search = parts[2]
	}
	return page, parts[1], search, true
}

func (h *Handler) handleModelSet(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	q := update.CallbackQuery

	page, key, search, ok := parseModelSet(q.Data)
	if !ok {
		tg.Answer(ctx, b, q, "")
		return
	}
	all, err := h.models.ListModels(ctx)
	if err != nil {
		zap.L().Error("list models", zap.Error(err))
		tg.Answer(ctx, b, q, "❌ Failed to load models.")
		return
	}
	idx := slices.IndexFunc(all, func(m domain.AIModel) bool { return modelKey(m.ID) == key })
	if idx < 0 {
		tg.Answer(ctx, b, q, "❌ Model not found.")
		return
	}
	model := all[idx]

	conv := h.conversations.Current(ctx)
	if err := h.conversations.SetModel(ctx, conv.ID, model.ID); err != nil {
		zap.L().Error("set model", zap.Error(err), zap.String("model", model.ID))
		tg.Answer(ctx, b, q, "❌ Failed to set model.")
		return
	}
	tg.Answer(ctx, b, q, "✅ "+model.ID)

	chatID, messageID := tg.Target(q)
	h.sendModelsPage(ctx, b, chatID, page, search, true, messageID)
}

func (h *Handler) handleModelsRefresh(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.models.RefreshModels()
	tg.Answer(ctx, b, update.CallbackQuery, "🔄 Model list refreshed.")

	search := strings.TrimPrefix(update.CallbackQuery.Data, cbModelsSync)
	chatID, messageID := tg.Target(update.CallbackQuery)
	h.sendModelsPage(ctx, b, chatID, 0, search, true, messageID)
}
