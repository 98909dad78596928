package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// NoopData is the callback data of buttons that only display information.
const NoopData = "noop"

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// TotalPages returns the number of pages needed for total items, at least one.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage keeps page within [0, totalPages).
func ClampPage(page, totalPages int) int {
	if page >= totalPages {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

// PaginationRow creates a pagination row with prev/next buttons. Callback
// data is prefix followed by the target page number.
func PaginationRow(currentPage, totalPages int, prefix string) []models.InlineKeyboardButton {
	return PaginationRowFunc(currentPage, totalPages, func(page int) string {
		return fmt.Sprintf("%s%d", prefix, page)
	})
}

// PaginationRowFunc is PaginationRow with callback data built by data.
func PaginationRowFunc(currentPage, totalPages int, data func(page int) string) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton

	if currentPage > 0 {
		row = append(row, InlineButton("⬅️", data(currentPage-1)))
	}

	row = append(row, InlineButton(fmt.Sprintf("%d/%d", currentPage+1, totalPages), NoopData))

	if currentPage < totalPages-1 {
		row = append(row, InlineButton("➡️", data(currentPage+1)))
	}

	return row
}
