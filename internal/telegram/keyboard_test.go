package telegram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{11, 5, 3},
		{3, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 0, ClampPage(-1, 3))
	assert.Equal(t, 2, ClampPage(7, 3))
	assert.Equal(t, 1, ClampPage(1, 3))
}

func TestPaginationRow(t *testing.T) {
	row := PaginationRow(0, 1, "chats:page:")
	require.Len(t, row, 1)
	assert.Equal(t, "1/1", row[0].Text)
	assert.Equal(t, NoopData, row[0].CallbackData)

	row = PaginationRow(1, 3, "chats:page:")
	require.Len(t, row, 3)
	assert.Equal(t, "chats:page:0", row[0].CallbackData)
	assert.Equal(t, "2/3", row[1].Text)
	assert.Equal(t, "chats:page:2", row[2].CallbackData)

	row = PaginationRow(2, 3, "chats:page:")
	require.Len(t, row, 2)
	assert.Equal(t, "chats:page:1", row[0].CallbackData)
}

func TestPaginationRowFunc(t *testing.T) {
	row := PaginationRowFunc(1, 3, func(page int) string {
		return fmt.Sprintf("models:page:%d:llama", page)
	})
	require.Len(t, row, 3)
	assert.Equal(t, "models:page:0:llama", row[0].CallbackData)
	assert.Equal(t, NoopData, row[1].CallbackData)
	assert.Equal(t, "models:page:2:llama", row[2].CallbackData)
}
