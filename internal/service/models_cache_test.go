package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/set-night/parley/internal/domain"
)

func TestModelsCache_Expires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewModelsCache(time.Hour)
	c.now = func() time.Time { return now }

	assert.Nil(t, c.Get())

	c.Set([]domain.AIModel{{ID: "a"}})
	assert.Len(t, c.Get(), 1)

	now = now.Add(59 * time.Minute)
	assert.Len(t, c.Get(), 1)

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get())
}

func TestModelsCache_Invalidate(t *testing.T) {
	c := NewModelsCache(time.Hour)
	c.Set([]domain.AIModel{{ID: "a"}})
	c.Invalidate()
	assert.Nil(t, c.Get())
}
