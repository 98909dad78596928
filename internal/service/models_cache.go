package service

import (
	"sync"
	"time"

	"github.com/set-night/parley/internal/domain"
)

// ModelsCache keeps the model listing for ttl.
type ModelsCache struct {
	mu       sync.RWMutex
	models   []domain.AIModel
	cachedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl, now: time.Now}
}

func (c *ModelsCache) Get() []domain.AIModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || c.now().Sub(c.cachedAt) > c.ttl {
		return nil
	}
	return append([]domain.AIModel(nil), c.models...)
}

func (c *ModelsCache) Set(models []domain.AIModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = append([]domain.AIModel(nil), models...)
	c.cachedAt = c.now()
}

func (c *ModelsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = nil
}
