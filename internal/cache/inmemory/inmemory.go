package inmemory

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	now    func() time.Time
	logger *zap.Logger
}

func NewCache(logger *zap.Logger) *Cache {
	return &Cache{
		items:  make(map[string]item),
		now:    time.Now,
		logger: logger,
	}
}

func (c *Cache) Set(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value}
	c.logger.Debug("value added to cache", zap.String("key", key))
	return nil
}

func (c *Cache) SetWithTTL(key string, value interface{}, ttlSeconds int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	c.logger.Debug("value added to cache", zap.String("key", key), zap.Int64("ttl", ttlSeconds))
	return nil
}

func (c *Cache) Get(key string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		delete(c.items, key)
		c.logger.Debug("value expired in cache", zap.String("key", key))
		return nil, nil
	}
	return it.value, nil
}
