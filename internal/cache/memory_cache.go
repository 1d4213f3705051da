package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache реализует ByteCache в памяти процесса.
// Используется в тестах и при запуске без Redis.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // Нулевое время — без истечения
}

// NewMemoryCache создаёт пустой in-memory кеш
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem)}
}

// Get получает значение по ключу
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	item, ok := mc.items[key]
	mc.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		mc.mu.Lock()
		delete(mc.items, key)
		mc.mu.Unlock()
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set сохраняет значение с TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: make([]byte, len(value))}
	copy(item.value, value)
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	mc.mu.Lock()
	mc.items[key] = item
	mc.mu.Unlock()
	return nil
}

// Delete удаляет ключ
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	delete(mc.items, key)
	mc.mu.Unlock()
	return nil
}

// Exists проверяет существование ключа
func (mc *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := mc.Get(ctx, key)
	if err == ErrCacheMiss {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close освобождает кеш
func (mc *MemoryCache) Close() error {
	mc.mu.Lock()
	mc.items = make(map[string]memoryItem)
	mc.mu.Unlock()
	return nil
}
