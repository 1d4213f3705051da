package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss возвращается Get, когда ключ не найден.
var ErrCacheMiss = errors.New("cache: ключ не найден")

// ByteCache определяет интерфейс кеширования бинарных данных региона
// (сериализованный ландшафт, снимки карты).
//
// Использование:
//
//	data, err := cache.Get(ctx, "terrain:serialized")
//	err = cache.Set(ctx, "terrain:serialized", data, 30*time.Second)
type ByteCache interface {
	// Get получает значение по ключу.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с указанным TTL.
	// TTL = 0 означает отсутствие истечения.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ из кеша.
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа.
	Exists(ctx context.Context, key string) (bool, error)

	// Close освобождает ресурсы кеша.
	Close() error
}
