package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	// Базовый цикл: запись, чтение, удаление
	mc := NewMemoryCache()
	ctx := context.Background()

	_, err := mc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", []byte("значение"), 0))

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("значение"), got)

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, mc.Delete(ctx, "k"))
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	// Истёкший TTL превращается в промах
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	// Кеш не делит память с вызывающим
	mc := NewMemoryCache()
	ctx := context.Background()

	src := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", src, 0))
	src[0] = 'x'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got, "Мутация исходного среза не должна менять кеш")

	got[1] = 'y'
	again, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again, "Мутация результата не должна менять кеш")
}
