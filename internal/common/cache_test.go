package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setupTestEnvironment(t *testing.T) (*Cache, func()) {
	t.Helper()

	cache := NewCache(0, 0)

	cleanup := func() {
		cache.Flush()
	}

	return cache, cleanup
}

func TestCache_SetGet(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")

	got, ok := cache.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestCache_SetWithExpiration(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("key")
	assert.False(t, ok, "expected key to expire")
}

func TestCache_Values(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set(CacheKeyFallbackPost("a"), 1)
	cache.Set(CacheKeyFallbackPost("b"), 2)
	cache.Set(CacheKeyPosts(), 3)

	values := cache.Values(CacheKeyFallbackPosts())
	assert.ElementsMatch(t, []interface{}{1, 2}, values)
}

func TestCache_Flush(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Flush()

	_, ok := cache.Get("key")
	assert.False(t, ok, "expected cache to be flushed")
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "fallback_post:hello-world", CacheKeyFallbackPost("hello-world"))
	assert.Equal(t, "popular_posts:5", CacheKeyPopularPosts(5))
}
