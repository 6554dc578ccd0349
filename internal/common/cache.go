package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// NoExpiration keeps an entry until it is deleted or the cache is flushed.
const NoExpiration = cache.NoExpiration

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// Values returns every unexpired entry whose key starts with prefix.
func (c *Cache) Values(prefix string) []interface{} {
	var values []interface{}
	for key, item := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			values = append(values, item.Object)
		}
	}
	return values
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

const (
	fallbackPostPrefix = "fallback_post:"
)

func CacheKeyFallbackPost(slug string) string {
	return fallbackPostPrefix + slug
}

func CacheKeyFallbackPosts() string {
	return fallbackPostPrefix
}

func CacheKeyPosts() string {
	return "posts"
}

func CacheKeyPopularPosts(limit int) string {
	return "popular_posts:" + strconv.Itoa(limit)
}
