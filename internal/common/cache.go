package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is an in-process store for read-heavy listings. Writers drop it wholesale with Flush.
type Cache struct {
	*cache.Cache
}

func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{cache.New(defaultTTL, cleanupInterval)}
}

// ReadThrough returns the value cached under key, or calls load and caches its result for ttl.
// Errors from load are not cached.
func ReadThrough[T any](c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	c.Set(key, v, ttl)

	return v, nil
}

const (
	keyTrendingBlogs    = "blogs:trending"
	keyLatestBlogsCount = "blogs:latest:count"
	keyLatestBlogsPage  = "blogs:latest:"
)

func CacheKeyTrendingBlogs() string {
	return keyTrendingBlogs
}

func CacheKeyLatestBlogsCount() string {
	return keyLatestBlogsCount
}

func CacheKeyLatestBlogs(page int) string {
	return keyLatestBlogsPage + strconv.Itoa(page)
}
