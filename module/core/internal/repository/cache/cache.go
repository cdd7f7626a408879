package cache

import (
	"time"

	"github.com/coocood/freecache"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

type FreeCache struct {
	cache *freecache.Cache
	ttl   int
}

// New returns a freecache-backed Cache of sizeMB megabytes, or a no-op
// cache when sizeMB is not positive.
func New(sizeMB int, ttl time.Duration) Cache {
	if sizeMB <= 0 {
		return Noop{}
	}
	return &FreeCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   max(int(ttl.Seconds()), 1),
	}
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *FreeCache) Set(key string, value []byte) {
	_ = c.cache.Set([]byte(key), value, c.ttl)
}

func (c *FreeCache) Del(key string) {
	c.cache.Del([]byte(key))
}

type Noop struct{}

func (Noop) Get(_ string) ([]byte, bool) { return nil, false }
func (Noop) Set(_ string, _ []byte)      {}
func (Noop) Del(_ string)                {}
