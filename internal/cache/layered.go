package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LayeredCache keeps a hot in-process layer in front of the disk layer.
// Layers expire independently: memory turns over by its own short TTL
// while disk entries live until the ttl passed to Set (0 = disk default).
type LayeredCache struct {
	mem  *gocache.Cache
	disk *DiskCache
}

// NewLayeredCache builds the standard memory+disk pair.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		mem:  gocache.New(memoryTTL, 10*time.Minute),
		disk: NewDiskCache(diskDir, diskTTL),
	}
}

// Get prefers the memory layer; a disk hit is promoted back into memory.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.mem.Get(key); ok {
		return v.([]byte), true
	}
	v, ok := c.disk.Get(key)
	if !ok {
		return nil, false
	}
	c.mem.Set(key, v, gocache.DefaultExpiration)
	return v, true
}

// Set writes through to both layers. ttl bounds the disk layer only; the
// memory layer always uses its own default.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mem.Set(key, value, gocache.DefaultExpiration)
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers.
func (c *LayeredCache) Delete(key string) error {
	c.mem.Delete(key)
	return c.disk.Delete(key)
}

// Clear drops both layers.
func (c *LayeredCache) Clear() error {
	c.mem.Flush()
	return c.disk.Clear()
}
