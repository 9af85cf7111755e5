package texture

import (
	"image"
	"sync"
)

// Source decodes a bitmap by ID. *wad.Container implements it.
type Source interface {
	DecodeBitmap(i int) (*image.NRGBA, error)
}

// Cache is a concurrency-safe cache of decoded bitmaps. Models share most of
// their bitmaps, so each one is decoded once per run. Returned images are
// shared and must not be modified.
type Cache struct {
	mu    sync.RWMutex
	items map[int]*cacheEntry
	src   Source
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a cache in front of src.
func NewCache(src Source) *Cache {
	return &Cache{
		items: make(map[int]*cacheEntry),
		src:   src,
	}
}

// DecodeBitmap returns bitmap i, decoding it on first use. Failures are
// cached as well.
func (c *Cache) DecodeBitmap(i int) (*image.NRGBA, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, ok := c.items[i]; ok {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	img, err := c.src.DecodeBitmap(i)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.items[i]; ok {
		return entry.img, entry.err
	}
	c.items[i] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
