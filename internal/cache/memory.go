package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"marquee/pkg/models"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
}

// IsExpired checks if the cache entry has expired
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expiration)
}

// MemoryCache implements a simple in-memory cache
type MemoryCache struct {
	items map[string]*CacheEntry
	mutex sync.RWMutex
	ttl   time.Duration
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items: make(map[string]*CacheEntry),
		ttl:   ttl,
	}

	// Start cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Set stores a value in the cache
func (c *MemoryCache) Set(key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheEntry{
		Value:      value,
		Expiration: time.Now().Add(c.ttl),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.items[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Value, true
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*CacheEntry)
}

// Size returns the number of items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// cleanupExpired removes expired entries periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute * 5)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		for key, entry := range c.items {
			if entry.IsExpired() {
				delete(c.items, key)
			}
		}
		c.mutex.Unlock()
	}
}

// ListingCache caches remote listing responses (screens, playlists, assets)
// per credential, so repeated dropdown-style queries don't hammer the API.
// Keys embed a fingerprint of the token, never the token itself.
type ListingCache struct {
	*MemoryCache
}

// NewListingCache creates a listing cache with the given TTL
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{
		MemoryCache: NewMemoryCache(ttl),
	}
}

// Key builds a cache key scoped to one credential
func (lc *ListingCache) Key(kind, token string) string {
	sum := sha256.Sum256([]byte(token))
	return kind + ":" + hex.EncodeToString(sum[:8])
}

// SetScreens caches a screen listing
func (lc *ListingCache) SetScreens(token string, screens []models.Screen) {
	lc.Set(lc.Key("screens", token), screens)
}

// GetScreens retrieves a cached screen listing
func (lc *ListingCache) GetScreens(token string) ([]models.Screen, bool) {
	value, exists := lc.Get(lc.Key("screens", token))
	if !exists {
		return nil, false
	}
	screens, ok := value.([]models.Screen)
	return screens, ok
}

// SetPlaylists caches a playlist listing
func (lc *ListingCache) SetPlaylists(token string, playlists []models.Playlist) {
	lc.Set(lc.Key("playlists", token), playlists)
}

// GetPlaylists retrieves a cached playlist listing
func (lc *ListingCache) GetPlaylists(token string) ([]models.Playlist, bool) {
	value, exists := lc.Get(lc.Key("playlists", token))
	if !exists {
		return nil, false
	}
	playlists, ok := value.([]models.Playlist)
	return playlists, ok
}

// SetAssets caches an asset listing
func (lc *ListingCache) SetAssets(token string, assets []models.Asset) {
	lc.Set(lc.Key("assets", token), assets)
}

// GetAssets retrieves a cached asset listing
func (lc *ListingCache) GetAssets(token string) ([]models.Asset, bool) {
	value, exists := lc.Get(lc.Key("assets", token))
	if !exists {
		return nil, false
	}
	assets, ok := value.([]models.Asset)
	return assets, ok
}

// InvalidateListings drops every cached listing for one credential. Called
// after mutations so stale dropdowns don't outlive a write.
func (lc *ListingCache) InvalidateListings(token string) {
	for _, kind := range []string{"screens", "playlists", "assets"} {
		lc.Delete(lc.Key(kind, token))
	}
}
