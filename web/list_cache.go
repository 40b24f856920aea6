package web

import (
	"sync"
	"time"

	"raffler/domain/entities"
)

type cachedPage struct {
	page      *entities.RafflePage
	expiresAt time.Time
}

// ListCache holds rendered raffle listings keyed by query string. Any
// mutation of a raffle clears it through InvalidateRaffleList.
//
// Readers take Generation before querying and hand it back to Put. A page
// read across an invalidation is dropped instead of cached.
type ListCache struct {
	ttl        time.Duration
	now        func() time.Time
	mu         sync.RWMutex
	pages      map[string]cachedPage
	generation uint64
}

// NewListCache creates a cache. A non-positive ttl disables caching.
func NewListCache(ttl time.Duration) *ListCache {
	return &ListCache{
		ttl:   ttl,
		now:   time.Now,
		pages: make(map[string]cachedPage),
	}
}

// Get returns the cached page for key if it has not expired
func (lc *ListCache) Get(key string) (*entities.RafflePage, bool) {
	if lc == nil || lc.ttl <= 0 {
		return nil, false
	}

	lc.mu.RLock()
	entry, ok := lc.pages[key]
	lc.mu.RUnlock()

	if !ok || !lc.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.page, true
}

// Generation returns the current invalidation count
func (lc *ListCache) Generation() uint64 {
	if lc == nil {
		return 0
	}

	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.generation
}

// Put stores page under key unless the cache was invalidated after
// generation was taken
func (lc *ListCache) Put(key string, page *entities.RafflePage, generation uint64) {
	if lc == nil || lc.ttl <= 0 {
		return
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if generation != lc.generation {
		return
	}

	now := lc.now()
	// drop expired entries so distinct filters can't grow the map forever
	for k, entry := range lc.pages {
		if !now.Before(entry.expiresAt) {
			delete(lc.pages, k)
		}
	}
	lc.pages[key] = cachedPage{page: page, expiresAt: now.Add(lc.ttl)}
}

// InvalidateRaffleList drops every cached listing
func (lc *ListCache) InvalidateRaffleList() {
	if lc == nil {
		return
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.generation++
	lc.pages = make(map[string]cachedPage)
}

// Len returns the number of cached listings, expired or not
func (lc *ListCache) Len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.pages)
}
