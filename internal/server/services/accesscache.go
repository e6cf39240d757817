package services

import (
	"sync"
	"time"
)

// accessCache memoizes GM-level lookups for a short TTL. It exists because
// every GM-gated request would otherwise hit the auth store; the explicit
// Invalidate hook keeps it honest when accounts change, instead of relying
// on ad hoc module-level state.
type accessCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[accessKey]accessEntry
	now     func() time.Time
}

type accessKey struct {
	accountID int64
	realmID   int32
}

type accessEntry struct {
	level   int
	expires time.Time
}

func newAccessCache(ttl time.Duration) *accessCache {
	return &accessCache{
		ttl:     ttl,
		entries: make(map[accessKey]accessEntry),
		now:     time.Now,
	}
}

func (c *accessCache) Get(accountID int64, realmID int32) (int, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[accessKey{accountID, realmID}]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, accessKey{accountID, realmID})
		return 0, false
	}
	return e.level, true
}

func (c *accessCache) Put(accountID int64, realmID int32, level int) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accessKey{accountID, realmID}] = accessEntry{level: level, expires: c.now().Add(c.ttl)}
}

// Invalidate drops every cached entry for the account, across realms.
func (c *accessCache) Invalidate(accountID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.accountID == accountID {
			delete(c.entries, k)
		}
	}
}
