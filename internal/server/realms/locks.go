package realms

import (
	"context"
	"sync"
)

// CharLocks serializes delivery work per character guid. Every mutating
// request against a character acquires its lock before the first read and
// holds it until the surrounding transaction commits or rolls back, so two
// purchases racing each other (or a purchase racing a GM mail) line up
// instead of both passing the affordability check.
type CharLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func NewCharLocks() *CharLocks {
	return &CharLocks{entries: make(map[int64]*lockEntry)}
}

// Acquire blocks until the character's lock is free or the context is done.
// The returned release function must be called exactly once.
func (l *CharLocks) Acquire(ctx context.Context, guid int64) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[guid]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[guid] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			l.put(guid, e)
		}, nil
	case <-ctx.Done():
		l.put(guid, e)
		return nil, ctx.Err()
	}
}

// put drops one reference and removes the entry once nobody holds or waits
// for it, so the map does not grow with every character ever mailed.
func (l *CharLocks) put(guid int64, e *lockEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, guid)
	}
	l.mu.Unlock()
}
