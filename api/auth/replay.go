package auth

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// replayCache remembers accepted request digests until they can no longer pass
// the timestamp check. Entries live for twice the allowed clock skew.
type replayCache struct {
	mu        deadlock.Mutex
	ttl       time.Duration
	seen      map[[32]byte]time.Time
	nextPrune time.Time
}

func newReplayCache(ttl time.Duration) *replayCache {
	return &replayCache{
		ttl:  ttl,
		seen: make(map[[32]byte]time.Time),
	}
}

// accept records digest and reports whether it was not seen before.
func (c *replayCache) accept(digest [32]byte, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.After(c.nextPrune) {
		for d, expiry := range c.seen {
			if now.After(expiry) {
				delete(c.seen, d)
			}
		}
		c.nextPrune = now.Add(c.ttl / 2)
	}

	if expiry, ok := c.seen[digest]; ok && !now.After(expiry) {
		return false
	}
	c.seen[digest] = now.Add(c.ttl)
	return true
}

func (c *replayCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
