package transfer

import (
	"sync"
	"time"
)

// replayStore tracks consumed transfer IDs so a payload lifted from history
// or a reloaded receiving URL is rejected. Entries expire with the payload
// TTL, so the set stays bounded.
type replayStore struct {
	mu   sync.Mutex
	seen map[string]time.Time // transfer ID -> payload expiry
}

func newReplayStore() *replayStore {
	return &replayStore{seen: make(map[string]time.Time)}
}

// consume marks an ID as used. It returns false if the ID was already
// consumed and still within its TTL.
func (r *replayStore) consume(id string, expiresAt time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := NowTimeFunc()
	for seenID, expiry := range r.seen {
		if now.After(expiry) {
			delete(r.seen, seenID)
		}
	}

	if _, used := r.seen[id]; used {
		return false
	}
	r.seen[id] = expiresAt
	return true
}
