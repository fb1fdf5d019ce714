package services

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DeletionLedger remembers notification ids this process deleted itself so
// the change-feed listener does not announce them a second time.
// A nil ledger remembers nothing.
type DeletionLedger struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
	now   func() time.Time
}

func NewDeletionLedger(size int, ttl time.Duration) (*DeletionLedger, error) {
	cache, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &DeletionLedger{cache: cache, ttl: ttl, now: time.Now}, nil
}

// Remember records a deletion about to be performed locally.
func (l *DeletionLedger) Remember(id string) {
	if l == nil {
		return
	}
	l.cache.Add(id, l.now().Add(l.ttl))
}

// Claim reports whether id was deleted locally and forgets it.
func (l *DeletionLedger) Claim(id string) bool {
	if l == nil {
		return false
	}
	expiresAt, ok := l.cache.Get(id)
	if !ok {
		return false
	}
	l.cache.Remove(id)
	return !l.now().After(expiresAt)
}
