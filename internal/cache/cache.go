// Package cache holds the most recently extracted record set together with
// the instant it was captured.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// DefaultTTL is how long a captured record set is served without refetching.
const DefaultTTL = 5 * time.Minute

// Entry is an immutable capture of a record set.
type Entry struct {
	Records    []domain.SeismicRecord
	CapturedAt time.Time
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CapturedAt)
}

// Cache is a single-entry, time-bounded record cache safe for concurrent use.
// Writers swap the whole entry; readers never see a partial update.
type Cache struct {
	ttl     time.Duration
	current atomic.Pointer[Entry]
}

// New creates an empty cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl}
}

// TTL returns the configured freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// IsFresh reports whether an entry exists and is younger than the TTL at now.
// An entry exactly TTL old is stale.
func (c *Cache) IsFresh(now time.Time) bool {
	_, fresh, _ := c.Lookup(now)
	return fresh
}

// Lookup reads the current entry once and reports whether it exists and
// whether it is fresh at now. A stale entry is still returned.
func (c *Cache) Lookup(now time.Time) (entry Entry, fresh, ok bool) {
	e := c.current.Load()
	if e == nil {
		return Entry{}, false, false
	}
	return Entry{Records: cloneRecords(e.Records), CapturedAt: e.CapturedAt}, e.Age(now) < c.ttl, true
}

// Get returns a copy of the current entry, or false when nothing was captured yet.
func (c *Cache) Get() (Entry, bool) {
	e := c.current.Load()
	if e == nil {
		return Entry{}, false
	}
	return Entry{Records: cloneRecords(e.Records), CapturedAt: e.CapturedAt}, true
}

// Put replaces the current entry. Empty record sets are ignored so a bad
// fetch never erases a good capture. Reports whether the entry was replaced.
func (c *Cache) Put(records []domain.SeismicRecord, capturedAt time.Time) bool {
	if len(records) == 0 {
		return false
	}
	c.current.Store(&Entry{Records: cloneRecords(records), CapturedAt: capturedAt})
	return true
}

func cloneRecords(records []domain.SeismicRecord) []domain.SeismicRecord {
	out := make([]domain.SeismicRecord, len(records))
	copy(out, records)
	return out
}
