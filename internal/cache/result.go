package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Bersy123e/offerdoffer/internal/model"
)

// Entry is one memoized matching outcome: the interpreted query, its
// ordered results and the catalog version they were computed against.
type Entry struct {
	Signature       string              `json:"signature"`
	Query           model.QuerySpec     `json:"query"`
	Results         []model.MatchResult `json:"results"`
	SnapshotVersion string              `json:"snapshot_version"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ResultCache memoizes ranked results per query signature. Lookups hit
// only when the stored snapshot version equals the current one, so a
// superseded catalog can never leak stale rankings; recomputation being
// deterministic, last-writer-wins on concurrent stores is sound.
type ResultCache struct {
	store Cache
	ttl   time.Duration
}

// NewResultCache wraps byte storage with result (de)serialization. TTL
// bounds staleness from assist drift even when the snapshot is unchanged;
// 0 defers to the storage layers' own defaults.
func NewResultCache(store Cache, ttl time.Duration) *ResultCache {
	return &ResultCache{store: store, ttl: ttl}
}

// Lookup returns the memoized entry for the signature if it was computed
// against snapshotVersion.
func (c *ResultCache) Lookup(signature, snapshotVersion string) (*Entry, bool) {
	data, found := c.store.Get(Key(signature))
	if !found {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// повреждённая запись — считаем промахом, она будет перезаписана
		_ = c.store.Delete(Key(signature))
		return nil, false
	}
	if entry.SnapshotVersion != snapshotVersion {
		return nil, false
	}
	return &entry, true
}

// Store memoizes a computed result. Write-after-compute is the only
// mutation of the cache.
func (c *ResultCache) Store(entry Entry) error {
	entry.CreatedAt = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.store.Set(Key(entry.Signature), data, c.ttl)
}
