// Package catalog holds the versioned, immutable catalog snapshot the
// matcher reads from. Ingestion replaces the snapshot wholesale; readers
// always observe either the old or the new complete catalog.
package catalog

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Bersy123e/offerdoffer/internal/extract"
	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/normalize"
)

// Row is one incoming price-list position before extraction.
type Row struct {
	Name     string
	Supplier string
	Price    float64
	Stock    int
}

// Snapshot is a complete catalog view at a point in time. Immutable.
type Snapshot struct {
	Version  string               `json:"version"`
	LoadedAt time.Time            `json:"loaded_at"`
	Entries  []model.CatalogEntry `json:"entries"`

	byID map[int64]int
}

// Entry looks up an entry by its ID within this snapshot.
func (s *Snapshot) Entry(id int64) (*model.CatalogEntry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.Entries[i], true
}

// Stats summarizes one ingestion pass.
type Stats struct {
	Total      int
	Parsed     int
	Unparsable int
}

// BuildEntries derives attribute sets for incoming rows. Rows whose
// product type cannot be resolved are marked unparsable and kept with
// their raw text for diagnostics, never dropped silently. IDs are
// sequential, so result ordering ties break deterministically.
func BuildEntries(rows []Row, ex *extract.Extractor) ([]model.CatalogEntry, Stats) {
	entries := make([]model.CatalogEntry, 0, len(rows))
	stats := Stats{Total: len(rows)}

	for i, row := range rows {
		attrs := ex.Extract(normalize.Tokenize(row.Name))
		entry := model.CatalogEntry{
			ID:       int64(i + 1),
			RawText:  row.Name,
			Supplier: row.Supplier,
			Price:    row.Price,
			Stock:    row.Stock,
			Attrs:    attrs,
		}
		if !attrs.Has(model.KindProductType) {
			entry.Unparsable = true
			stats.Unparsable++
		} else {
			stats.Parsed++
		}
		entries = append(entries, entry)
	}
	return entries, stats
}

// Store is the atomically swappable snapshot holder.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.snap.Store(newSnapshot(nil))
	return s
}

// Snapshot returns the current complete catalog view.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Replace swaps in a new snapshot with a fresh version and returns it.
// Cached results computed against older versions become stale by the
// version check, no explicit invalidation needed.
func (s *Store) Replace(entries []model.CatalogEntry) *Snapshot {
	snap := newSnapshot(entries)
	s.snap.Store(snap)
	return snap
}

func newSnapshot(entries []model.CatalogEntry) *Snapshot {
	snap := &Snapshot{
		Version:  uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Entries:  entries,
		byID:     make(map[int64]int, len(entries)),
	}
	for i := range entries {
		snap.byID[entries[i].ID] = i
	}
	return snap
}
