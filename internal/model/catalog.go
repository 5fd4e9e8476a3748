package model

// CatalogEntry is one ingested price-list row with its derived attributes.
// Entries are never mutated in place: when the source row changes the whole
// snapshot is replaced.
type CatalogEntry struct {
	ID       int64   `json:"id"`                 // sequential within a snapshot
	RawText  string  `json:"raw_text"`           // original listing name
	Supplier string  `json:"supplier,omitempty"` // opaque external reference
	Price    float64 `json:"price,omitempty"`
	Stock    int     `json:"stock,omitempty"`

	Attrs *AttributeSet `json:"attrs,omitempty"`

	// Unparsable marks rows where no ProductType could be resolved.
	// Such rows are excluded from matching but kept for diagnostics.
	Unparsable bool `json:"unparsable,omitempty"`
}
