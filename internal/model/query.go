package model

// QuerySpec is an interpreted client request. Read-only after creation.
type QuerySpec struct {
	RawText   string        `json:"raw_text"`
	Signature string        `json:"signature"` // normalized cache key, stable under punctuation noise
	Attrs     *AttributeSet `json:"attrs"`
	Quantity  *int          `json:"quantity,omitempty"`
	Requester string        `json:"requester,omitempty"` // opaque, never used by matching

	AssistUsed bool `json:"assist_used,omitempty"` // external assist contributed fields
	Degraded   bool `json:"degraded,omitempty"`    // assist failed; rule-based partial only
}

// Unparsable reports whether the request resolved no ProductType at all.
func (q *QuerySpec) Unparsable() bool {
	return q.Attrs == nil || !q.Attrs.Has(KindProductType)
}

// MatchStatus classifies how one query attribute compared against a
// catalog entry.
type MatchStatus string

const (
	StatusMatched    MatchStatus = "matched"    // exact, or numeric within tolerance
	StatusPartial    MatchStatus = "partial"    // within the degradation band
	StatusMismatched MatchStatus = "mismatched" // present in both, too far apart
	StatusAbsent     MatchStatus = "absent"     // attribute missing in the entry
)

// AttributeMatch is the per-kind breakdown the proposal renderer shows to
// explain why an entry ranked where it did.
type AttributeMatch struct {
	Kind       AttributeKind `json:"kind"`
	Status     MatchStatus   `json:"status"`
	Score      float64       `json:"score"` // [0,1]
	QueryValue string        `json:"query_value"`
	EntryValue string        `json:"entry_value,omitempty"`
}

// MatchResult scores one catalog entry against a query.
type MatchResult struct {
	EntryID      int64            `json:"entry_id"`
	Score        float64          `json:"score"` // weighted aggregate, [0,1]
	ExactMatches int              `json:"exact_matches"`
	Breakdown    []AttributeMatch `json:"breakdown"`
}

// Less is the deterministic result ordering: score desc, exact matches
// desc, entry ID asc.
func (r MatchResult) Less(other MatchResult) bool {
	if r.Score != other.Score {
		return r.Score > other.Score
	}
	if r.ExactMatches != other.ExactMatches {
		return r.ExactMatches > other.ExactMatches
	}
	return r.EntryID < other.EntryID
}
