// Package match scores catalog entries against an interpreted query.
// The model is deliberately transparent: every result carries a per-kind
// breakdown so mismatch reasons can be shown to the requester.
package match

import (
	"math"
	"sort"

	"github.com/Bersy123e/offerdoffer/internal/catalog"
	"github.com/Bersy123e/offerdoffer/internal/model"
)

// Matcher is a pure scorer over immutable snapshots; safe for concurrent
// use across requests.
type Matcher struct {
	cfg model.ScoringConfig
}

func NewMatcher(cfg model.ScoringConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match ranks every entry of the snapshot whose ProductType equals the
// query's. Entries below the acceptance threshold are dropped entirely:
// an empty list means "no acceptable match", a valid outcome. The order is
// reproducible for identical (query, snapshot) inputs.
func (m *Matcher) Match(query *model.AttributeSet, snap *catalog.Snapshot) []model.MatchResult {
	if query == nil || !query.Has(model.KindProductType) || snap == nil {
		return nil
	}
	queryType := query.ProductType()

	var results []model.MatchResult
	for i := range snap.Entries {
		entry := &snap.Entries[i]
		if entry.Unparsable || entry.Attrs == nil {
			continue
		}
		if entry.Attrs.ProductType() != queryType {
			continue // разные виды изделий не сравниваются
		}
		if r, ok := m.scoreEntry(query, entry); ok {
			results = append(results, r)
		}
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Less(results[b])
	})
	return results
}

// scoreEntry computes the weighted aggregate over the attribute kinds
// present in the query. ProductType carries no weight: it already
// pre-filtered the entry.
func (m *Matcher) scoreEntry(query *model.AttributeSet, entry *model.CatalogEntry) (model.MatchResult, bool) {
	var breakdown []model.AttributeMatch
	var weightSum, scoreSum float64
	exact := 0

	for _, kind := range query.Kinds() {
		if kind == model.KindProductType {
			continue
		}
		qa, _ := query.Get(kind)
		weight := m.weight(kind)

		am := model.AttributeMatch{
			Kind:       kind,
			QueryValue: qa.Value.Text,
		}

		ea, present := entry.Attrs.Get(kind)
		if !present {
			// отсутствие атрибута у позиции не исключает её из выдачи
			am.Status = model.StatusAbsent
		} else {
			am.EntryValue = ea.Value.Text
			am.Score = m.similarity(qa.Value, ea.Value)
			switch {
			case am.Score >= 1:
				am.Status = model.StatusMatched
				exact++
			case am.Score > 0:
				am.Status = model.StatusPartial
			default:
				am.Status = model.StatusMismatched
			}
		}

		breakdown = append(breakdown, am)
		weightSum += weight
		scoreSum += weight * am.Score
	}

	if weightSum == 0 {
		// запрос без сравнимых атрибутов: совпадение по виду изделия
		return model.MatchResult{EntryID: entry.ID, Score: 1, Breakdown: breakdown}, true
	}

	aggregate := scoreSum / weightSum
	if aggregate < m.cfg.AcceptThreshold {
		return model.MatchResult{}, false
	}
	return model.MatchResult{
		EntryID:      entry.ID,
		Score:        aggregate,
		ExactMatches: exact,
		Breakdown:    breakdown,
	}, true
}

// similarity compares two attribute values of the same kind.
func (m *Matcher) similarity(q, e model.AttributeValue) float64 {
	if q.IsNumeric && e.IsNumeric {
		return m.numericSimilarity(q.Numeric, e.Numeric)
	}
	if q.IsNumeric != e.IsNumeric {
		return 0
	}
	if q.Text == e.Text {
		return 1
	}
	sim := editSimilarity(q.Text, e.Text)
	if sim < m.cfg.MinCategoricalSimilarity {
		return 0 // слабое размытое сходство не приносит баллов
	}
	return sim
}

// numericSimilarity is symmetric and reflexive: 1.0 inside the exact
// tolerance band, linear decay to 0 at the zero band.
func (m *Matcher) numericSimilarity(a, b float64) float64 {
	if a == b {
		return 1
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return 1
	}
	rel := math.Abs(a-b) / scale
	switch {
	case rel <= m.cfg.ExactTolerance:
		return 1
	case rel >= m.cfg.ZeroTolerance:
		return 0
	default:
		return 1 - (rel-m.cfg.ExactTolerance)/(m.cfg.ZeroTolerance-m.cfg.ExactTolerance)
	}
}

func (m *Matcher) weight(kind model.AttributeKind) float64 {
	if w, ok := m.cfg.Weights[kind]; ok {
		return w
	}
	return 0.1 // unknown kinds still count a little
}
