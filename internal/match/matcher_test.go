package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bersy123e/offerdoffer/internal/catalog"
	"github.com/Bersy123e/offerdoffer/internal/extract"
	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/normalize"
)

func testSnapshot(t *testing.T, names ...string) *catalog.Snapshot {
	t.Helper()
	ex := extract.NewExtractor(extract.DefaultDictionary())
	rows := make([]catalog.Row, len(names))
	for i, n := range names {
		rows[i] = catalog.Row{Name: n, Price: float64(100 * (i + 1))}
	}
	entries, _ := catalog.BuildEntries(rows, ex)
	store := catalog.NewStore()
	return store.Replace(entries)
}

func queryAttrs(s string) *model.AttributeSet {
	ex := extract.NewExtractor(extract.DefaultDictionary())
	return ex.Extract(normalize.Tokenize(s))
}

func TestMatcher_ExactMatchScoresOne(t *testing.T) {
	snap := testSnapshot(t,
		"Фланец Ду25 ст.20",
		"Фланец Ду24 ст.20",
		"Фланец Ду50 09Г2С",
		"Отвод 90 57х5",
		"Болт М12",
	)
	m := NewMatcher(model.DefaultConfig().Scoring)

	results := m.Match(queryAttrs("фланец ду 25 ст.20"), snap)
	require.Len(t, results, 2, "far size + wrong type + unparsable must be excluded")

	assert.Equal(t, int64(1), results[0].EntryID)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 2, results[0].ExactMatches)

	// 24 vs 25: внутри полосы деградации, частичное совпадение
	assert.Equal(t, int64(2), results[1].EntryID)
	assert.Less(t, results[1].Score, 1.0)
	assert.GreaterOrEqual(t, results[1].Score, 0.5)
}

func TestMatcher_SelfMatchIsReflexive(t *testing.T) {
	names := []string{
		"Фланец Ду25 ст.20 ГОСТ 12820-80",
		"Отвод 90 гр 108х6 09Г2С",
		"Задвижка Ду50 Ру16",
	}
	snap := testSnapshot(t, names...)
	m := NewMatcher(model.DefaultConfig().Scoring)

	for i, n := range names {
		results := m.Match(queryAttrs(n), snap)
		require.NotEmpty(t, results, "entry %q must match itself", n)
		assert.Equal(t, int64(i+1), results[0].EntryID)
		assert.Equal(t, 1.0, results[0].Score, "self-match of %q", n)
	}
}

func TestMatcher_ProductTypeMismatchExcludes(t *testing.T) {
	snap := testSnapshot(t, "Отвод 90 57х5", "Труба 57х5")
	m := NewMatcher(model.DefaultConfig().Scoring)

	results := m.Match(queryAttrs("фланец ду 57"), snap)
	assert.Empty(t, results, "different product types are never compared")
}

func TestMatcher_AbsentAttributeDoesNotExclude(t *testing.T) {
	snap := testSnapshot(t, "Фланец Ду25 ст.20")
	m := NewMatcher(model.DefaultConfig().Scoring)

	// у позиции нет давления — статус absent, балл 0, но позиция в выдаче
	results := m.Match(queryAttrs("фланец ду25 ру16"), snap)
	require.Len(t, results, 1)
	assert.Less(t, results[0].Score, 1.0)

	var pressure *model.AttributeMatch
	for i := range results[0].Breakdown {
		if results[0].Breakdown[i].Kind == model.KindPressure {
			pressure = &results[0].Breakdown[i]
		}
	}
	require.NotNil(t, pressure)
	assert.Equal(t, model.StatusAbsent, pressure.Status)
	assert.Equal(t, 0.0, pressure.Score)
}

func TestMatcher_BelowThresholdDropped(t *testing.T) {
	snap := testSnapshot(t, "Фланец Ду500 12Х18Н10Т")
	m := NewMatcher(model.DefaultConfig().Scoring)

	results := m.Match(queryAttrs("фланец ду 25 ст.20"), snap)
	assert.Empty(t, results, "an entry far off on every attribute is not an acceptable match")
}

func TestMatcher_DeterministicOrdering(t *testing.T) {
	// одинаковые позиции от разных поставщиков: порядок по ID
	snap := testSnapshot(t, "Фланец Ду25 ст.20", "Фланец Ду25 ст.20", "Фланец Ду25 ст.20")
	m := NewMatcher(model.DefaultConfig().Scoring)

	for run := 0; run < 5; run++ {
		results := m.Match(queryAttrs("фланец ду 25 ст.20"), snap)
		require.Len(t, results, 3)
		for i, r := range results {
			assert.Equal(t, int64(i+1), r.EntryID, "run %d: ties must break by entry ID", run)
		}
	}
}

func TestMatcher_ThresholdOnlyTruncates(t *testing.T) {
	// порог отсекает хвост выдачи, но порядок выживших не трогает
	snap := testSnapshot(t,
		"Фланец Ду25 ст.20",
		"Фланец Ду24 ст.20",
		"Фланец Ду25 09Г2С",
		"Фланец Ду26 12Х18Н10Т",
		"Фланец Ду500",
	)
	attrs := queryAttrs("фланец ду 25 ст.20")

	strict := NewMatcher(model.DefaultConfig().Scoring).Match(attrs, snap)
	require.NotEmpty(t, strict)

	open := model.DefaultConfig().Scoring
	open.AcceptThreshold = 0
	all := NewMatcher(open).Match(attrs, snap)
	require.GreaterOrEqual(t, len(all), len(strict))

	for i, r := range strict {
		assert.Equal(t, all[i].EntryID, r.EntryID,
			"relaxing the threshold must not reorder entries above it")
		assert.Equal(t, all[i].Score, r.Score)
	}
}

func TestMatcher_TypeOnlyQueryMatchesAll(t *testing.T) {
	snap := testSnapshot(t, "Фланец Ду25 ст.20", "Фланец Ду50 09Г2С")
	m := NewMatcher(model.DefaultConfig().Scoring)

	results := m.Match(queryAttrs("фланцы"), snap)
	require.Len(t, results, 2, "a type-only query has no comparable attributes to disqualify on")
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 1.0, results[1].Score)
}

func TestMatcher_NumericToleranceBands(t *testing.T) {
	cfg := model.DefaultConfig().Scoring
	m := NewMatcher(cfg)

	assert.Equal(t, 1.0, m.numericSimilarity(25, 25))
	assert.Equal(t, 1.0, m.numericSimilarity(25, 25.4), "within exact tolerance")
	assert.Equal(t, 0.0, m.numericSimilarity(25, 50), "beyond zero tolerance")

	mid := m.numericSimilarity(25, 24)
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 1.0)

	// симметричность
	assert.Equal(t, m.numericSimilarity(24, 25), mid)
}

func TestMatcher_NilAndUnparsableQuery(t *testing.T) {
	snap := testSnapshot(t, "Фланец Ду25 ст.20")
	m := NewMatcher(model.DefaultConfig().Scoring)

	assert.Nil(t, m.Match(nil, snap))
	assert.Nil(t, m.Match(queryAttrs("болт м12"), snap))
}
