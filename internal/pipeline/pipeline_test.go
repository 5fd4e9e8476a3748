package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bersy123e/offerdoffer/internal/catalog"
	"github.com/Bersy123e/offerdoffer/internal/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Assist.Provider = "" // только правила
	cfg.Cache.Dir = t.TempDir()

	p, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func testRows() []catalog.Row {
	return []catalog.Row{
		{Name: "Фланец Ду25 ст.20", Price: 1200, Supplier: "ТД Металл", Stock: 14},
		{Name: "Фланец Ду24 ст.20", Price: 1100},
		{Name: "Отвод 90 гр 108х6 09Г2С", Price: 800},
		{Name: "Болт М12 оцинкованный", Price: 10},
	}
}

func TestPipeline_IngestAndProcess(t *testing.T) {
	p := newTestPipeline(t)

	stats, err := p.Ingest(testRows())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Parsed)
	assert.Equal(t, 1, stats.Unparsable)

	resp, err := p.Process(context.Background(), "фланец ду 25 ст.20")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	assert.Equal(t, int64(1), resp.Results[0].EntryID)
	assert.Equal(t, 1.0, resp.Results[0].Score)
	assert.False(t, resp.FromCache)

	entry, ok := p.Store().Snapshot().Entry(resp.Results[0].EntryID)
	require.True(t, ok)
	assert.Equal(t, "ТД Металл", entry.Supplier)
}

func TestPipeline_CacheHitForEquivalentPhrasings(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Ingest(testRows())
	require.NoError(t, err)

	first, err := p.Process(context.Background(), "фланец ду 25 ст.20")
	require.NoError(t, err)
	require.False(t, first.FromCache)

	// пунктуационный вариант с той же подписью попадает в кэш
	second, err := p.Process(context.Background(), "Фланец,  ду 25  СТ.20!")
	require.NoError(t, err)
	assert.True(t, second.FromCache, "signature-equal rephrasing must hit the cache")
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Query.Signature, second.Query.Signature)
}

func TestPipeline_CacheHitSkipsAssist(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2",
			"response": `{"product_type": "фланец"}`,
			"done":     true,
		})
	}))
	defer srv.Close()

	cfg := model.DefaultConfig()
	cfg.Assist.Provider = "ollama"
	cfg.Assist.BaseURL = srv.URL
	cfg.Cache.Dir = t.TempDir()

	p, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = p.Ingest(testRows())
	require.NoError(t, err)

	// правила не распознают тип изделия, запрос уходит в assist
	first, err := p.Process(context.Background(), "25 мм ст.20")
	require.NoError(t, err)
	require.False(t, first.FromCache)
	require.True(t, first.Query.AssistUsed)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	second, err := p.Process(context.Background(), "25 мм ст.20")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls),
		"cached repeat must not consult the assist")
}

func TestPipeline_ReingestInvalidatesCache(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Ingest(testRows())
	require.NoError(t, err)

	first, err := p.Process(context.Background(), "фланец ду 25 ст.20")
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)

	// новый прайс без Ду25 — закэшированный результат не должен пережить замену
	_, err = p.Ingest([]catalog.Row{{Name: "Фланец Ду500 12Х18Н10Т", Price: 9000}})
	require.NoError(t, err)

	second, err := p.Process(context.Background(), "фланец ду 25 ст.20")
	require.NoError(t, err)
	assert.False(t, second.FromCache, "superseded snapshot must not serve cached results")
	assert.Empty(t, second.Results)
}

func TestPipeline_UnparsableQuery(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Ingest(testRows())
	require.NoError(t, err)

	resp, err := p.Process(context.Background(), "что-нибудь круглое")
	require.NoError(t, err, "unparsable input is an outcome, not an error")
	assert.True(t, resp.Query.Unparsable())
	assert.Empty(t, resp.Results)
}

func TestPipeline_EmptyResultsAreValid(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Ingest(testRows())
	require.NoError(t, err)

	resp, err := p.Process(context.Background(), "задвижка ду50 ру16")
	require.NoError(t, err)
	assert.Empty(t, resp.Results, "no задвижка in the catalog: empty list, not an error")
	assert.False(t, resp.Query.Unparsable())
}

func TestPipeline_CacheDisabled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Assist.Provider = ""
	cfg.Cache.Enabled = false

	p, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = p.Ingest(testRows())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, err := p.Process(context.Background(), "фланец ду 25 ст.20")
		require.NoError(t, err)
		assert.False(t, resp.FromCache)
		assert.NotEmpty(t, resp.Results)
	}
}

func TestPipeline_UnknownAssistProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Assist.Provider = "gemini"

	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)
}
