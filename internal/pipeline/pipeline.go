// Package pipeline wires the engine together: ingestion feeds the catalog
// snapshot, requests flow normalize → extract → (assist) → cache → match.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Bersy123e/offerdoffer/internal/assist"
	"github.com/Bersy123e/offerdoffer/internal/cache"
	"github.com/Bersy123e/offerdoffer/internal/catalog"
	"github.com/Bersy123e/offerdoffer/internal/extract"
	"github.com/Bersy123e/offerdoffer/internal/match"
	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/normalize"
	"github.com/Bersy123e/offerdoffer/internal/query"
)

// Pipeline orchestrates ingestion and request processing. Matching is pure
// computation over an immutable snapshot, so Process is safe to call from
// concurrent requests; the result cache is the only shared mutable state.
type Pipeline struct {
	extractor   *extract.Extractor
	interpreter *query.Interpreter
	matcher     *match.Matcher
	store       *catalog.Store
	results     *cache.ResultCache // nil when caching disabled
	log         zerolog.Logger
	cfg         *model.Config
}

// New builds the pipeline from configuration. An unknown assist provider
// is an error; an empty one disables the assist.
func New(cfg *model.Config, log zerolog.Logger) (*Pipeline, error) {
	dict := extract.DefaultDictionary()
	extractor := extract.NewExtractor(dict)

	provider, err := assist.NewProvider(assist.FromModel(cfg.Assist))
	if err != nil {
		return nil, fmt.Errorf("init assist provider: %w", err)
	}
	if provider != nil {
		provider = assist.Throttle(provider, cfg.Assist.RequestsPerSecond, cfg.Assist.Burst)
		log.Info().Str("provider", provider.Name()).Msg("natural-language assist enabled")
	}

	var results *cache.ResultCache
	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		results = cache.NewResultCache(layered, 0) // слои живут по своим TTL
	}

	return &Pipeline{
		extractor:   extractor,
		interpreter: query.NewInterpreter(extractor, provider, cfg.Assist, log),
		matcher:     match.NewMatcher(cfg.Scoring),
		store:       catalog.NewStore(),
		results:     results,
		log:         log,
		cfg:         cfg,
	}, nil
}

// Store exposes the catalog snapshot holder.
func (p *Pipeline) Store() *catalog.Store { return p.store }

// Interpreter exposes the query interpreter (request splitting).
func (p *Pipeline) Interpreter() *query.Interpreter { return p.interpreter }

// Ingest derives attributes for the rows and swaps in a new catalog
// snapshot. Cached results from the previous snapshot become stale
// automatically via the version check.
func (p *Pipeline) Ingest(rows []catalog.Row) (catalog.Stats, error) {
	entries, stats := catalog.BuildEntries(rows, p.extractor)
	snap := p.store.Replace(entries)

	p.log.Info().
		Str("snapshot", snap.Version).
		Int("total", stats.Total).
		Int("parsed", stats.Parsed).
		Int("unparsable", stats.Unparsable).
		Msg("catalog snapshot replaced")
	return stats, nil
}

// Response is what the proposal renderer consumes: the interpreted query
// for explanation and the ordered results.
type Response struct {
	Query     *model.QuerySpec    `json:"query"`
	Results   []model.MatchResult `json:"results"`
	FromCache bool                `json:"from_cache,omitempty"`
}

// Process handles one client request. An empty result list is a valid
// outcome ("no acceptable match"); an unparsable query is also returned
// rather than failing, with its raw text retained for diagnostics.
func (p *Pipeline) Process(ctx context.Context, rawText string) (*Response, error) {
	snap := p.store.Snapshot()

	// Сигнатура считается без assist, поэтому кеш проверяется до
	// интерпретации: повторный запрос не тратит внешний вызов.
	quantity, cleaned := query.ExtractQuantity(rawText)
	signature := normalize.Signature(cleaned)

	if p.results != nil {
		if entry, ok := p.results.Lookup(signature, snap.Version); ok {
			p.log.Debug().Str("signature", signature).Msg("cache hit")
			spec := entry.Query
			spec.RawText = rawText
			spec.Quantity = quantity
			return &Response{Query: &spec, Results: entry.Results, FromCache: true}, nil
		}
	}

	spec := p.interpreter.Interpret(ctx, rawText)
	if spec.Unparsable() {
		p.log.Warn().Str("query", rawText).Msg("query unparsable: no product type resolved")
		return &Response{Query: spec}, nil
	}
	if spec.Degraded {
		p.log.Warn().Str("query", rawText).Msg("assist degraded, matching on rule-based partial")
	}

	results := p.matcher.Match(spec.Attrs, snap)
	p.log.Info().
		Str("signature", spec.Signature).
		Int("results", len(results)).
		Msg("query matched")

	// Деградировавшие ответы не кешируются: следующий запрос получит
	// шанс на полноценный assist.
	if p.results != nil && !spec.Degraded {
		err := p.results.Store(cache.Entry{
			Signature:       spec.Signature,
			Query:           *spec,
			Results:         results,
			SnapshotVersion: snap.Version,
		})
		if err != nil {
			p.log.Warn().Err(err).Msg("result cache store failed")
		}
	}
	return &Response{Query: spec, Results: results}, nil
}
