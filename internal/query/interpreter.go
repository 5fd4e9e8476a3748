// Package query turns raw client text into a QuerySpec: rule-based
// extraction first, with a single optional external-assist call when the
// rules come back incomplete or unsure.
package query

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Bersy123e/offerdoffer/internal/assist"
	"github.com/Bersy123e/offerdoffer/internal/extract"
	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/normalize"
)

// Interpreter builds QuerySpecs. The assist provider may be nil, in which
// case interpretation is purely rule-based.
type Interpreter struct {
	extractor *extract.Extractor
	provider  assist.Provider
	cfg       model.AssistConfig
	log       zerolog.Logger
}

func NewInterpreter(extractor *extract.Extractor, provider assist.Provider, cfg model.AssistConfig, log zerolog.Logger) *Interpreter {
	return &Interpreter{
		extractor: extractor,
		provider:  provider,
		cfg:       cfg,
		log:       log,
	}
}

// Interpret derives the QuerySpec for one request. Never fails: assist
// errors and timeouts degrade to the rule-based partial attribute set.
func (i *Interpreter) Interpret(ctx context.Context, raw string) *model.QuerySpec {
	quantity, cleaned := ExtractQuantity(raw)

	tokens := normalize.Tokenize(cleaned)
	attrs := i.extractor.Extract(tokens)

	spec := &model.QuerySpec{
		RawText:   raw,
		Signature: normalize.Signature(cleaned),
		Attrs:     attrs,
		Quantity:  quantity,
	}

	if !i.needsAssist(attrs) || i.provider == nil {
		return spec
	}

	merged, used, degraded := i.consultAssist(ctx, cleaned, attrs)
	spec.Attrs = merged
	spec.AssistUsed = used
	spec.Degraded = degraded
	return spec
}

// needsAssist: the rule pass is trusted unless it failed to resolve the
// product type or its overall confidence is low.
func (i *Interpreter) needsAssist(attrs *model.AttributeSet) bool {
	if !attrs.Has(model.KindProductType) {
		return true
	}
	return attrs.MeanConfidence() < i.cfg.ConfidenceThreshold
}

// consultAssist performs the single external call and merges its fields.
// Merge policy: rule-based fields with confidence >= threshold are
// authoritative; assist-only (or low-confidence-rule) fields are accepted
// at the fixed assist confidence; fields neither source supplies stay
// absent.
func (i *Interpreter) consultAssist(ctx context.Context, text string, attrs *model.AttributeSet) (merged *model.AttributeSet, used, degraded bool) {
	req := assist.Request{
		Text:    text,
		Partial: make(map[model.AttributeKind]string),
	}
	for _, k := range model.AllKinds {
		if a, ok := attrs.Get(k); ok && a.Confidence >= i.cfg.ConfidenceThreshold {
			req.Partial[k] = a.Value.Text
		} else {
			req.Missing = append(req.Missing, k)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	fields, err := assist.Interpret(ctx, i.provider, req)
	if err != nil {
		i.log.Warn().Err(err).Str("query", text).
			Msg("assist failed, degrading to rule-based partial extraction")
		return attrs, false, true
	}

	merged = model.NewAttributeSet()
	merged.Residue = attrs.Residue
	for k, a := range attrs.Attrs {
		merged.Attrs[k] = a
	}
	for kind, value := range fields {
		if a, ok := merged.Attrs[kind]; ok && a.Confidence >= i.cfg.ConfidenceThreshold {
			continue // confident rule output wins
		}
		parsed, ok := i.extractor.ParseValue(kind, value)
		if !ok {
			continue
		}
		merged.Attrs[kind] = model.Attribute{
			Kind:       kind,
			Value:      parsed,
			Confidence: i.cfg.AssistConfidence,
			Source:     model.SourceAssist,
		}
	}
	return merged, true, false
}
