package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bersy123e/offerdoffer/internal/assist"
	"github.com/Bersy123e/offerdoffer/internal/extract"
	"github.com/Bersy123e/offerdoffer/internal/model"
)

// mockProvider returns a canned completion or error.
type mockProvider struct {
	response string
	err      error
	calls    int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(ctx context.Context, prompt string) (*assist.Completion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &assist.Completion{Text: m.response, Model: "mock"}, nil
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func testConfig() model.AssistConfig {
	cfg := model.DefaultConfig().Assist
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestInterpreter(p assist.Provider) *Interpreter {
	ex := extract.NewExtractor(extract.DefaultDictionary())
	return NewInterpreter(ex, p, testConfig(), zerolog.Nop())
}

func TestInterpreter_RuleBasedOnly(t *testing.T) {
	p := &mockProvider{response: `{}`}
	i := newTestInterpreter(p)

	spec := i.Interpret(context.Background(), "фланец ду 25 ст.20")

	if spec.Unparsable() {
		t.Fatal("Expected parsable query")
	}
	if spec.AssistUsed || spec.Degraded {
		t.Errorf("Expected no assist call for a confident rule pass, got used=%v degraded=%v", spec.AssistUsed, spec.Degraded)
	}
	if p.calls != 0 {
		t.Errorf("Expected 0 assist calls, got %d", p.calls)
	}
	if spec.Signature != "фланец ду 25 ст.20" {
		t.Errorf("Unexpected signature %q", spec.Signature)
	}
}

func TestInterpreter_QuantityExtraction(t *testing.T) {
	i := newTestInterpreter(nil)

	spec := i.Interpret(context.Background(), "фланец ду 25 ст.20 10 шт")
	if spec.Quantity == nil || *spec.Quantity != 10 {
		t.Fatalf("Expected quantity 10, got %v", spec.Quantity)
	}
	// количество не должно попадать в подпись и атрибуты
	if spec.Signature != "фланец ду 25 ст.20" {
		t.Errorf("Expected quantity stripped from signature, got %q", spec.Signature)
	}
	size, _ := spec.Attrs.Get(model.KindNominalSize)
	if size.Value.Numeric != 25 {
		t.Errorf("Expected size 25 untouched by quantity stripping, got %+v", size)
	}
}

func TestInterpreter_AssistFillsMissingType(t *testing.T) {
	p := &mockProvider{response: `{"product_type": "переход", "nominal_size": "57 мм"}`}
	i := newTestInterpreter(p)

	// "эксцентрический на 57" — тип изделия правилами не распознаётся
	spec := i.Interpret(context.Background(), "эксцентрический на 57")

	if p.calls != 1 {
		t.Fatalf("Expected exactly one assist call, got %d", p.calls)
	}
	if !spec.AssistUsed || spec.Degraded {
		t.Fatalf("Expected assist merge, got used=%v degraded=%v", spec.AssistUsed, spec.Degraded)
	}

	pt, ok := spec.Attrs.Get(model.KindProductType)
	if !ok || pt.Value.Text != "переход" {
		t.Fatalf("Expected assist-supplied type переход, got %s", spec.Attrs)
	}
	if pt.Source != model.SourceAssist {
		t.Errorf("Expected assist source, got %s", pt.Source)
	}
	if pt.Confidence != i.cfg.AssistConfidence {
		t.Errorf("Expected assist confidence %.1f, got %.1f", i.cfg.AssistConfidence, pt.Confidence)
	}

	size, ok := spec.Attrs.Get(model.KindNominalSize)
	if !ok || !size.Value.IsNumeric || size.Value.Numeric != 57 {
		t.Errorf("Expected assist value re-parsed to numeric 57, got %+v", size)
	}
}

func TestInterpreter_ConfidentRuleFieldWins(t *testing.T) {
	// правило уверенно извлекло размер; ассист предлагает другой — игнорируем
	p := &mockProvider{response: `{"product_type": "фланец", "nominal_size": "999", "material": "ст.20"}`}
	i := newTestInterpreter(p)

	attrs := model.NewAttributeSet()
	attrs.Attrs[model.KindNominalSize] = model.Attribute{
		Kind:       model.KindNominalSize,
		Value:      model.NumericValue(25),
		Confidence: 1.0,
		Source:     model.SourceRule,
	}

	merged, used, degraded := i.consultAssist(context.Background(), "фланец 25 мм", attrs)
	if !used || degraded {
		t.Fatalf("Expected successful merge, got used=%v degraded=%v", used, degraded)
	}

	size, _ := merged.Get(model.KindNominalSize)
	if size.Value.Numeric != 25 || size.Source != model.SourceRule {
		t.Errorf("Expected confident rule size 25 to win over assist 999, got %+v", size)
	}

	// поля, которых у правила не было, приняты от ассиста
	mat, ok := merged.Get(model.KindMaterial)
	if !ok || mat.Value.Text != "ст.20" || mat.Source != model.SourceAssist {
		t.Errorf("Expected assist-only material accepted, got %+v ok=%v", mat, ok)
	}
}

func TestInterpreter_DegradesOnAssistError(t *testing.T) {
	p := &mockProvider{err: errors.New("api down")}
	i := newTestInterpreter(p)

	spec := i.Interpret(context.Background(), "эксцентрический на 57")

	if !spec.Degraded {
		t.Fatal("Expected degraded spec on assist failure")
	}
	if spec.AssistUsed {
		t.Error("Expected AssistUsed=false on failure")
	}
	// правило ничего не извлекло — остаёмся с непарсибельным запросом,
	// а не с ошибкой
	if !spec.Unparsable() {
		t.Errorf("Expected rule-based partial to survive, got %s", spec.Attrs)
	}
}

func TestInterpreter_DegradesOnMalformedAssistJSON(t *testing.T) {
	p := &mockProvider{response: "извините, не могу помочь"}
	i := newTestInterpreter(p)

	spec := i.Interpret(context.Background(), "эксцентрический на 57")
	if !spec.Degraded {
		t.Error("Expected degraded spec on malformed assist output")
	}
}

func TestInterpreter_NilProviderNeverDegrades(t *testing.T) {
	i := newTestInterpreter(nil)

	spec := i.Interpret(context.Background(), "эксцентрический на 57")
	if spec.Degraded || spec.AssistUsed {
		t.Errorf("Expected plain rule-based spec with assist disabled, got used=%v degraded=%v", spec.AssistUsed, spec.Degraded)
	}
}
