// Package assist is the narrow boundary to the external natural-language
// collaborator. The engine consults it at most once per request, with an
// explicit timeout; any failure degrades to the rule-based partial result.
package assist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Bersy123e/offerdoffer/internal/model"
)

// Provider is a completion backend. Implementations must honor ctx
// cancellation; the interpreter wraps every call in the configured timeout.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (*Completion, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Completion is the raw output of one assist call.
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds assist provider configuration.
type Config struct {
	Provider  string // "openai", "anthropic", "ollama", ""
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
}

// FromModel converts the engine configuration section.
func FromModel(c model.AssistConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}

const systemPrompt = "Ты помощник по подбору трубопроводной арматуры и деталей " +
	"трубопроводов. Отвечай ТОЛЬКО валидным JSON без пояснений."

// Request asks the assist for attribute kinds the rule-based pass missed.
type Request struct {
	Text    string                         // raw client text
	Partial map[model.AttributeKind]string // already-extracted fields, for context
	Missing []model.AttributeKind          // fields to supply
}

// Interpret asks the provider for the missing attribute kinds and returns
// kind → value strings. Values are free-form; the caller re-parses them
// into canonical units.
func Interpret(ctx context.Context, p Provider, req Request) (map[model.AttributeKind]string, error) {
	comp, err := p.Complete(ctx, buildInterpretPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("assist interpret: %w", err)
	}
	attrs, err := parseAttributes(comp.Text)
	if err != nil {
		return nil, fmt.Errorf("assist interpret: %w", err)
	}
	return attrs, nil
}

func buildInterpretPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("ЗАДАЧА: Извлечь из запроса клиента недостающие характеристики товара.\n")
	b.WriteString("ПРАВИЛА:\n")
	b.WriteString("1. Верни ТОЛЬКО валидный JSON-объект: ключ — имя характеристики, значение — строка.\n")
	b.WriteString("2. Извлекай характеристики ТОЧНО как в тексте (\"тип В\", \"ст.20\", \"ГОСТ 17375-2001\", \"ДУ400\").\n")
	b.WriteString("3. Если характеристики нет в тексте — не включай её ключ. НЕ ПРИДУМЫВАЙ значения.\n")
	b.WriteString("4. НЕ включай количество (шт, штук, компл).\n\n")

	b.WriteString("НУЖНЫЕ ХАРАКТЕРИСТИКИ:\n")
	for _, k := range req.Missing {
		fmt.Fprintf(&b, "- %s: %s\n", k, kindHint(k))
	}

	if len(req.Partial) > 0 {
		b.WriteString("\nУЖЕ ИЗВЛЕЧЕНО (для контекста, не повторяй):\n")
		kinds := make([]string, 0, len(req.Partial))
		for k := range req.Partial {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "- %s: %s\n", k, req.Partial[model.AttributeKind(k)])
		}
	}

	b.WriteString("\nПРИМЕР ОТВЕТА:\n")
	b.WriteString(`{"product_type": "фланец", "nominal_size": "25 мм", "material": "ст.20"}` + "\n\n")
	fmt.Fprintf(&b, "ЗАПРОС: %s\nОТВЕТ:", req.Text)
	return b.String()
}

func kindHint(k model.AttributeKind) string {
	switch k {
	case model.KindProductType:
		return "вид изделия (фланец, отвод, труба, переход, заглушка, тройник, задвижка, редуктор)"
	case model.KindNominalSize:
		return "условный диаметр / Ду, в мм"
	case model.KindWallThickness:
		return "толщина стенки, в мм"
	case model.KindAngle:
		return "угол отвода в градусах"
	case model.KindMaterial:
		return "марка стали или материала (ст.20, 09Г2С, 12Х18Н10Т)"
	case model.KindStandard:
		return "ГОСТ / ТУ / стандарт"
	case model.KindGrade:
		return "исполнение или тип (исп.В, тип Б)"
	case model.KindPressure:
		return "условное давление Ру / PN"
	default:
		return string(k)
	}
}
