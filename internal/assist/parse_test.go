package assist

import (
	"testing"

	"github.com/Bersy123e/offerdoffer/internal/model"
)

func TestParseAttributes_PlainObject(t *testing.T) {
	fields, err := parseAttributes(`{"product_type": "фланец", "nominal_size": "25 мм"}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fields[model.KindProductType] != "фланец" {
		t.Errorf("Expected фланец, got %q", fields[model.KindProductType])
	}
	if fields[model.KindNominalSize] != "25 мм" {
		t.Errorf("Expected '25 мм', got %q", fields[model.KindNominalSize])
	}
}

func TestParseAttributes_FencedJSON(t *testing.T) {
	response := "Вот извлечённые характеристики:\n```json\n{\"material\": \"ст.20\"}\n```\nНадеюсь, помог!"
	fields, err := parseAttributes(response)
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if fields[model.KindMaterial] != "ст.20" {
		t.Errorf("Expected ст.20, got %q", fields[model.KindMaterial])
	}
}

func TestParseAttributes_ProseWrappedBraces(t *testing.T) {
	response := `Ответ: {"angle": "90"} — удачи!`
	fields, err := parseAttributes(response)
	if err != nil {
		t.Fatalf("Expected brace scan to recover JSON, got %v", err)
	}
	if fields[model.KindAngle] != "90" {
		t.Errorf("Expected 90, got %q", fields[model.KindAngle])
	}
}

func TestParseAttributes_UnknownKeysIgnored(t *testing.T) {
	fields, err := parseAttributes(`{"product_type": "отвод", "color": "синий", "weight": 12}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(fields) != 1 {
		t.Errorf("Expected unknown keys dropped, got %v", fields)
	}
}

func TestParseAttributes_NumericValues(t *testing.T) {
	fields, err := parseAttributes(`{"nominal_size": 57, "wall_thickness": 3.5}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fields[model.KindNominalSize] != "57" {
		t.Errorf("Expected '57', got %q", fields[model.KindNominalSize])
	}
	if fields[model.KindWallThickness] != "3.5" {
		t.Errorf("Expected '3.5', got %q", fields[model.KindWallThickness])
	}
}

func TestParseAttributes_EmptyAndBlankValuesDropped(t *testing.T) {
	fields, err := parseAttributes(`{"material": "  ", "grade": ""}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("Expected blank values dropped, got %v", fields)
	}
}

func TestParseAttributes_NoJSON(t *testing.T) {
	if _, err := parseAttributes("извините, не могу определить"); err == nil {
		t.Error("Expected error when no JSON object present")
	}
}

func TestExtractArray(t *testing.T) {
	raw, err := extractArray("```json\n[{\"item_query\": \"фланец\", \"quantity\": null}]\n```")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if raw != `[{"item_query": "фланец", "quantity": null}]` {
		t.Errorf("Unexpected array slice: %q", raw)
	}

	if _, err := extractArray("никакого массива здесь нет"); err == nil {
		t.Error("Expected error when no JSON array present")
	}
}
