package normalize

import "testing"

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_UnitGluing(t *testing.T) {
	tokens := Tokenize("Фланец 25 мм Ст.20")

	want := []string{"фланец", "25мм", "ст.20"}
	got := texts(tokens)
	if len(got) != len(want) {
		t.Fatalf("Expected %d tokens %v, got %v", len(want), want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Token %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	num := tokens[1]
	if !num.IsNumber || num.Value != 25 || num.Unit != UnitMillimeter {
		t.Errorf("Expected numeric 25мм token, got %+v", num)
	}
}

func TestTokenize_GluedUnitEqualsSpacedUnit(t *testing.T) {
	a := Signature("фланец 25мм ст.20")
	b := Signature("ФЛАНЕЦ  25 мм  СТ.20")
	if a != b {
		t.Errorf("Expected equal signatures, got %q vs %q", a, b)
	}
}

func TestTokenize_Lookalikes(t *testing.T) {
	// Latin C/T in "CТ.20", Latin x in dimensions
	a := Signature("Отвод 90 гр 108х6 CТ.20")
	b := Signature("отвод 90гр 108x6 ст.20")
	if a != b {
		t.Errorf("Expected lookalike variants to collapse, got %q vs %q", a, b)
	}
}

func TestTokenize_YoUnification(t *testing.T) {
	if Signature("Ёмкость") != "емкость" {
		t.Errorf("Expected ё→е, got %q", Signature("Ёмкость"))
	}
}

func TestTokenize_DecimalComma(t *testing.T) {
	tokens := Tokenize("стенка 3,5")
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %v", texts(tokens))
	}
	if !tokens[1].IsNumber || tokens[1].Value != 3.5 {
		t.Errorf("Expected numeric 3.5, got %+v", tokens[1])
	}
}

func TestTokenize_Dimensions(t *testing.T) {
	for _, raw := range []string{"57х5", "57 х 5", "57*5", "57 X 5"} {
		tokens := Tokenize(raw)
		if len(tokens) != 1 || tokens[0].Text != "57x5" {
			t.Errorf("Tokenize(%q): expected single token 57x5, got %v", raw, texts(tokens))
		}
	}
}

func TestTokenize_InchesToMillimeters(t *testing.T) {
	tokens := Tokenize(`труба 1/2"`)
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %v", texts(tokens))
	}
	got := tokens[1]
	if !got.IsNumber || got.Unit != UnitMillimeter || got.Value != 12.7 {
		t.Errorf("Expected 12.7мм for 1/2\", got %+v", got)
	}

	tokens = Tokenize(`труба 2"`)
	if tokens[1].Value != 50.8 || tokens[1].Unit != UnitMillimeter {
		t.Errorf("Expected 50.8мм for 2\", got %+v", tokens[1])
	}
}

func TestTokenize_DegreeForms(t *testing.T) {
	for _, raw := range []string{"отвод 90°", "отвод 90 гр", "отвод 90 градусов", "отвод 90град"} {
		tokens := Tokenize(raw)
		if len(tokens) != 2 {
			t.Fatalf("Tokenize(%q): expected 2 tokens, got %v", raw, texts(tokens))
		}
		got := tokens[1]
		if !got.IsNumber || got.Unit != UnitDegree || got.Value != 90 {
			t.Errorf("Tokenize(%q): expected 90гр, got %+v", raw, got)
		}
	}
}

func TestTokenize_MetersToMillimeters(t *testing.T) {
	tokens := Tokenize("труба 2 м")
	if tokens[1].Value != 2000 || tokens[1].Unit != UnitMillimeter {
		t.Errorf("Expected 2000мм, got %+v", tokens[1])
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize("   "); got != nil {
		t.Errorf("Expected nil for blank input, got %v", got)
	}
}

func TestSignature_PunctuationNoise(t *testing.T) {
	a := Signature("фланец,  ду 25; ст.20!")
	b := Signature("фланец ду 25 ст.20")
	if a != b {
		t.Errorf("Expected punctuation variants to collapse, got %q vs %q", a, b)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		25:   "25",
		3.5:  "3.5",
		12.7: "12.7",
	}
	for v, want := range cases {
		if got := FormatNumber(v); got != want {
			t.Errorf("FormatNumber(%v): expected %q, got %q", v, want, got)
		}
	}
}
