package match

import "testing"

func TestDamerauLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ст.20", "ст.20", 0},
		{"ab", "ba", 1},    // транспозиция
		{"гост", "гст", 1}, // удаление
		{"09г2с", "09г2", 1},
		{"фланец", "", 6}, // по рунам, не по байтам
	}
	for _, c := range cases {
		if got := damerauLevenshtein(c.a, c.b); got != c.want {
			t.Errorf("damerauLevenshtein(%q, %q): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}

func TestEditSimilarity(t *testing.T) {
	if got := editSimilarity("гост 17375", "гост 17375"); got != 1 {
		t.Errorf("Expected 1 for identical strings, got %.2f", got)
	}
	if got := editSimilarity("", ""); got != 1 {
		t.Errorf("Expected 1 for two empty strings, got %.2f", got)
	}

	got := editSimilarity("исп.в", "исп.б")
	if got <= 0.5 || got >= 1 {
		t.Errorf("Expected one-rune difference to score high but below 1, got %.2f", got)
	}

	// симметричность
	if editSimilarity("abc", "xyz") != editSimilarity("xyz", "abc") {
		t.Error("Expected symmetric similarity")
	}
}
