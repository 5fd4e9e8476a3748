// Package normalize canonicalizes raw product text: case folding,
// Latin/Cyrillic lookalike unification, numeric parsing and unit
// canonicalization. Pure functions, no state.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is a canonical measurement unit attached to a numeric token.
// Lengths are always millimeters, angles always degrees.
type Unit string

const (
	UnitNone       Unit = ""
	UnitMillimeter Unit = "мм"
	UnitDegree     Unit = "гр"
)

// Token is one normalized token. Numeric tokens carry a parsed magnitude
// and, when a recognized unit symbol adjoined the number, a canonical unit.
// A number without a resolvable unit is emitted dimensionless and left for
// the extractor to interpret in context.
type Token struct {
	Text     string  // canonical text form
	Value    float64 // magnitude, canonical unit
	Unit     Unit
	IsNumber bool
}

// Латиница → кириллица, визуальные двойники (как в прайсах из 1С).
var lookalikes = map[rune]rune{
	'A': 'а', 'B': 'в', 'C': 'с', 'E': 'е', 'H': 'н', 'K': 'к', 'M': 'м',
	'O': 'о', 'P': 'р', 'T': 'т', 'X': 'х', 'Y': 'у',
	'a': 'а', 'c': 'с', 'e': 'е', 'o': 'о', 'p': 'р', 'y': 'у',
}

var (
	// 0,5 → 0.5 (до чистки пунктуации)
	decComma = regexp.MustCompile(`(\d),(\d)`)

	// Размеры "57х5", "57 * 5", "108 X 6" → единый токен "57x5"
	reDims = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xх*×]\s*(\d+(?:\.\d+)?)`)

	// Разрешаем буквы/цифры/пробелы и символы, живущие внутри токенов:
	// "ст.20", "исп.в", "17375-2001", "1/2"", "90°"
	rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s.\-/"°]+`)

	reNumber   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	reNumUnit  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(\p{L}+|["°])$`)
	reFraction = regexp.MustCompile(`^(\d+)/(\d+)"$`)
	reInch     = regexp.MustCompile(`^(\d+(?:\.\d+)?)"$`)
)

// unitTable maps recognized unit symbols to canonical unit and the factor
// converting the source magnitude into it.
var unitTable = map[string]struct {
	unit   Unit
	factor float64
}{
	"мм":       {UnitMillimeter, 1},
	"см":       {UnitMillimeter, 10},
	"м":        {UnitMillimeter, 1000},
	"дюйм":     {UnitMillimeter, 25.4},
	"дюйма":    {UnitMillimeter, 25.4},
	"дюймов":   {UnitMillimeter, 25.4},
	`"`:        {UnitMillimeter, 25.4},
	"гр":       {UnitDegree, 1},
	"град":     {UnitDegree, 1},
	"градус":   {UnitDegree, 1},
	"градуса":  {UnitDegree, 1},
	"градусов": {UnitDegree, 1},
	"°":        {UnitDegree, 1},
}

// Tokenize turns raw text into normalized tokens.
func Tokenize(s string) []Token {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	out := unifyRunes(s)
	out = strings.ToLower(out)
	out = decComma.ReplaceAllString(out, "$1.$2")
	out = reDims.ReplaceAllString(out, "${1}x${2}")
	out = rePunct.ReplaceAllString(out, " ")

	fields := strings.Fields(out)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".-/")
		if f == "" {
			continue
		}
		tokens = append(tokens, classify(f))
	}
	return attachUnits(tokens)
}

// Signature is the canonical cache-key form of raw text: tokenized and
// joined with single spaces, so whitespace and punctuation variants of the
// same request collapse to one key.
func Signature(raw string) string {
	tokens := Tokenize(raw)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// FormatNumber renders a canonical magnitude without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// unifyRunes: ё→е, латинские двойники → кириллица.
func unifyRunes(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case 'ё':
			r = 'е'
		case 'Ё':
			r = 'Е'
		default:
			if rr, ok := lookalikes[r]; ok {
				r = rr
			}
		}
		b = append(b, r)
	}
	return string(b)
}

func classify(f string) Token {
	if reNumber.MatchString(f) {
		v, _ := strconv.ParseFloat(f, 64)
		return Token{Text: FormatNumber(v), Value: v, IsNumber: true}
	}
	if m := reFraction.FindStringSubmatch(f); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den != 0 {
			return numUnit(num/den*25.4, UnitMillimeter)
		}
	}
	if m := reInch.FindStringSubmatch(f); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return numUnit(v*25.4, UnitMillimeter)
	}
	if m := reNumUnit.FindStringSubmatch(f); m != nil {
		if u, ok := unitTable[m[2]]; ok {
			v, _ := strconv.ParseFloat(m[1], 64)
			return numUnit(v*u.factor, u.unit)
		}
		// нераспознанная единица ("ру16", "90с") — оставляем словом
	}
	return Token{Text: f}
}

// attachUnits merges a dimensionless number with a following standalone
// unit token: ["25" "мм"] → ["25мм"].
func attachUnits(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.IsNumber && t.Unit == UnitNone && i+1 < len(tokens) {
			if u, ok := unitTable[tokens[i+1].Text]; ok {
				out = append(out, numUnit(t.Value*u.factor, u.unit))
				i++
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func numUnit(v float64, u Unit) Token {
	return Token{
		Text:     FormatNumber(v) + string(u),
		Value:    v,
		Unit:     u,
		IsNumber: true,
	}
}
