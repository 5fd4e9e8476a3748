package extract

import (
	"regexp"

	"github.com/Bersy123e/offerdoffer/internal/model"
	"github.com/Bersy123e/offerdoffer/internal/normalize"
)

// Confidence levels per rule class: exact dictionary hits are certain,
// pattern matches slightly less, positional inference is a guess.
const (
	confDictionary = 1.0
	confPattern    = 0.9
	confGrade      = 0.8
	confAngleBare  = 0.5
	confContextual = 0.4
)

// Нормализатор переводит латинские двойники в кириллицу, поэтому "PN16"
// приходит как "рн16", а "DN50" как "dн50" — шаблоны учитывают оба вида.
var (
	reDuGlued    = regexp.MustCompile(`^(?:ду|dn|dн)(\d+(?:\.\d+)?)$`)
	reDims       = regexp.MustCompile(`^(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
	reStGlued    = regexp.MustCompile(`^ст\.(\d+[\p{L}\d]*)$`)
	reGostGlued  = regexp.MustCompile(`^(гост|ту)(\d[\d\-.]*)$`)
	reGostNumber = regexp.MustCompile(`^[\d][\d\-.x]*$`)
	rePressure   = regexp.MustCompile(`^(?:ру|pn|рn|рн)(\d+(?:\.\d+)?)$`)
	reGrade      = regexp.MustCompile(`^исп\.?([\p{L}\d]{1,3})$`)
	reShortCode  = regexp.MustCompile(`^[\p{L}\d]{1,3}$`)
)

var standardWords = map[string]bool{"гост": true, "ту": true, "din": true, "iso": true}
var quantityWords = map[string]bool{"шт": true, "штук": true, "штуки": true, "компл": true}

// Extractor applies ordered domain rules to a normalized token stream.
// It holds only the read-only dictionary; Extract is safe for concurrent use.
type Extractor struct {
	dict *Dictionary
}

func NewExtractor(dict *Dictionary) *Extractor {
	return &Extractor{dict: dict}
}

// Extract produces the attribute set for a token sequence. ProductType is
// resolved first and constrains which further kinds are even considered.
// Re-running on the same tokens yields an identical result: every pass
// scans tokens in order and rule order is fixed.
func (e *Extractor) Extract(tokens []normalize.Token) *model.AttributeSet {
	set := model.NewAttributeSet()
	claimed := make([]bool, len(tokens))

	typeIdx := -1
	var schema []model.AttributeKind
	for i, t := range tokens {
		if t.IsNumber {
			continue
		}
		if pt, ok := e.dict.ResolveType(t.Text); ok {
			set.Attrs[model.KindProductType] = ruleAttr(model.KindProductType, model.CategoricalValue(pt.Name), confDictionary)
			claimed[i] = true
			typeIdx = i
			schema = pt.Kinds
			break
		}
	}
	if typeIdx < 0 {
		// Unparsable: no schema to resolve against, everything is residue.
		set.Residue = residue(tokens, claimed)
		return set
	}

	applicable := make(map[model.AttributeKind]bool, len(schema))
	for _, k := range schema {
		applicable[k] = true
	}

	e.passNominalSize(tokens, claimed, set, applicable)
	e.passDims(tokens, claimed, set, applicable)
	e.passWall(tokens, claimed, set, applicable)
	e.passAngle(tokens, claimed, set, applicable)
	e.passMaterial(tokens, claimed, set, applicable)
	e.passStandard(tokens, claimed, set, applicable)
	e.passGrade(tokens, claimed, set, applicable)
	e.passPressure(tokens, claimed, set, applicable)

	// Positional inference runs last so explicit units and patterns win.
	e.inferAngle(tokens, claimed, set, applicable)
	e.inferNominalSize(tokens, claimed, set, applicable, typeIdx)

	set.Residue = residue(tokens, claimed)
	return set
}

// ParseValue interprets a single attribute value string (e.g. supplied by
// the external assist) into canonical form for the given kind.
func (e *Extractor) ParseValue(kind model.AttributeKind, raw string) (model.AttributeValue, bool) {
	tokens := normalize.Tokenize(raw)
	if len(tokens) == 0 {
		return model.AttributeValue{}, false
	}
	probe := model.NewAttributeSet()
	claimed := make([]bool, len(tokens))
	all := map[model.AttributeKind]bool{kind: true}

	switch kind {
	case model.KindProductType:
		if pt, ok := e.dict.ResolveType(tokens[0].Text); ok {
			return model.CategoricalValue(pt.Name), true
		}
		return model.AttributeValue{}, false
	case model.KindNominalSize:
		e.passNominalSize(tokens, claimed, probe, all)
		if !probe.Has(kind) && tokens[0].IsNumber {
			return model.NumericValue(tokens[0].Value), true
		}
	case model.KindWallThickness:
		e.passWall(tokens, claimed, probe, all)
		if !probe.Has(kind) && tokens[0].IsNumber {
			return model.NumericValue(tokens[0].Value), true
		}
	case model.KindAngle:
		e.passAngle(tokens, claimed, probe, all)
		if !probe.Has(kind) && tokens[0].IsNumber {
			return model.NumericValue(tokens[0].Value), true
		}
	case model.KindMaterial:
		e.passMaterial(tokens, claimed, probe, all)
	case model.KindStandard:
		e.passStandard(tokens, claimed, probe, all)
	case model.KindGrade:
		e.passGrade(tokens, claimed, probe, all)
	case model.KindPressure:
		e.passPressure(tokens, claimed, probe, all)
		if !probe.Has(kind) && tokens[0].IsNumber {
			return model.NumericValue(tokens[0].Value), true
		}
	}
	if a, ok := probe.Get(kind); ok {
		return a.Value, true
	}
	// Fall back to the joined normalized text as a categorical value.
	return model.CategoricalValue(normalize.Signature(raw)), true
}

func (e *Extractor) passNominalSize(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindNominalSize] || set.Has(model.KindNominalSize) {
		return
	}
	for i, t := range tokens {
		if claimed[i] {
			continue
		}
		if m := reDuGlued.FindStringSubmatch(t.Text); m != nil {
			set.Attrs[model.KindNominalSize] = ruleAttr(model.KindNominalSize, numericFromText(m[1]), confDictionary)
			claimed[i] = true
			return
		}
		if (t.Text == "ду" || t.Text == "dn" || t.Text == "dн") && nextNumber(tokens, claimed, i) >= 0 {
			j := nextNumber(tokens, claimed, i)
			set.Attrs[model.KindNominalSize] = ruleAttr(model.KindNominalSize, model.NumericValue(tokens[j].Value), confDictionary)
			claimed[i], claimed[j] = true, true
			return
		}
		if t.IsNumber && t.Unit == normalize.UnitMillimeter {
			set.Attrs[model.KindNominalSize] = ruleAttr(model.KindNominalSize, model.NumericValue(t.Value), confDictionary)
			claimed[i] = true
			return
		}
	}
}

// passDims splits DxS tokens ("57x5") into diameter and wall thickness.
func (e *Extractor) passDims(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	for i, t := range tokens {
		if claimed[i] || t.IsNumber {
			continue
		}
		m := reDims.FindStringSubmatch(t.Text)
		if m == nil {
			continue
		}
		used := false
		if applicable[model.KindNominalSize] && !set.Has(model.KindNominalSize) {
			set.Attrs[model.KindNominalSize] = ruleAttr(model.KindNominalSize, numericFromText(m[1]), confPattern)
			used = true
		}
		if applicable[model.KindWallThickness] && !set.Has(model.KindWallThickness) {
			set.Attrs[model.KindWallThickness] = ruleAttr(model.KindWallThickness, numericFromText(m[2]), confPattern)
			used = true
		}
		if used {
			claimed[i] = true
			return
		}
	}
}

func (e *Extractor) passWall(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindWallThickness] || set.Has(model.KindWallThickness) {
		return
	}
	for i, t := range tokens {
		if claimed[i] || t.Text != "стенка" {
			continue
		}
		if j := nextNumber(tokens, claimed, i); j >= 0 {
			set.Attrs[model.KindWallThickness] = ruleAttr(model.KindWallThickness, model.NumericValue(tokens[j].Value), confPattern)
			claimed[i], claimed[j] = true, true
			return
		}
	}
}

func (e *Extractor) passAngle(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindAngle] || set.Has(model.KindAngle) {
		return
	}
	for i, t := range tokens {
		if claimed[i] {
			continue
		}
		if t.IsNumber && t.Unit == normalize.UnitDegree {
			set.Attrs[model.KindAngle] = ruleAttr(model.KindAngle, model.NumericValue(t.Value), confDictionary)
			claimed[i] = true
			return
		}
	}
}

func (e *Extractor) passMaterial(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindMaterial] || set.Has(model.KindMaterial) {
		return
	}
	for i, t := range tokens {
		if claimed[i] || t.IsNumber {
			continue
		}
		// "ст.20" уже склеен нормализатором в один токен
		if m := reStGlued.FindStringSubmatch(t.Text); m != nil {
			set.Attrs[model.KindMaterial] = ruleAttr(model.KindMaterial, model.CategoricalValue("ст."+m[1]), confDictionary)
			claimed[i] = true
			return
		}
		// "сталь 20" / "ст 20" → ст.20
		if t.Text == "сталь" || t.Text == "ст" {
			if j := nextNumber(tokens, claimed, i); j >= 0 {
				set.Attrs[model.KindMaterial] = ruleAttr(model.KindMaterial, model.CategoricalValue("ст."+normalize.FormatNumber(tokens[j].Value)), confDictionary)
				claimed[i], claimed[j] = true, true
				return
			}
			if i+1 < len(tokens) && !claimed[i+1] {
				if canon, conf, ok := e.dict.ResolveMaterial(tokens[i+1].Text); ok {
					set.Attrs[model.KindMaterial] = ruleAttr(model.KindMaterial, model.CategoricalValue(canon), conf)
					claimed[i], claimed[i+1] = true, true
					return
				}
			}
			continue
		}
		if canon, conf, ok := e.dict.ResolveMaterial(t.Text); ok {
			set.Attrs[model.KindMaterial] = ruleAttr(model.KindMaterial, model.CategoricalValue(canon), conf)
			claimed[i] = true
			return
		}
	}
}

func (e *Extractor) passStandard(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindStandard] || set.Has(model.KindStandard) {
		return
	}
	for i, t := range tokens {
		if claimed[i] || t.IsNumber {
			continue
		}
		if m := reGostGlued.FindStringSubmatch(t.Text); m != nil {
			set.Attrs[model.KindStandard] = ruleAttr(model.KindStandard, model.CategoricalValue(m[1]+" "+m[2]), confPattern)
			claimed[i] = true
			return
		}
		if standardWords[t.Text] && i+1 < len(tokens) && !claimed[i+1] && reGostNumber.MatchString(tokens[i+1].Text) {
			set.Attrs[model.KindStandard] = ruleAttr(model.KindStandard, model.CategoricalValue(t.Text+" "+tokens[i+1].Text), confPattern)
			claimed[i], claimed[i+1] = true, true
			return
		}
	}
}

func (e *Extractor) passGrade(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindGrade] || set.Has(model.KindGrade) {
		return
	}
	for i, t := range tokens {
		if claimed[i] || t.IsNumber {
			continue
		}
		if m := reGrade.FindStringSubmatch(t.Text); m != nil {
			set.Attrs[model.KindGrade] = ruleAttr(model.KindGrade, model.CategoricalValue("исп."+m[1]), confGrade)
			claimed[i] = true
			return
		}
		if (t.Text == "исп" || t.Text == "тип") && i+1 < len(tokens) && !claimed[i+1] &&
			!tokens[i+1].IsNumber && reShortCode.MatchString(tokens[i+1].Text) {
			prefix := "исп."
			if t.Text == "тип" {
				prefix = "тип "
			}
			set.Attrs[model.KindGrade] = ruleAttr(model.KindGrade, model.CategoricalValue(prefix+tokens[i+1].Text), confGrade)
			claimed[i], claimed[i+1] = true, true
			return
		}
	}
}

func (e *Extractor) passPressure(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindPressure] || set.Has(model.KindPressure) {
		return
	}
	for i, t := range tokens {
		if claimed[i] {
			continue
		}
		if m := rePressure.FindStringSubmatch(t.Text); m != nil {
			set.Attrs[model.KindPressure] = ruleAttr(model.KindPressure, numericFromText(m[1]), confDictionary)
			claimed[i] = true
			return
		}
		if (t.Text == "ру" || t.Text == "pn" || t.Text == "рn" || t.Text == "рн") && nextNumber(tokens, claimed, i) >= 0 {
			j := nextNumber(tokens, claimed, i)
			set.Attrs[model.KindPressure] = ruleAttr(model.KindPressure, model.NumericValue(tokens[j].Value), confDictionary)
			claimed[i], claimed[j] = true, true
			return
		}
	}
}

// inferAngle claims a bare 45/90/180 for bends when no explicit degree
// token was present ("отвод 90 108x6").
func (e *Extractor) inferAngle(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool) {
	if !applicable[model.KindAngle] || set.Has(model.KindAngle) {
		return
	}
	for i, t := range tokens {
		if claimed[i] || !t.IsNumber || t.Unit != normalize.UnitNone {
			continue
		}
		if t.Value == 45 || t.Value == 90 || t.Value == 180 {
			set.Attrs[model.KindAngle] = ruleAttr(model.KindAngle, model.NumericValue(t.Value), confAngleBare)
			claimed[i] = true
			return
		}
	}
}

// inferNominalSize defaults the first unclaimed bare number after the
// product-type keyword to the nominal size.
func (e *Extractor) inferNominalSize(tokens []normalize.Token, claimed []bool, set *model.AttributeSet, applicable map[model.AttributeKind]bool, typeIdx int) {
	if !applicable[model.KindNominalSize] || set.Has(model.KindNominalSize) {
		return
	}
	for i := typeIdx + 1; i < len(tokens); i++ {
		t := tokens[i]
		if claimed[i] || !t.IsNumber || t.Unit != normalize.UnitNone {
			continue
		}
		// число перед "шт"/"компл" — количество, не размер
		if i+1 < len(tokens) && quantityWords[tokens[i+1].Text] {
			continue
		}
		set.Attrs[model.KindNominalSize] = ruleAttr(model.KindNominalSize, model.NumericValue(t.Value), confContextual)
		claimed[i] = true
		return
	}
}

func ruleAttr(kind model.AttributeKind, v model.AttributeValue, conf float64) model.Attribute {
	return model.Attribute{Kind: kind, Value: v, Confidence: conf, Source: model.SourceRule}
}

func numericFromText(s string) model.AttributeValue {
	t := normalize.Tokenize(s)
	if len(t) == 1 && t[0].IsNumber {
		return model.NumericValue(t[0].Value)
	}
	return model.CategoricalValue(s)
}

func nextNumber(tokens []normalize.Token, claimed []bool, i int) int {
	j := i + 1
	if j < len(tokens) && !claimed[j] && tokens[j].IsNumber && tokens[j].Unit == normalize.UnitNone {
		return j
	}
	return -1
}

func residue(tokens []normalize.Token, claimed []bool) []string {
	var out []string
	for i, t := range tokens {
		if !claimed[i] && !quantityWords[t.Text] {
			out = append(out, t.Text)
		}
	}
	return out
}
