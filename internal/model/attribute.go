package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AttributeKind identifies a technical characteristic extracted from a
// product name or a client request.
type AttributeKind string

const (
	KindProductType   AttributeKind = "product_type"   // фланец, отвод, труба, ...
	KindNominalSize   AttributeKind = "nominal_size"   // Ду / diameter, canonical mm
	KindWallThickness AttributeKind = "wall_thickness" // S in DxS notation, canonical mm
	KindAngle         AttributeKind = "angle"          // degrees (отвод 90)
	KindMaterial      AttributeKind = "material"       // ст.20, 09Г2С, 12Х18Н10Т
	KindStandard      AttributeKind = "standard"       // ГОСТ 17375-2001, ТУ, DIN
	KindGrade         AttributeKind = "grade"          // исп.В, тип Б
	KindPressure      AttributeKind = "pressure"       // Ру16 / PN16 class number
)

// AllKinds lists every attribute kind in a fixed resolution order.
// Extraction and canonical-text reconstruction both follow this order,
// which keeps re-extraction deterministic.
var AllKinds = []AttributeKind{
	KindProductType,
	KindNominalSize,
	KindWallThickness,
	KindAngle,
	KindMaterial,
	KindStandard,
	KindGrade,
	KindPressure,
}

// AttributeSource records which pass produced an attribute.
type AttributeSource string

const (
	SourceRule   AttributeSource = "rule"   // dictionary / pattern / contextual inference
	SourceAssist AttributeSource = "assist" // external natural-language assist
)

// AttributeValue is a typed attribute value. Numeric values are always
// stored in canonical units: lengths in millimeters, angles in degrees,
// pressure as a dimensionless class number (Ру16 == PN16 == 16).
type AttributeValue struct {
	Text      string  `json:"text"`              // canonical text form
	Numeric   float64 `json:"numeric,omitempty"` // canonical magnitude when IsNumeric
	IsNumeric bool    `json:"is_numeric"`
}

// NumericValue builds a numeric attribute value with its canonical text form.
func NumericValue(v float64) AttributeValue {
	return AttributeValue{
		Text:      strconv.FormatFloat(v, 'f', -1, 64),
		Numeric:   v,
		IsNumeric: true,
	}
}

// CategoricalValue builds a categorical attribute value.
func CategoricalValue(s string) AttributeValue {
	return AttributeValue{Text: s}
}

// Attribute is a single extracted characteristic plus the confidence of
// its extraction, in [0,1].
type Attribute struct {
	Kind       AttributeKind   `json:"kind"`
	Value      AttributeValue  `json:"value"`
	Confidence float64         `json:"confidence"`
	Source     AttributeSource `json:"source"`
}

// AttributeSet is the structured description derived from one source text.
// It is built once by the extractor (or the query interpreter's merge pass)
// and never mutated afterwards.
type AttributeSet struct {
	Attrs   map[AttributeKind]Attribute `json:"attrs"`
	Residue []string                    `json:"residue,omitempty"` // tokens no rule claimed
}

// NewAttributeSet creates an empty attribute set.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{Attrs: make(map[AttributeKind]Attribute)}
}

// Get returns the attribute for kind, if present.
func (s *AttributeSet) Get(kind AttributeKind) (Attribute, bool) {
	a, ok := s.Attrs[kind]
	return a, ok
}

// Has reports whether kind was extracted.
func (s *AttributeSet) Has(kind AttributeKind) bool {
	_, ok := s.Attrs[kind]
	return ok
}

// ProductType returns the resolved product type text, or "" when the set
// is unparsable.
func (s *AttributeSet) ProductType() string {
	if a, ok := s.Attrs[KindProductType]; ok {
		return a.Value.Text
	}
	return ""
}

// Kinds returns the extracted kinds in the fixed AllKinds order.
func (s *AttributeSet) Kinds() []AttributeKind {
	out := make([]AttributeKind, 0, len(s.Attrs))
	for _, k := range AllKinds {
		if _, ok := s.Attrs[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// MeanConfidence is the average confidence over extracted attributes.
// An empty set has zero confidence.
func (s *AttributeSet) MeanConfidence() float64 {
	if len(s.Attrs) == 0 {
		return 0
	}
	var sum float64
	for _, a := range s.Attrs {
		sum += a.Confidence
	}
	return sum / float64(len(s.Attrs))
}

// CanonicalText reconstructs a deterministic text form of the set:
// attribute values in AllKinds order followed by sorted residue tokens.
// Re-extracting from this text yields the same attribute set.
func (s *AttributeSet) CanonicalText() string {
	parts := make([]string, 0, len(s.Attrs)+len(s.Residue))
	for _, k := range AllKinds {
		a, ok := s.Attrs[k]
		if !ok {
			continue
		}
		switch k {
		case KindNominalSize:
			parts = append(parts, "ду "+a.Value.Text)
		case KindWallThickness:
			parts = append(parts, "стенка "+a.Value.Text)
		case KindAngle:
			parts = append(parts, a.Value.Text+" гр")
		case KindPressure:
			parts = append(parts, "ру"+a.Value.Text)
		default:
			parts = append(parts, a.Value.Text)
		}
	}
	residue := append([]string(nil), s.Residue...)
	sort.Strings(residue)
	parts = append(parts, residue...)
	return strings.Join(parts, " ")
}

func (s *AttributeSet) String() string {
	var b strings.Builder
	for i, k := range s.Kinds() {
		a := s.Attrs[k]
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s (%.2f)", k, a.Value.Text, a.Confidence)
	}
	return b.String()
}
