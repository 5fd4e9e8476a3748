// Package extract derives structured attribute sets from normalized token
// streams using an explicitly constructed, read-only domain dictionary.
package extract

import (
	"regexp"
	"strings"

	"github.com/Bersy123e/offerdoffer/internal/model"
)

// ProductType describes one coarse catalog category: its canonical name,
// the keyword stems that resolve it, and the attribute kinds that are
// meaningful for it. Entries of different product types are never compared.
type ProductType struct {
	Name  string
	Stems []string
	Kinds []model.AttributeKind
}

// Dictionary is the immutable rule registry passed into the extractor.
// Build it once via DefaultDictionary (or a custom table in tests); nothing
// mutates it afterwards.
type Dictionary struct {
	types     []ProductType
	materials map[string]string // exact token → canonical material
	alloyRe   *regexp.Regexp    // stainless/alloy grade codes
}

// NewDictionary builds a registry from explicit tables.
func NewDictionary(types []ProductType, materials map[string]string) *Dictionary {
	m := make(map[string]string, len(materials))
	for k, v := range materials {
		m[strings.ToLower(k)] = v
	}
	return &Dictionary{
		types:     types,
		materials: m,
		alloyRe:   regexp.MustCompile(`^\d{2}х\d{1,2}н\d+[\p{L}\d]*$`),
	}
}

// DefaultDictionary is the built-in pipeline-fittings domain: flanges,
// bends, pipes, reducers, caps, tees, gate valves.
func DefaultDictionary() *Dictionary {
	lengthKinds := []model.AttributeKind{
		model.KindNominalSize, model.KindWallThickness,
		model.KindMaterial, model.KindStandard,
	}
	return NewDictionary(
		[]ProductType{
			{
				Name:  "фланец",
				Stems: []string{"фланец", "фланц"},
				Kinds: []model.AttributeKind{
					model.KindNominalSize, model.KindMaterial,
					model.KindStandard, model.KindGrade, model.KindPressure,
				},
			},
			{
				Name:  "отвод",
				Stems: []string{"отвод"},
				Kinds: append([]model.AttributeKind{model.KindAngle}, lengthKinds...),
			},
			{
				Name:  "труба",
				Stems: []string{"труб"},
				Kinds: lengthKinds,
			},
			{
				Name:  "переход",
				Stems: []string{"переход"},
				Kinds: lengthKinds,
			},
			{
				Name:  "заглушка",
				Stems: []string{"заглушк"},
				Kinds: []model.AttributeKind{
					model.KindNominalSize, model.KindMaterial,
					model.KindStandard, model.KindGrade, model.KindPressure,
				},
			},
			{
				Name:  "тройник",
				Stems: []string{"тройник"},
				Kinds: lengthKinds,
			},
			{
				Name:  "задвижка",
				Stems: []string{"задвижк"},
				Kinds: []model.AttributeKind{
					model.KindNominalSize, model.KindPressure,
					model.KindMaterial, model.KindGrade, model.KindStandard,
				},
			},
			{
				Name:  "редуктор",
				Stems: []string{"редуктор"},
				Kinds: []model.AttributeKind{
					model.KindNominalSize, model.KindGrade, model.KindPressure,
				},
			},
		},
		map[string]string{
			"09г2с":       "09г2с",
			"12х18н10т":   "12х18н10т",
			"10х17н13м2т": "10х17н13м2т",
			"08х18н10":    "08х18н10",
			"20х13":       "20х13",
			"нерж":        "нерж",
		},
	)
}

// ResolveType finds the product type claimed by a token, matching keyword
// stems against the token prefix so singular and plural forms collapse
// ("фланец"/"фланцы" → фланец).
func (d *Dictionary) ResolveType(token string) (ProductType, bool) {
	for _, pt := range d.types {
		for _, stem := range pt.Stems {
			if strings.HasPrefix(token, stem) {
				return pt, true
			}
		}
	}
	return ProductType{}, false
}

// ResolveMaterial canonicalizes a single-token material reference:
// exact dictionary hits ("09г2с") at full confidence, alloy-looking codes
// by pattern at reduced confidence.
func (d *Dictionary) ResolveMaterial(token string) (canonical string, confidence float64, ok bool) {
	if canon, hit := d.materials[token]; hit {
		return canon, 1.0, true
	}
	if d.alloyRe.MatchString(token) {
		return token, 0.8, true
	}
	return "", 0, false
}
