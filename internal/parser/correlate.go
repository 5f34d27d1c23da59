package parser

import (
	"strings"

	"github.com/Spok95/matbase/internal/domain/materials"
)

type Resolution int

const (
	ResolvedByID Resolution = iota
	ResolvedByName
	Unresolved
	Synthetic
)

func (r Resolution) String() string {
	switch r {
	case ResolvedByID:
		return "id"
	case ResolvedByName:
		return "name"
	case Unresolved:
		return "unresolved"
	case Synthetic:
		return "synthetic"
	}
	return "unknown"
}

type ResolvedProperty struct {
	Name   string
	Unit   string
	Value  float64
	Source Resolution
}

const IsotropicProperty = "Isotropic"

// Correlate сопоставляет описания свойств (PropertyDetails) со значениями
// (PropertyData). Порядок: точное совпадение id, затем поиск по вхождению
// имени в ключ значения (или ключа в имя), иначе 0. Свойство с именем
// никогда не теряется, даже без значения.
func Correlate(pm *ParsedMaterial) []ResolvedProperty {
	if pm == nil {
		return nil
	}

	out := make([]ResolvedProperty, 0, len(pm.Meta)+1)
	for _, meta := range pm.Meta {
		if meta.Name == "" {
			continue
		}
		rp := ResolvedProperty{Name: meta.Name, Unit: meta.Unit, Source: Unresolved}
		if v, ok := pm.Value(meta.ID); ok {
			rp.Value, rp.Source = v, ResolvedByID
		} else if v, ok := pm.valueByName(meta.Name); ok {
			rp.Value, rp.Source = v, ResolvedByName
		}
		out = append(out, rp)
	}

	if pm.Isotropic {
		out = append(out, ResolvedProperty{
			Name:   IsotropicProperty,
			Unit:   materials.DefaultUnit,
			Value:  1,
			Source: Synthetic,
		})
	}
	return out
}

func (m *ParsedMaterial) valueByName(name string) (float64, bool) {
	for _, v := range m.Values {
		if strings.Contains(v.ID, name) || strings.Contains(name, v.ID) {
			return v.Value, true
		}
	}
	return 0, false
}

// Importable: у материала есть имя, хотя бы одно числовое значение (или признак
// изотропности) и хотя бы одно свойство для записи.
func Importable(pm *ParsedMaterial, props []ResolvedProperty) bool {
	return SkipReason(pm, props) == ""
}

// SkipReason объясняет, почему материал нельзя импортировать; "" для пригодного.
func SkipReason(pm *ParsedMaterial, props []ResolvedProperty) string {
	switch {
	case pm == nil || strings.TrimSpace(pm.Name) == "":
		return "no material name"
	case len(pm.Values) == 0 && !pm.Isotropic:
		return "no values"
	case len(props) == 0:
		return "no properties"
	}
	return ""
}
