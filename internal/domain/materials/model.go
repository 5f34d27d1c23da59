package materials

import "strings"

// DefaultUnit подставляется, если у свойства нет единицы измерения.
const DefaultUnit = "dimensionless"

type Material struct {
	Name string
}

type Property struct {
	Material string
	Name     string
	Unit     string
	Value    float64
}

// WithProperties: материал вместе со всеми свойствами (для статистики и экспорта).
type WithProperties struct {
	Name       string
	Properties []Property
}

func NormalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return DefaultUnit
	}
	return unit
}
