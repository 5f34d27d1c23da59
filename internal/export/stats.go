package export

import (
	"fmt"
	"strings"

	"github.com/Spok95/matbase/internal/domain/materials"
)

type MaterialCount struct {
	Name       string
	Properties int
}

type Stats struct {
	Materials        int
	Properties       int
	UniqueProperties int
	AvgPerMaterial   float64
	PerMaterial      []MaterialCount
}

func ComputeStats(all []materials.WithProperties) Stats {
	s := Stats{Materials: len(all)}
	unique := make(map[string]struct{})
	for _, m := range all {
		s.Properties += len(m.Properties)
		s.PerMaterial = append(s.PerMaterial, MaterialCount{Name: m.Name, Properties: len(m.Properties)})
		for _, p := range m.Properties {
			unique[p.Name] = struct{}{}
		}
	}
	s.UniqueProperties = len(unique)
	if s.Materials > 0 {
		s.AvgPerMaterial = float64(s.Properties) / float64(s.Materials)
	}
	return s
}

// Summary: текстовый отчёт; по материалам выводятся первые limit строк.
func (s Stats) Summary(limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Materials: %d\n", s.Materials)
	fmt.Fprintf(&b, "Properties: %d\n", s.Properties)
	fmt.Fprintf(&b, "Unique property names: %d\n", s.UniqueProperties)
	fmt.Fprintf(&b, "Average properties per material: %.2f\n", s.AvgPerMaterial)

	if len(s.PerMaterial) == 0 {
		return b.String()
	}
	b.WriteString("\nProperties per material:\n")
	for i, m := range s.PerMaterial {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "  ... and %d more\n", len(s.PerMaterial)-limit)
			break
		}
		fmt.Fprintf(&b, "  %s: %d\n", m.Name, m.Properties)
	}
	return b.String()
}
