package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCalculationType(t *testing.T) {
	tests := map[string]string{
		"Normal_Stress_1.txt":           "Normal Stress",
		"directional_deformation_Y.csv": "Directional Deformation Y",
		"Directional Deformation.txt":   "Directional Deformation",
		"shear_stress_xy.txt":           "Shear Stress",
		"total-deformation.txt":         "Total Deformation",
		"Equivalent_Stress.txt":         "Stress",
		"nodal_displacement.txt":        "Deformation",
		"/tmp/run/elastic strain.txt":   "Strain",
		"reaction force.csv":            "Force",
		"random_name.txt":               "random name",
		"my-export_2.dat":               "my export 2",
	}
	for file, want := range tests {
		t.Run(file, func(t *testing.T) {
			assert.Equal(t, want, DetectCalculationType(file))
		})
	}
}

func TestDetectUnit(t *testing.T) {
	tests := map[string]string{
		"Value (MPa)":               "MPa",
		"Node\tStress (Pa) (extra)": "Pa",
		"Stress pascal":             "Pa",
		"Displacement mm":           "mm",
		"Strain m/m":                "m/m",
		"Force newton":              "N",
		"xyz":                       "",
		"":                          "",
	}
	for header, want := range tests {
		t.Run(header, func(t *testing.T) {
			assert.Equal(t, want, DetectUnit(header))
		})
	}
}
