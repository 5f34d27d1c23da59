package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate(t *testing.T) {
	t.Run("id mismatch with isotropic marker", func(t *testing.T) {
		doc := `<MatML_Doc><Material><Name>Steel</Name>
			<PropertyData property="other"><Data>Isotropic material</Data></PropertyData></Material>
			<Metadata><PropertyDetails id="p1"><Name>Density</Name><Unit><Name>kg/m3</Name></Unit></PropertyDetails></Metadata>
		</MatML_Doc>`
		pm, err := ParseMatML(strings.NewReader(doc))
		require.NoError(t, err)

		assert.Equal(t, []ResolvedProperty{
			{Name: "Density", Unit: "kg/m3", Value: 0, Source: Unresolved},
			{Name: IsotropicProperty, Unit: "dimensionless", Value: 1, Source: Synthetic},
		}, Correlate(pm))
	})

	t.Run("name fallback in value order", func(t *testing.T) {
		pm := &ParsedMaterial{Name: "Steel"}
		pm.AddMeta("p1", "Density", "kg/m3")
		pm.AddMeta("p2", "Young's Modulus", "Pa")
		pm.AddMeta("p3", "", "")
		pm.SetValue("Density_ref", 7850)
		pm.SetValue("Density", 7900)
		pm.SetValue("Modulus", 2e11)

		got := Correlate(pm)
		assert.Equal(t, []ResolvedProperty{
			{Name: "Density", Unit: "kg/m3", Value: 7850, Source: ResolvedByName},
			{Name: "Young's Modulus", Unit: "Pa", Value: 2e11, Source: ResolvedByName},
		}, got)
	})

	t.Run("exact id wins over name", func(t *testing.T) {
		pm := &ParsedMaterial{Name: "Steel"}
		pm.AddMeta("p1", "Density", "")
		pm.SetValue("Density", 1)
		pm.SetValue("p1", 2)

		got := Correlate(pm)
		require.Len(t, got, 1)
		assert.Equal(t, 2.0, got[0].Value)
		assert.Equal(t, ResolvedByID, got[0].Source)
	})

	t.Run("repeated value id overwrites", func(t *testing.T) {
		pm := &ParsedMaterial{}
		pm.SetValue("p1", 1)
		pm.SetValue("p1", 3)
		assert.Equal(t, []PropertyValue{{ID: "p1", Value: 3}}, pm.Values)
	})

	t.Run("nil material", func(t *testing.T) {
		assert.Nil(t, Correlate(nil))
	})
}

func TestImportable(t *testing.T) {
	named := &ParsedMaterial{Name: "Steel"}
	named.SetValue("pr1", 7850)
	unnamed := &ParsedMaterial{Name: "  "}
	unnamed.SetValue("pr1", 7850)
	noValues := &ParsedMaterial{Name: "Steel"}
	isotropic := &ParsedMaterial{Name: "Steel", Isotropic: true}
	props := []ResolvedProperty{{Name: "Density"}}

	assert.True(t, Importable(named, props))
	assert.True(t, Importable(isotropic, props))
	assert.False(t, Importable(named, nil))
	assert.False(t, Importable(unnamed, props))
	assert.False(t, Importable(nil, props))
	assert.False(t, Importable(noValues, props))

	assert.Equal(t, "no material name", SkipReason(unnamed, props))
	assert.Equal(t, "no values", SkipReason(noValues, props))
	assert.Equal(t, "no properties", SkipReason(named, nil))
	assert.Empty(t, SkipReason(named, props))
}
