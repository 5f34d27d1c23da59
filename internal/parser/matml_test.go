package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const steelDoc = `<?xml version="1.0" encoding="UTF-8"?>
<MatML_Doc>
  <Material>
    <BulkDetails>
      <Name>Structural Steel</Name>
      <PropertyData property="pr1">
        <Data format="float">7850</Data>
        <ParameterValue parameter="pa1" format="float">
          <Data>22</Data>
        </ParameterValue>
      </PropertyData>
      <PropertyData property="pr2">
        <Data format="string">Isotropic</Data>
      </PropertyData>
      <PropertyData property="pr3">
        <Data format="float">1,5</Data>
      </PropertyData>
    </BulkDetails>
  </Material>
  <Metadata>
    <PropertyDetails id="pr1">
      <Name>Density</Name>
      <Units>
        <Unit><Name>kg</Name></Unit>
        <Unit power="-3"><Name>m</Name></Unit>
      </Units>
    </PropertyDetails>
    <PropertyDetails id="pr2">
      <Name>Elasticity</Name>
    </PropertyDetails>
    <ParameterDetails id="pa1">
      <Name>Temperature</Name>
    </ParameterDetails>
  </Metadata>
</MatML_Doc>`

func TestParseMatML(t *testing.T) {
	pm, err := ParseMatML(strings.NewReader(steelDoc))
	require.NoError(t, err)

	assert.Equal(t, "Structural Steel", pm.Name)
	assert.True(t, pm.Isotropic)
	assert.Equal(t, []PropertyMeta{
		{ID: "pr1", Name: "Density", Unit: "kg·m^-3"},
		{ID: "pr2", Name: "Elasticity"},
	}, pm.Meta)

	// значение параметра (температура) и нечисловой текст не попадают в значения
	assert.Equal(t, []PropertyValue{{ID: "pr1", Value: 7850}}, pm.Values)
}

func TestParseMatMLSingleUnit(t *testing.T) {
	doc := `<MatML_Doc><Material><Name>Steel</Name>
		<PropertyData property="p1"><Data>7850</Data></PropertyData></Material>
		<Metadata><PropertyDetails id="p1"><Name>Density</Name><Unit><Name>kg/m3</Name></Unit></PropertyDetails></Metadata>
	</MatML_Doc>`

	pm, err := ParseMatML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Steel", pm.Name)
	assert.False(t, pm.Isotropic)

	assert.Equal(t, []ResolvedProperty{
		{Name: "Density", Unit: "kg/m3", Value: 7850, Source: ResolvedByID},
	}, Correlate(pm))
}

func TestParseMatMLNameUnderRoot(t *testing.T) {
	doc := `<MatML_Doc><Name>Fallback Alloy</Name><Material><PropertyData property="p1"><Data>1.5e3</Data></PropertyData></Material></MatML_Doc>`

	pm, err := ParseMatML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Fallback Alloy", pm.Name)

	v, ok := pm.Value("p1")
	assert.True(t, ok)
	assert.Equal(t, 1500.0, v)
}

func TestParseMatMLMalformed(t *testing.T) {
	doc := `<MatML_Doc><Material><BulkDetails><Name>Broken</Name>
		<PropertyData property="p1"><Data>1.5</Data></PropertyData>
		<PropertyData property="p2"><Data>2.5</Broken>`

	pm, err := ParseMatML(strings.NewReader(doc))
	require.Error(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, "Broken", pm.Name)
	assert.Equal(t, []PropertyValue{{ID: "p1", Value: 1.5}}, pm.Values)
}

func TestParseMatMLLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<MatML_Doc><Material><Name>Acier tremp\xe9</Name></Material></MatML_Doc>"

	pm, err := ParseMatML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Acier trempé", pm.Name)
}

func TestParseMatMLEmpty(t *testing.T) {
	pm, err := ParseMatML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, pm.Name)
	assert.False(t, Importable(pm, Correlate(pm)))
}
