package parser

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseResultTable(t *testing.T) {
	input := strings.Join([]string{
		"Node Number\tNormal Stress (MPa)",
		"1\t1,23e-4",
		"2 12.5e 3",
		"3 7.",
		"4",
		"# comment",
		"5 abc",
		"",
		"2 8",
	}, "\n")

	table, err := ParseResultTable(strings.NewReader(input), "Normal_Stress_1.txt")
	require.NoError(t, err)

	assert.Equal(t, "Normal Stress", table.CalculationType)
	assert.Equal(t, "MPa", table.Unit)
	assert.Equal(t, []NodeValue{
		{Node: "1", Value: 1.23e-4},
		{Node: "2", Value: 8},
		{Node: "3", Value: 7},
		{Node: "4", Value: 0},
		{Node: "5", Value: 0},
	}, table.Values)

	require.Len(t, table.Diagnostics, 1)
	assert.Equal(t, 7, table.Diagnostics[0].Line)
	assert.Contains(t, table.Diagnostics[0].String(), "line 7")

	v, ok := table.Value("2")
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)
	_, ok = table.Value("99")
	assert.False(t, ok)
}

func TestParseResultTableSplitExponent(t *testing.T) {
	table, err := ParseResultTable(strings.NewReader("Node Value\n1 12.5e 3\n2 12.5 e3\n3 1,5 e -3\n"), "x.txt")
	require.NoError(t, err)
	assert.Equal(t, []NodeValue{
		{Node: "1", Value: 1.25e4},
		{Node: "2", Value: 1.25e4},
		{Node: "3", Value: 0.0015},
	}, table.Values)
}

func TestParseResultTableOverflow(t *testing.T) {
	table, err := ParseResultTable(strings.NewReader("Node Value\n1 1\n2 1e400\n"), "x.txt")
	require.NoError(t, err)
	assert.Equal(t, []NodeValue{{Node: "1", Value: 1}, {Node: "2", Value: 0}}, table.Values)
	require.Len(t, table.Diagnostics, 1)
	assert.Contains(t, table.Diagnostics[0].String(), "stored as 0")
}

func TestParseResultTableNoData(t *testing.T) {
	table, err := ParseResultTable(strings.NewReader("\ufeffStress (Pa)\n# nothing here\n\n"), "stress.txt")
	require.ErrorIs(t, err, ErrNoData)
	require.NotNil(t, table)
	assert.Equal(t, "Pa", table.Unit)
	assert.Equal(t, "Stress (Pa)", table.Header)
	assert.Empty(t, table.Values)
}

func TestParseResultFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ParseResultFile(filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoData)
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "total_deformation.xlsx")

		f := excelize.NewFile()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Node"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Total Deformation (mm)"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "1"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", "0.5"))
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "2"))
		require.NoError(t, f.SetCellValue("Sheet1", "B3", "1,5e-3"))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		table, err := ParseResultFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Total Deformation", table.CalculationType)
		assert.Equal(t, "mm", table.Unit)
		assert.Equal(t, []NodeValue{{Node: "1", Value: 0.5}, {Node: "2", Value: 0.0015}}, table.Values)
	})
}
