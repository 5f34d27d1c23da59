package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/matbase/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_STORE_DRIVER", "sqlite")
	t.Setenv("APP_SQLITE_PATH", filepath.Join(dir, "cli.db"))

	matmlDir := filepath.Join(dir, "matml")
	require.NoError(t, os.Mkdir(matmlDir, 0o755))
	doc := `<MatML_Doc><Material><Name>Steel</Name>
		<PropertyData property="p1"><Data>7850</Data></PropertyData></Material>
		<Metadata><PropertyDetails id="p1"><Name>Density</Name><Unit><Name>kg/m3</Name></Unit></PropertyDetails></Metadata>
	</MatML_Doc>`
	require.NoError(t, os.WriteFile(filepath.Join(matmlDir, "steel.xml"), []byte(doc), 0o644))

	table := filepath.Join(dir, "Normal_Stress.txt")
	require.NoError(t, os.WriteFile(table, []byte("Node Stress (Pa)\n1 10\n2 20\n"), 0o644))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")

	out, err = run(t, "import", "matml", matmlDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Done: 1 imported, 0 skipped")

	out, err = run(t, "import", "results", "--model", "beam", table)
	require.NoError(t, err)
	assert.Contains(t, out, "Normal Stress [Pa], 2 written, 0 failed")

	out, err = run(t, "materials", "list", "--with-properties")
	require.NoError(t, err)
	assert.Contains(t, out, "Density = 7850 kg/m3")

	_, err = run(t, "materials", "set-property", "Steel", "Density", "7,9e3")
	require.NoError(t, err)

	csvPath := filepath.Join(dir, "steel.csv")
	_, err = run(t, "export", "material", "Steel", csvPath)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Density;7900;kg/m3")

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Materials: 1")

	out, err = run(t, "materials", "show", "Steel")
	require.NoError(t, err)
	assert.Contains(t, out, "Density")

	_, err = run(t, "materials", "show", "Ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, "models", "delete", "ghost")
	assert.Error(t, err)
}
