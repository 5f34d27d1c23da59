package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, c.Store.Driver)
	assert.Equal(t, "matbase.db", c.SQLite.Path)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, []string{".xml", ".matml"}, c.Import.MatMLExtensions)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: dev
store:
  driver: postgres
postgres:
  dsn: postgres://localhost/matbase
http:
  addr: ":9090"
`), 0o644))

	t.Setenv("APP_HTTP_ADDR", ":7070")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, DriverPostgres, c.Store.Driver)
	assert.Equal(t, "postgres://localhost/matbase", c.Postgres.DSN)
	assert.Equal(t, ":7070", c.HTTP.Addr)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("APP_STORE_DRIVER", "postgres")
	_, err := Load("")
	require.Error(t, err)
}
