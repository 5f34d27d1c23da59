// Package storetest поднимает временное хранилище SQLite со схемой для тестов.
package storetest

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Spok95/matbase/internal/infra/db"
	"github.com/Spok95/matbase/internal/store"
	"github.com/stretchr/testify/require"
)

func NewSQLite(t testing.TB) *store.SQLite {
	t.Helper()

	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "matbase.db"))
	require.NoError(t, err)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, db.Migrate(sqlDB, db.DialectSQLite, quiet))

	s := store.NewSQLite(sqlDB)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
