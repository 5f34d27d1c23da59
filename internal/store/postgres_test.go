package store_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/infra/db"
	"github.com/Spok95/matbase/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgres(t *testing.T) *store.Postgres {
	t.Helper()
	dsn := os.Getenv("MATBASE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MATBASE_TEST_PG_DSN not set")
	}

	sqlDB, err := db.OpenPostgresSQL(dsn)
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()
	require.NoError(t, db.Migrate(sqlDB, db.DialectPostgres, slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)

	for _, q := range []string{`DELETE FROM materials`, `DELETE FROM models`} {
		_, err = pool.Exec(ctx, q)
		require.NoError(t, err)
	}

	s := store.NewPostgres(pool)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresSavepointAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestPostgres(t)

	err := s.InTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Savepoint(ctx, func(tx store.Tx) error {
			if err := tx.CreateMaterial(ctx, "Steel"); err != nil {
				return err
			}
			return tx.UpsertProperty(ctx, materials.Property{Material: "Steel", Name: "Density", Unit: "kg/m3", Value: 7850})
		}))
		// нарушение внешнего ключа откатывает только точку сохранения
		spErr := tx.Savepoint(ctx, func(tx store.Tx) error {
			return tx.UpsertProperty(ctx, materials.Property{Material: "Ghost", Name: "Density"})
		})
		require.Error(t, spErr)
		assert.NotErrorIs(t, spErr, store.ErrTxAborted)
		return nil
	})
	require.NoError(t, err)

	props, err := s.Properties(ctx, "Steel")
	require.NoError(t, err)
	assert.Equal(t, []materials.Property{{Material: "Steel", Name: "Density", Unit: "kg/m3", Value: 7850}}, props)

	require.NoError(t, s.CreateModel(ctx, "beam"))
	require.NoError(t, s.UpsertResult(ctx, results.Result{Model: "beam", Node: "1", CalculationType: "Normal Stress", Value: 1}))
	require.NoError(t, s.UpsertResult(ctx, results.Result{Model: "beam", Node: "1", CalculationType: "Normal Stress", Value: 2}))

	rows, err := s.Results(ctx, results.Filter{Model: "beam"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].Value)

	require.NoError(t, s.DeleteModel(ctx, "beam"))
	rows, err = s.Results(ctx, results.Filter{Model: "beam"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	n, err := s.ClearAllMaterials(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
