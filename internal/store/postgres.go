package store

import (
	"context"
	"fmt"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres: хранилище поверх pgxpool; запросы живут в доменных репозиториях.
type Postgres struct {
	pgQuerier
	pool *pgxpool.Pool
}

var (
	_ Store = (*Postgres)(nil)
	_ Tx    = (*pgTx)(nil)
)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pgQuerier: newPgQuerier(pool), pool: pool}
}

func (s *Postgres) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{pgQuerier: newPgQuerier(tx), tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	pgQuerier
	tx pgx.Tx
}

// Savepoint: в pgx вложенный Begin создаёт SAVEPOINT.
func (t *pgTx) Savepoint(ctx context.Context, fn func(tx Tx) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w: %w", ErrTxAborted, err)
	}

	if err := fn(&pgTx{pgQuerier: newPgQuerier(sp), tx: sp}); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w: %w", ErrTxAborted, rbErr)
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w: %w", ErrTxAborted, err)
	}
	return nil
}

type pgQuerier struct {
	mats *materials.Repo
	res  *results.Repo
}

func newPgQuerier(conn db.DBTX) pgQuerier {
	return pgQuerier{mats: materials.NewRepo(conn), res: results.NewRepo(conn)}
}

func (q pgQuerier) CreateMaterial(ctx context.Context, name string) error {
	return q.mats.Create(ctx, name)
}

func (q pgQuerier) DeleteMaterial(ctx context.Context, name string) error {
	return notFound(q.mats.Delete(ctx, name))
}

func (q pgQuerier) ListMaterials(ctx context.Context) ([]string, error) {
	return q.mats.List(ctx)
}

func (q pgQuerier) SearchMaterials(ctx context.Context, s string) ([]string, error) {
	return q.mats.SearchByName(ctx, s)
}

func (q pgQuerier) ClearAllMaterials(ctx context.Context) (int64, error) {
	return q.mats.ClearAll(ctx)
}

func (q pgQuerier) UpsertProperty(ctx context.Context, p materials.Property) error {
	return q.mats.UpsertProperty(ctx, p)
}

func (q pgQuerier) UpdateProperty(ctx context.Context, material, property string, value float64) error {
	return notFound(q.mats.UpdateProperty(ctx, material, property, value))
}

func (q pgQuerier) DeleteProperty(ctx context.Context, material, property string) error {
	return notFound(q.mats.DeleteProperty(ctx, material, property))
}

func (q pgQuerier) Properties(ctx context.Context, material string) ([]materials.Property, error) {
	return q.mats.Properties(ctx, material)
}

func (q pgQuerier) AllMaterialsWithProperties(ctx context.Context) ([]materials.WithProperties, error) {
	return q.mats.AllWithProperties(ctx)
}

func (q pgQuerier) CreateModel(ctx context.Context, name string) error {
	return q.res.CreateModel(ctx, name)
}

func (q pgQuerier) DeleteModel(ctx context.Context, name string) error {
	return notFound(q.res.DeleteModel(ctx, name))
}

func (q pgQuerier) ListModels(ctx context.Context) ([]string, error) {
	return q.res.ListModels(ctx)
}

func (q pgQuerier) EnsureCalculationType(ctx context.Context, name, unit string) error {
	return q.res.EnsureCalculationType(ctx, name, unit)
}

func (q pgQuerier) ListCalculationTypes(ctx context.Context) ([]results.CalculationType, error) {
	return q.res.ListCalculationTypes(ctx)
}

func (q pgQuerier) UpsertResult(ctx context.Context, r results.Result) error {
	return q.res.UpsertResult(ctx, r)
}

func (q pgQuerier) Results(ctx context.Context, f results.Filter) ([]results.Result, error) {
	return q.res.Results(ctx, f)
}
