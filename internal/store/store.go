// Package store описывает хранилище материалов и результатов расчётов
// и его реализации для PostgreSQL и SQLite.
//
// Любая запись родительской строки (материал, модель, вид расчёта) идемпотентна:
// существующая строка не меняется. Свойства и результаты при повторной записи
// по тому же ключу заменяются.
package store

import (
	"context"
	"errors"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
)

var (
	// ErrNotFound: обновление или удаление строки, которой нет.
	ErrNotFound = errors.New("not found")
	// ErrTxAborted: транзакцию (или точку сохранения) нельзя продолжать, её нужно откатить целиком.
	ErrTxAborted = errors.New("transaction aborted")
)

type Querier interface {
	CreateMaterial(ctx context.Context, name string) error
	DeleteMaterial(ctx context.Context, name string) error
	ListMaterials(ctx context.Context) ([]string, error)
	SearchMaterials(ctx context.Context, q string) ([]string, error)
	ClearAllMaterials(ctx context.Context) (int64, error)

	UpsertProperty(ctx context.Context, p materials.Property) error
	UpdateProperty(ctx context.Context, material, property string, value float64) error
	DeleteProperty(ctx context.Context, material, property string) error
	Properties(ctx context.Context, material string) ([]materials.Property, error)
	AllMaterialsWithProperties(ctx context.Context) ([]materials.WithProperties, error)

	CreateModel(ctx context.Context, name string) error
	DeleteModel(ctx context.Context, name string) error
	ListModels(ctx context.Context) ([]string, error)

	EnsureCalculationType(ctx context.Context, name, unit string) error
	ListCalculationTypes(ctx context.Context) ([]results.CalculationType, error)

	UpsertResult(ctx context.Context, r results.Result) error
	Results(ctx context.Context, f results.Filter) ([]results.Result, error)
}

// Tx: открытая транзакция. Savepoint выполняет fn во вложенной единице работы:
// ошибка fn откатывает только её, остальная транзакция продолжается.
// Если саму точку сохранения создать/откатить/освободить не удалось,
// возвращается ошибка, обёрнутая в ErrTxAborted.
type Tx interface {
	Querier
	Savepoint(ctx context.Context, fn func(tx Tx) error) error
}

type Store interface {
	Querier
	// InTx фиксирует транзакцию, если fn вернула nil, и откатывает на любом другом выходе (включая panic).
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

func notFound(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
