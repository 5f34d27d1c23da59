package results

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/matbase/internal/infra/db"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

/* Models */

func (r *Repo) CreateModel(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO models (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	return err
}

// DeleteModel удаляет модель вместе с результатами.
func (r *Repo) DeleteModel(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM models WHERE name = $1`, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) ListModels(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

/* Calculation types */

// EnsureCalculationType создаёт вид расчёта; единица первого записавшего сохраняется.
func (r *Repo) EnsureCalculationType(ctx context.Context, name, unit string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calculation_types (name, unit) VALUES ($1,$2)
		ON CONFLICT (name) DO NOTHING
	`, name, unit)
	return err
}

func (r *Repo) ListCalculationTypes(ctx context.Context) ([]CalculationType, error) {
	rows, err := r.db.Query(ctx, `SELECT name, unit FROM calculation_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalculationType
	for rows.Next() {
		var ct CalculationType
		if err := rows.Scan(&ct.Name, &ct.Unit); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

/* Results */

// UpsertResult: повторный импорт по тому же ключу заменяет значение.
func (r *Repo) UpsertResult(ctx context.Context, res Result) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calculation_results (model_name, node_number, calculation_type_name, value)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (model_name, node_number, calculation_type_name)
		DO UPDATE SET value = EXCLUDED.value
	`, res.Model, res.Node, res.CalculationType, res.Value)
	return err
}

func (r *Repo) Results(ctx context.Context, f Filter) ([]Result, error) {
	q, args := SelectResults(f, func(i int) string { return fmt.Sprintf("$%d", i) })

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.Model, &res.Node, &res.CalculationType, &res.Value); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// SelectResults собирает запрос выборки результатов; placeholder задаёт синтаксис параметров драйвера.
func SelectResults(f Filter, placeholder func(i int) string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Model != "" {
		args = append(args, f.Model)
		where = append(where, "model_name = "+placeholder(len(args)))
	}
	if f.CalculationType != "" {
		args = append(args, f.CalculationType)
		where = append(where, "calculation_type_name = "+placeholder(len(args)))
	}

	q := `SELECT model_name, node_number, calculation_type_name, value FROM calculation_results`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY model_name, node_number, calculation_type_name"
	return q, args
}
