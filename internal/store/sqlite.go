package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
)

// SQLite: локальное файловое хранилище (modernc.org/sqlite через database/sql).
// Внешние ключи должны быть включены на соединении, см. db.OpenSQLite.
type SQLite struct {
	sqliteQuerier
	db *sql.DB
}

var (
	_ Store = (*SQLite)(nil)
	_ Tx    = (*sqliteTx)(nil)
)

func NewSQLite(sqlDB *sql.DB) *SQLite {
	return &SQLite{sqliteQuerier: sqliteQuerier{conn: sqlDB}, db: sqlDB}
}

func (s *SQLite) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteTx{sqliteQuerier: sqliteQuerier{conn: tx}, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	sqliteQuerier
	tx    *sql.Tx
	depth int
}

func (t *sqliteTx) Savepoint(ctx context.Context, fn func(tx Tx) error) error {
	nested := &sqliteTx{sqliteQuerier: t.sqliteQuerier, tx: t.tx, depth: t.depth + 1}
	name := fmt.Sprintf("sp_%d", nested.depth)

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint: %w: %w", ErrTxAborted, err)
	}
	if err := fn(nested); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO "+name); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w: %w", ErrTxAborted, rbErr)
		}
		if _, relErr := t.tx.ExecContext(ctx, "RELEASE "+name); relErr != nil {
			return fmt.Errorf("release savepoint: %w: %w", ErrTxAborted, relErr)
		}
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("release savepoint: %w: %w", ErrTxAborted, err)
	}
	return nil
}

// sqlConn: общее подмножество *sql.DB и *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqliteQuerier struct {
	conn sqlConn
}

func (q sqliteQuerier) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := q.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q sqliteQuerier) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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

/* Materials */

func (q sqliteQuerier) CreateMaterial(ctx context.Context, name string) error {
	_, err := q.exec(ctx, `INSERT OR IGNORE INTO materials (name) VALUES (?)`, name)
	return err
}

func (q sqliteQuerier) DeleteMaterial(ctx context.Context, name string) error {
	return notFound(q.exec(ctx, `DELETE FROM materials WHERE name = ?`, name))
}

func (q sqliteQuerier) ListMaterials(ctx context.Context) ([]string, error) {
	return q.names(ctx, `SELECT name FROM materials ORDER BY name`)
}

func (q sqliteQuerier) SearchMaterials(ctx context.Context, s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return q.ListMaterials(ctx)
	}
	// LOWER в SQLite понимает только ASCII, поэтому фильтруем в Go
	all, err := q.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(s)
	var out []string
	for _, name := range all {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (q sqliteQuerier) ClearAllMaterials(ctx context.Context) (int64, error) {
	res, err := q.conn.ExecContext(ctx, `DELETE FROM materials`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

/* Properties */

func (q sqliteQuerier) UpsertProperty(ctx context.Context, p materials.Property) error {
	_, err := q.exec(ctx, `
		INSERT INTO material_properties (material_name, property_name, unit, value)
		VALUES (?,?,?,?)
		ON CONFLICT (material_name, property_name)
		DO UPDATE SET unit = excluded.unit, value = excluded.value
	`, p.Material, p.Name, materials.NormalizeUnit(p.Unit), p.Value)
	return err
}

func (q sqliteQuerier) UpdateProperty(ctx context.Context, material, property string, value float64) error {
	return notFound(q.exec(ctx, `
		UPDATE material_properties SET value = ?
		WHERE material_name = ? AND property_name = ?
	`, value, material, property))
}

func (q sqliteQuerier) DeleteProperty(ctx context.Context, material, property string) error {
	return notFound(q.exec(ctx, `
		DELETE FROM material_properties
		WHERE material_name = ? AND property_name = ?
	`, material, property))
}

func (q sqliteQuerier) Properties(ctx context.Context, material string) ([]materials.Property, error) {
	rows, err := q.conn.QueryContext(ctx, `
		SELECT material_name, property_name, unit, value
		FROM material_properties
		WHERE material_name = ?
		ORDER BY property_name
	`, material)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []materials.Property
	for rows.Next() {
		var p materials.Property
		if err := rows.Scan(&p.Material, &p.Name, &p.Unit, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q sqliteQuerier) AllMaterialsWithProperties(ctx context.Context) ([]materials.WithProperties, error) {
	rows, err := q.conn.QueryContext(ctx, `
		SELECT m.name, mp.property_name, mp.unit, mp.value
		FROM materials m
		LEFT JOIN material_properties mp ON mp.material_name = m.name
		ORDER BY m.name, mp.property_name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []materials.WithProperties
	for rows.Next() {
		var (
			name       string
			prop, unit sql.NullString
			value      sql.NullFloat64
		)
		if err := rows.Scan(&name, &prop, &unit, &value); err != nil {
			return nil, err
		}
		out = materials.AppendJoined(out, name, nullString(prop), nullString(unit), nullFloat(value))
	}
	return out, rows.Err()
}

/* Models, calculation types, results */

func (q sqliteQuerier) CreateModel(ctx context.Context, name string) error {
	_, err := q.exec(ctx, `INSERT OR IGNORE INTO models (name) VALUES (?)`, name)
	return err
}

func (q sqliteQuerier) DeleteModel(ctx context.Context, name string) error {
	return notFound(q.exec(ctx, `DELETE FROM models WHERE name = ?`, name))
}

func (q sqliteQuerier) ListModels(ctx context.Context) ([]string, error) {
	return q.names(ctx, `SELECT name FROM models ORDER BY name`)
}

func (q sqliteQuerier) EnsureCalculationType(ctx context.Context, name, unit string) error {
	_, err := q.exec(ctx, `INSERT OR IGNORE INTO calculation_types (name, unit) VALUES (?,?)`, name, unit)
	return err
}

func (q sqliteQuerier) ListCalculationTypes(ctx context.Context) ([]results.CalculationType, error) {
	rows, err := q.conn.QueryContext(ctx, `SELECT name, unit FROM calculation_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []results.CalculationType
	for rows.Next() {
		var ct results.CalculationType
		if err := rows.Scan(&ct.Name, &ct.Unit); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (q sqliteQuerier) UpsertResult(ctx context.Context, r results.Result) error {
	_, err := q.exec(ctx, `
		INSERT INTO calculation_results (model_name, node_number, calculation_type_name, value)
		VALUES (?,?,?,?)
		ON CONFLICT (model_name, node_number, calculation_type_name)
		DO UPDATE SET value = excluded.value
	`, r.Model, r.Node, r.CalculationType, r.Value)
	return err
}

func (q sqliteQuerier) Results(ctx context.Context, f results.Filter) ([]results.Result, error) {
	query, args := results.SelectResults(f, func(int) string { return "?" })

	rows, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []results.Result
	for rows.Next() {
		var r results.Result
		if err := rows.Scan(&r.Model, &r.Node, &r.CalculationType, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
