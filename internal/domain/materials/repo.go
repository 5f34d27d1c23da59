package materials

import (
	"context"
	"strings"

	"github.com/Spok95/matbase/internal/infra/db"
)

type Repo struct{ db db.DBTX }

// NewRepo принимает пул или транзакцию.
func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

/* Materials */

// Create добавляет материал; существующая запись не трогается.
func (r *Repo) Create(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO materials (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	return err
}

// Delete удаляет материал, свойства уходят каскадом. false: материала не было.
func (r *Repo) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE name = $1`, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM materials ORDER BY name`)
}

// SearchByName ищет материалы по части названия, без учёта регистра.
func (r *Repo) SearchByName(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.List(ctx)
	}
	like := "%" + strings.ToLower(q) + "%"
	return r.names(ctx, `SELECT name FROM materials WHERE LOWER(name) LIKE $1 ORDER BY name`, like)
}

// ClearAll удаляет все материалы вместе со свойствами.
func (r *Repo) ClearAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) names(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, q, args...)
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

/* Properties */

// UpsertProperty записывает свойство; повторная запись той же пары материал/свойство заменяет значение.
func (r *Repo) UpsertProperty(ctx context.Context, p Property) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO material_properties (material_name, property_name, unit, value)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (material_name, property_name)
		DO UPDATE SET unit = EXCLUDED.unit, value = EXCLUDED.value
	`, p.Material, p.Name, NormalizeUnit(p.Unit), p.Value)
	return err
}

func (r *Repo) UpdateProperty(ctx context.Context, material, property string, value float64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE material_properties SET value = $3
		WHERE material_name = $1 AND property_name = $2
	`, material, property, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) DeleteProperty(ctx context.Context, material, property string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM material_properties
		WHERE material_name = $1 AND property_name = $2
	`, material, property)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) Properties(ctx context.Context, material string) ([]Property, error) {
	rows, err := r.db.Query(ctx, `
		SELECT material_name, property_name, unit, value
		FROM material_properties
		WHERE material_name = $1
		ORDER BY property_name
	`, material)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.Material, &p.Name, &p.Unit, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllWithProperties: все материалы, включая материалы без свойств.
func (r *Repo) AllWithProperties(ctx context.Context) ([]WithProperties, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.name, mp.property_name, mp.unit, mp.value
		FROM materials m
		LEFT JOIN material_properties mp ON mp.material_name = m.name
		ORDER BY m.name, mp.property_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WithProperties
	for rows.Next() {
		var (
			name       string
			prop, unit *string
			value      *float64
		)
		if err := rows.Scan(&name, &prop, &unit, &value); err != nil {
			return nil, err
		}
		out = AppendJoined(out, name, prop, unit, value)
	}
	return out, rows.Err()
}

// AppendJoined сворачивает строку LEFT JOIN материалы/свойства в срез WithProperties.
// Строки должны идти отсортированными по имени материала.
func AppendJoined(out []WithProperties, name string, prop, unit *string, value *float64) []WithProperties {
	if len(out) == 0 || out[len(out)-1].Name != name {
		out = append(out, WithProperties{Name: name})
	}
	if prop == nil || *prop == "" {
		return out
	}
	p := Property{Material: name, Name: *prop}
	if unit != nil {
		p.Unit = *unit
	}
	if value != nil {
		p.Value = *value
	}
	last := &out[len(out)-1]
	last.Properties = append(last.Properties, p)
	return out
}
