package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
)

// TemplateRepo reads the unit catalog. The engine never writes templates;
// the admin front-end and the pricing tool own them.
type TemplateRepo struct {
	q DBTX
}

// NewTemplateRepo creates a TemplateRepo bound to the pool.
func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{q: db}
}

const templateColumns = `id, name, damage, defense, health, attack_range, speed,
	luck_chance, crit_chance, dodge_chance, counter_chance,
	kamikaze, flying, effective_against, price, created_at`

func scanTemplate(scan func(dest ...any) error) (*model.UnitTemplate, error) {
	var t model.UnitTemplate
	var effective sql.NullString
	err := scan(&t.ID, &t.Name, &t.Damage, &t.Defense, &t.Health, &t.Range, &t.Speed,
		&t.LuckChance, &t.CritChance, &t.DodgeChance, &t.CounterChance,
		&t.Kamikaze, &t.Flying, &effective, &t.Price, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.EffectiveAgainst = effective.String
	return &t, nil
}

// FindByID returns a unit template by ID.
func (r *TemplateRepo) FindByID(ctx context.Context, id string) (*model.UnitTemplate, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM unit_templates WHERE id = $1`, id)
	t, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// List returns the full unit catalog.
func (r *TemplateRepo) List(ctx context.Context) ([]model.UnitTemplate, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM unit_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.UnitTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}
