package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
)

// GroupRepo handles unit group and casualty database operations.
type GroupRepo struct {
	q DBTX
}

// NewGroupRepo creates a GroupRepo bound to the pool.
func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{q: db}
}

const groupColumns = `id, match_id, player_id, template_id, x, y,
	total_count, remaining_hp, morale, fatigue, has_acted`

// Insert writes a new group and returns it with the generated ID.
func (r *GroupRepo) Insert(ctx context.Context, g *model.UnitGroup) (*model.UnitGroup, error) {
	var out model.UnitGroup
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO unit_groups (match_id, player_id, template_id, x, y, total_count, remaining_hp, morale, fatigue, has_acted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+groupColumns,
		g.MatchID, g.PlayerID, g.TemplateID, g.X, g.Y, g.TotalCount, g.RemainingHP, g.Morale, g.Fatigue, g.HasActed,
	).Scan(&out.ID, &out.MatchID, &out.PlayerID, &out.TemplateID, &out.X, &out.Y,
		&out.TotalCount, &out.RemainingHP, &out.Morale, &out.Fatigue, &out.HasActed)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return &out, nil
}

// ListByMatch returns all living groups of a match.
func (r *GroupRepo) ListByMatch(ctx context.Context, matchID string) ([]model.UnitGroup, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM unit_groups WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.UnitGroup
	for rows.Next() {
		var g model.UnitGroup
		if err := rows.Scan(&g.ID, &g.MatchID, &g.PlayerID, &g.TemplateID, &g.X, &g.Y,
			&g.TotalCount, &g.RemainingHP, &g.Morale, &g.Fatigue, &g.HasActed); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Update rewrites a group's mutable fields.
func (r *GroupRepo) Update(ctx context.Context, g *model.UnitGroup) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE unit_groups
		 SET x = $1, y = $2, total_count = $3, remaining_hp = $4, morale = $5, fatigue = $6, has_acted = $7
		 WHERE id = $8`,
		g.X, g.Y, g.TotalCount, g.RemainingHP, g.Morale, g.Fatigue, g.HasActed, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes an emptied group. Zero-count rows are never kept.
func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM unit_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// AddCasualties adds dead individuals to the per-match casualty tally.
func (r *GroupRepo) AddCasualties(ctx context.Context, matchID, playerID, templateID string, count int) error {
	if count <= 0 {
		return nil
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO match_casualties (match_id, player_id, template_id, count)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (match_id, player_id, template_id)
		 DO UPDATE SET count = match_casualties.count + EXCLUDED.count`,
		matchID, playerID, templateID, count,
	)
	if err != nil {
		return fmt.Errorf("add casualties: %w", err)
	}
	return nil
}

// ListCasualties returns the casualty tally of a match.
func (r *GroupRepo) ListCasualties(ctx context.Context, matchID string) ([]model.Casualty, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT match_id, player_id, template_id, count FROM match_casualties WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list casualties: %w", err)
	}
	defer rows.Close()

	var casualties []model.Casualty
	for rows.Next() {
		var c model.Casualty
		if err := rows.Scan(&c.MatchID, &c.PlayerID, &c.TemplateID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan casualty: %w", err)
		}
		casualties = append(casualties, c)
	}
	return casualties, rows.Err()
}
