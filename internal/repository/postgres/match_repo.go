package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
)

// MatchRepo handles match and obstacle database operations.
type MatchRepo struct {
	q DBTX
}

// NewMatchRepo creates a MatchRepo bound to the pool.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{q: db}
}

const matchColumns = `id, creator_id, opponent_id, board_width, board_height,
	status, current_turn, winner, created_at, started_at, finished_at`

func scanMatch(scan func(dest ...any) error) (*model.Match, error) {
	var m model.Match
	var currentTurn, winner sql.NullString
	err := scan(&m.ID, &m.CreatorID, &m.OpponentID, &m.BoardWidth, &m.BoardHeight,
		&m.Status, &currentTurn, &winner, &m.CreatedAt, &m.StartedAt, &m.FinishedAt)
	if err != nil {
		return nil, err
	}
	m.CurrentTurn = currentTurn.String
	m.Winner = winner.String
	return &m, nil
}

// Create inserts a new match in waiting status.
func (r *MatchRepo) Create(ctx context.Context, creatorID, opponentID string, boardWidth, boardHeight int) (*model.Match, error) {
	row := r.q.QueryRowContext(ctx,
		`INSERT INTO matches (creator_id, opponent_id, board_width, board_height)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+matchColumns,
		creatorID, opponentID, boardWidth, boardHeight)
	m, err := scanMatch(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// FindByID returns a match by ID, or nil if it does not exist.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

func (r *MatchRepo) listMatches(ctx context.Context, query string, args ...any) ([]model.Match, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// ListWaiting returns open challenges, most recent first.
func (r *MatchRepo) ListWaiting(ctx context.Context) ([]model.Match, error) {
	matches, err := r.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = 'waiting' ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("list waiting matches: %w", err)
	}
	return matches, nil
}

// ListByUser returns all matches a user is part of.
func (r *MatchRepo) ListByUser(ctx context.Context, userID string) ([]model.Match, error) {
	matches, err := r.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE creator_id = $1 OR opponent_id = $1
		 ORDER BY created_at DESC LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user matches: %w", err)
	}
	return matches, nil
}

// ListCompleted returns finished matches, most recent first. They are kept
// with their logs for replay and audit.
func (r *MatchRepo) ListCompleted(ctx context.Context) ([]model.Match, error) {
	matches, err := r.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = 'completed' ORDER BY finished_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("list completed matches: %w", err)
	}
	return matches, nil
}

// ListInProgress returns running matches, used to rebuild snapshots on restart.
func (r *MatchRepo) ListInProgress(ctx context.Context) ([]model.Match, error) {
	matches, err := r.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = 'in_progress' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list in-progress matches: %w", err)
	}
	return matches, nil
}

// SetInProgress marks an accepted match as running with the given first turn.
func (r *MatchRepo) SetInProgress(ctx context.Context, matchID, currentTurn string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE matches SET status = 'in_progress', current_turn = $1, started_at = now() WHERE id = $2`,
		currentTurn, matchID,
	)
	if err != nil {
		return fmt.Errorf("set in progress: %w", err)
	}
	return nil
}

// SetCurrentTurn updates whose turn it is.
func (r *MatchRepo) SetCurrentTurn(ctx context.Context, matchID, currentTurn string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE matches SET current_turn = $1 WHERE id = $2`,
		currentTurn, matchID,
	)
	if err != nil {
		return fmt.Errorf("set current turn: %w", err)
	}
	return nil
}

// SetCompleted marks a match as completed. The winner column is only ever
// written here and never overwritten afterwards.
func (r *MatchRepo) SetCompleted(ctx context.Context, matchID, winner string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE matches SET status = 'completed', winner = $1, current_turn = NULL, finished_at = now()
		 WHERE id = $2 AND status <> 'completed'`,
		winner, matchID,
	)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	return nil
}

// Delete removes a match and all associated data (cascades to groups,
// obstacles, casualties, and log entries).
func (r *MatchRepo) Delete(ctx context.Context, matchID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// InsertObstacles writes the obstacle set laid down at match creation.
func (r *MatchRepo) InsertObstacles(ctx context.Context, matchID string, obstacles []model.Obstacle) error {
	for _, o := range obstacles {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO obstacles (match_id, x, y) VALUES ($1, $2, $3)`,
			matchID, o.X, o.Y,
		)
		if err != nil {
			return fmt.Errorf("insert obstacle: %w", err)
		}
	}
	return nil
}

// ListObstacles returns the fixed obstacle set of a match.
func (r *MatchRepo) ListObstacles(ctx context.Context, matchID string) ([]model.Obstacle, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT match_id, x, y FROM obstacles WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list obstacles: %w", err)
	}
	defer rows.Close()

	var obstacles []model.Obstacle
	for rows.Next() {
		var o model.Obstacle
		if err := rows.Scan(&o.MatchID, &o.X, &o.Y); err != nil {
			return nil, fmt.Errorf("scan obstacle: %w", err)
		}
		obstacles = append(obstacles, o)
	}
	return obstacles, rows.Err()
}
