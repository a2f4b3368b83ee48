package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
)

// LogRepo handles the append-only match log. Entries are never updated or
// deleted individually; a cascading match deletion is the only way out.
type LogRepo struct {
	q DBTX
}

// NewLogRepo creates a LogRepo bound to the pool.
func NewLogRepo(db *sql.DB) *LogRepo {
	return &LogRepo{q: db}
}

// Append writes one log entry.
func (r *LogRepo) Append(ctx context.Context, matchID, kind, message string, data json.RawMessage) error {
	var payload any
	if len(data) > 0 {
		payload = []byte(data)
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO match_log (match_id, kind, message, data) VALUES ($1, $2, $3, $4)`,
		matchID, kind, message, payload,
	)
	if err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// ListByMatch returns the full log of a match in insertion order, for
// replay and audit tooling.
func (r *LogRepo) ListByMatch(ctx context.Context, matchID string) ([]model.LogEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, match_id, kind, message, data, created_at FROM match_log WHERE match_id = $1 ORDER BY id`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var data []byte
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Kind, &e.Message, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Data = json.RawMessage(data)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
