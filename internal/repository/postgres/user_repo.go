package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
)

// UserRepo handles player account database operations.
type UserRepo struct {
	q DBTX
}

// NewUserRepo creates a UserRepo bound to the pool.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{q: db}
}

const userColumns = `id, provider, provider_id, display_name, avatar_url, balance, wins, losses, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var avatar sql.NullString
	err := row.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.DisplayName, &avatar,
		&u.Balance, &u.Wins, &u.Losses, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = avatar.String
	return &u, nil
}

// FindByID looks up a user by their UUID.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByProviderID looks up a user by OAuth provider and provider-specific ID.
func (r *UserRepo) FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by provider: %w", err)
	}
	return u, nil
}

// Upsert creates a user or refreshes the display name and avatar on login.
func (r *UserRepo) Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`INSERT INTO users (provider, provider_id, display_name, avatar_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (provider, provider_id)
		 DO UPDATE SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url, updated_at = now()
		 RETURNING `+userColumns,
		provider, providerID, displayName, avatarURL))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// UpdateDisplayName updates a user's display name.
func (r *UserRepo) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET display_name = $1, updated_at = now() WHERE id = $2`,
		displayName, id,
	)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

// CreditBalance adds the reward amount to a player's persistent balance.
func (r *UserRepo) CreditBalance(ctx context.Context, id string, amount int) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1, updated_at = now() WHERE id = $2`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// RecordResult increments the win and loss counters of both players.
func (r *UserRepo) RecordResult(ctx context.Context, winnerID, loserID string) error {
	if _, err := r.q.ExecContext(ctx,
		`UPDATE users SET wins = wins + 1, updated_at = now() WHERE id = $1`, winnerID); err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	if _, err := r.q.ExecContext(ctx,
		`UPDATE users SET losses = losses + 1, updated_at = now() WHERE id = $1`, loserID); err != nil {
		return fmt.Errorf("record loss: %w", err)
	}
	return nil
}
