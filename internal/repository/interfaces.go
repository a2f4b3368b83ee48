package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/gridwar/internal/model"
)

// UserRepository defines player account operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	CreditBalance(ctx context.Context, id string, amount int) error
	RecordResult(ctx context.Context, winnerID, loserID string) error
}

// TemplateRepository defines read access to the unit catalog. The catalog is
// written by the admin front-end, never by the engine.
type TemplateRepository interface {
	FindByID(ctx context.Context, id string) (*model.UnitTemplate, error)
	List(ctx context.Context) ([]model.UnitTemplate, error)
}

// MatchRepository defines match lifecycle persistence. Deleting a match
// cascades to its groups, obstacles, casualties, and log.
type MatchRepository interface {
	Create(ctx context.Context, creatorID, opponentID string, boardWidth, boardHeight int) (*model.Match, error)
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListWaiting(ctx context.Context) ([]model.Match, error)
	ListByUser(ctx context.Context, userID string) ([]model.Match, error)
	ListCompleted(ctx context.Context) ([]model.Match, error)
	ListInProgress(ctx context.Context) ([]model.Match, error)
	SetInProgress(ctx context.Context, matchID, currentTurn string) error
	SetCurrentTurn(ctx context.Context, matchID, currentTurn string) error
	SetCompleted(ctx context.Context, matchID, winner string) error
	Delete(ctx context.Context, matchID string) error
	InsertObstacles(ctx context.Context, matchID string, obstacles []model.Obstacle) error
	ListObstacles(ctx context.Context, matchID string) ([]model.Obstacle, error)
}

// GroupRepository defines unit group persistence. Groups that reach zero
// individuals are deleted, never stored.
type GroupRepository interface {
	Insert(ctx context.Context, g *model.UnitGroup) (*model.UnitGroup, error)
	ListByMatch(ctx context.Context, matchID string) ([]model.UnitGroup, error)
	Update(ctx context.Context, g *model.UnitGroup) error
	Delete(ctx context.Context, id string) error
	AddCasualties(ctx context.Context, matchID, playerID, templateID string, count int) error
	ListCasualties(ctx context.Context, matchID string) ([]model.Casualty, error)
}

// LogRepository defines the append-only match log.
type LogRepository interface {
	Append(ctx context.Context, matchID, kind, message string, data json.RawMessage) error
	ListByMatch(ctx context.Context, matchID string) ([]model.LogEntry, error)
}

// Repos bundles the repositories participating in one unit of work.
type Repos struct {
	Users     UserRepository
	Templates TemplateRepository
	Matches   MatchRepository
	Groups    GroupRepository
	Logs      LogRepository
}

// UnitOfWork runs a function against transaction-scoped repositories. The
// transaction commits iff the function returns nil; any error rolls back
// every write, so an operation either applies completely or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// MatchCache defines live per-match state kept in Redis: the action lock
// that serializes concurrent calls on one match, and the rendered board
// snapshot consumed by read paths.
type MatchCache interface {
	AcquireLock(ctx context.Context, matchID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, matchID string) error
	SetSnapshot(ctx context.Context, matchID string, snapshot json.RawMessage) error
	GetSnapshot(ctx context.Context, matchID string) (json.RawMessage, error)
	DeleteSnapshot(ctx context.Context, matchID string) error
}
