package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridwar/internal/model"
	"github.com/freeeve/gridwar/internal/repository"
	"github.com/freeeve/gridwar/pkg/tactics"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrNotParticipant  = errors.New("you are not part of this match")
	ErrMatchBusy       = errors.New("another action on this match is in progress")
	ErrMatchNotWaiting = errors.New("match is not in waiting status")
	ErrSamePlayer      = errors.New("cannot challenge yourself")
	ErrOpponentMissing = errors.New("opponent not found")
	ErrEmptyArmy       = errors.New("both sides need at least one group")
)

// actionLockTTL bounds how long a crashed caller can hold a match lock.
const actionLockTTL = 10 * time.Second

// BoardPreset describes the playing field chosen at match creation.
type BoardPreset struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Obstacles []tactics.Cell `json:"obstacles"`
}

// GroupPlacement is one group drawn from a player's inventory and placed on
// the board at match creation.
type GroupPlacement struct {
	PlayerID   string `json:"player_id"`
	TemplateID string `json:"template_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Count      int    `json:"count"`
}

// MatchDetail is a match row plus both sides' current army value, which
// front-ends use to offer opponents of comparable strength.
type MatchDetail struct {
	Match      *model.Match   `json:"match"`
	ArmyValues map[string]int `json:"army_values"`
}

// MatchService handles match lifecycle and read paths: creation, acceptance,
// declining, listing, snapshots, and the replay log.
type MatchService struct {
	uow         repository.UnitOfWork
	repos       repository.Repos
	cache       repository.MatchCache
	broadcaster Broadcaster
}

// NewMatchService creates a MatchService.
func NewMatchService(uow repository.UnitOfWork, repos repository.Repos, cache repository.MatchCache, broadcaster Broadcaster) *MatchService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &MatchService{uow: uow, repos: repos, cache: cache, broadcaster: broadcaster}
}

// lockMatch serializes actions on one match. Different matches proceed in
// parallel; two concurrent calls on the same match would corrupt turn state.
func lockMatch(ctx context.Context, cache repository.MatchCache, matchID string, fn func() error) error {
	ok, err := cache.AcquireLock(ctx, matchID, actionLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMatchBusy
	}
	defer func() {
		if err := cache.ReleaseLock(ctx, matchID); err != nil {
			log.Error().Err(err).Str("matchId", matchID).Msg("Failed to release match lock")
		}
	}()
	return fn()
}

// refreshSnapshot rewrites the cached board snapshot after a committed
// mutation. Cache failures are logged, not fatal: the snapshot is rebuilt
// from Postgres on the next read.
func refreshSnapshot(ctx context.Context, cache repository.MatchCache, agg *tactics.Match) {
	data, err := json.Marshal(buildSnapshot(agg))
	if err == nil {
		err = cache.SetSnapshot(ctx, agg.ID, data)
	}
	if err != nil {
		log.Error().Err(err).Str("matchId", agg.ID).Msg("Failed to refresh snapshot cache")
	}
}

// CreateMatch creates a waiting match with its board, obstacles, and both
// players' initial groups, all in one transaction. Placements come from the
// players' inventories via the front-end and are validated server-side.
func (s *MatchService) CreateMatch(ctx context.Context, creatorID, opponentID string, preset BoardPreset, placements []GroupPlacement) (*model.Match, error) {
	if creatorID == opponentID {
		return nil, ErrSamePlayer
	}

	var created *model.Match
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		opponent, err := r.Users.FindByID(ctx, opponentID)
		if err != nil {
			return err
		}
		if opponent == nil {
			return ErrOpponentMissing
		}

		templates, err := r.Templates.List(ctx)
		if err != nil {
			return err
		}
		tmplMap := make(map[string]*tactics.Template, len(templates))
		for i := range templates {
			tmplMap[templates[i].ID] = toEngineTemplate(&templates[i])
		}

		board := tactics.NewBoard(preset.Width, preset.Height, preset.Obstacles)
		enginePlacements := make([]tactics.Placement, len(placements))
		sides := map[string]int{}
		for i, p := range placements {
			if p.PlayerID != creatorID && p.PlayerID != opponentID {
				return ErrNotParticipant
			}
			sides[p.PlayerID]++
			enginePlacements[i] = tactics.Placement{
				PlayerID:   p.PlayerID,
				TemplateID: p.TemplateID,
				Pos:        tactics.Cell{X: p.X, Y: p.Y},
				Count:      p.Count,
			}
		}
		if sides[creatorID] == 0 || sides[opponentID] == 0 {
			return ErrEmptyArmy
		}
		if err := tactics.ValidateSetup(board, tmplMap, enginePlacements); err != nil {
			return err
		}

		created, err = r.Matches.Create(ctx, creatorID, opponentID, preset.Width, preset.Height)
		if err != nil {
			return err
		}
		obstacles := make([]model.Obstacle, len(preset.Obstacles))
		for i, c := range preset.Obstacles {
			obstacles[i] = model.Obstacle{MatchID: created.ID, X: c.X, Y: c.Y}
		}
		if err := r.Matches.InsertObstacles(ctx, created.ID, obstacles); err != nil {
			return err
		}
		for _, p := range placements {
			tmpl := tmplMap[p.TemplateID]
			if _, err := r.Groups.Insert(ctx, &model.UnitGroup{
				MatchID:     created.ID,
				PlayerID:    p.PlayerID,
				TemplateID:  p.TemplateID,
				X:           p.X,
				Y:           p.Y,
				TotalCount:  p.Count,
				RemainingHP: tmpl.Health,
			}); err != nil {
				return err
			}
		}
		return r.Logs.Append(ctx, created.ID, "create", "challenge issued", nil)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("matchId", created.ID).Str("creator", creatorID).Str("opponent", opponentID).Msg("Match created")
	s.broadcaster.BroadcastMatchEvent(created.ID, "match_created", created)
	return created, nil
}

// AcceptMatch moves a waiting match into play. Only the invited player can
// accept.
func (s *MatchService) AcceptMatch(ctx context.Context, matchID, actorID string) (*model.Match, error) {
	var agg *tactics.Match
	err := lockMatch(ctx, s.cache, matchID, func() error {
		return s.uow.WithinTx(ctx, func(r repository.Repos) error {
			m, err := r.Matches.FindByID(ctx, matchID)
			if err != nil {
				return err
			}
			if m == nil {
				return ErrMatchNotFound
			}
			agg, err = loadAggregate(ctx, r, m)
			if err != nil {
				return err
			}
			before := snapshotAggregate(agg)
			if err := agg.Accept(actorID); err != nil {
				return err
			}
			return persistAggregate(ctx, r, agg, before)
		})
	})
	if err != nil {
		return nil, err
	}

	refreshSnapshot(ctx, s.cache, agg)
	s.broadcaster.BroadcastMatchEvent(matchID, "match_accepted", map[string]string{"current_turn": agg.CurrentTurn})
	return s.repos.Matches.FindByID(ctx, matchID)
}

// DeclineMatch deletes a waiting match, either because the invited player
// declined or the creator withdrew the challenge. The match and all child
// entities go together.
func (s *MatchService) DeclineMatch(ctx context.Context, matchID, actorID string) error {
	err := lockMatch(ctx, s.cache, matchID, func() error {
		return s.uow.WithinTx(ctx, func(r repository.Repos) error {
			m, err := r.Matches.FindByID(ctx, matchID)
			if err != nil {
				return err
			}
			if m == nil {
				return ErrMatchNotFound
			}
			if m.CreatorID != actorID && m.OpponentID != actorID {
				return ErrNotParticipant
			}
			if m.Status != string(tactics.StatusWaiting) {
				return ErrMatchNotWaiting
			}
			return r.Matches.Delete(ctx, matchID)
		})
	})
	if err != nil {
		return err
	}

	if err := s.cache.DeleteSnapshot(ctx, matchID); err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to drop snapshot of deleted match")
	}
	s.broadcaster.BroadcastMatchEvent(matchID, "match_declined", map[string]string{"by": actorID})
	return nil
}

// GetMatch returns a match with both sides' current army value.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*MatchDetail, error) {
	m, err := s.repos.Matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	agg, err := loadAggregate(ctx, s.repos, m)
	if err != nil {
		return nil, err
	}
	return &MatchDetail{
		Match: m,
		ArmyValues: map[string]int{
			m.CreatorID:  agg.ArmyValue(m.CreatorID),
			m.OpponentID: agg.ArmyValue(m.OpponentID),
		},
	}, nil
}

// ListMatches returns open challenges, the user's matches, or completed
// matches depending on the filter.
func (s *MatchService) ListMatches(ctx context.Context, userID, filter string) ([]model.Match, error) {
	switch filter {
	case "my":
		return s.repos.Matches.ListByUser(ctx, userID)
	case "completed":
		return s.repos.Matches.ListCompleted(ctx)
	default:
		return s.repos.Matches.ListWaiting(ctx)
	}
}

// AvailableActions reports what the asking player can do right now,
// including per-group reachable cells and targets on their turn.
func (s *MatchService) AvailableActions(ctx context.Context, matchID, actorID string) (*AvailableActions, error) {
	m, err := s.repos.Matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.CreatorID != actorID && m.OpponentID != actorID {
		return nil, ErrNotParticipant
	}
	agg, err := loadAggregate(ctx, s.repos, m)
	if err != nil {
		return nil, err
	}
	return buildActions(agg, actorID), nil
}

// GetBoardSnapshot returns the read-only board view, served from the Redis
// cache when possible and rebuilt from Postgres otherwise.
func (s *MatchService) GetBoardSnapshot(ctx context.Context, matchID string) (*BoardSnapshot, error) {
	if cached, err := s.cache.GetSnapshot(ctx, matchID); err == nil && cached != nil {
		var snap BoardSnapshot
		if err := json.Unmarshal(cached, &snap); err == nil {
			return &snap, nil
		}
	} else if err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("Snapshot cache read failed")
	}

	m, err := s.repos.Matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	agg, err := loadAggregate(ctx, s.repos, m)
	if err != nil {
		return nil, err
	}
	snap := buildSnapshot(agg)
	refreshSnapshot(ctx, s.cache, agg)
	return snap, nil
}

// MatchLog returns the full append-only log of a match for replay tooling.
func (s *MatchService) MatchLog(ctx context.Context, matchID string) ([]model.LogEntry, error) {
	m, err := s.repos.Matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return s.repos.Logs.ListByMatch(ctx, matchID)
}

// RecoverSnapshots rebuilds the Redis snapshot of every running match from
// Postgres. Called on server startup after a restart wipes the cache.
func (s *MatchService) RecoverSnapshots(ctx context.Context) error {
	matches, err := s.repos.Matches.ListInProgress(ctx)
	if err != nil {
		return err
	}
	for i := range matches {
		agg, err := loadAggregate(ctx, s.repos, &matches[i])
		if err != nil {
			return err
		}
		refreshSnapshot(ctx, s.cache, agg)
	}
	log.Info().Int("count", len(matches)).Msg("Recovered match snapshots")
	return nil
}
