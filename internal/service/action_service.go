package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridwar/internal/repository"
	"github.com/freeeve/gridwar/pkg/tactics"
)

// ActionResult reports the outcome of one in-game action. Message carries
// the human-readable battle narration, one line per logged event.
type ActionResult struct {
	Message      string `json:"message"`
	TurnSwitched bool   `json:"turn_switched"`
	MatchOver    bool   `json:"match_over"`
	Winner       string `json:"winner,omitempty"`
}

// mathRand adapts math/rand to the engine's RNG interface.
type mathRand struct{}

func (mathRand) Float64() float64 { return rand.Float64() }

// ActionService executes in-game actions: move, attack, skip, surrender.
// Each action runs under the per-match Redis lock and inside one Postgres
// transaction, so concurrent calls serialize and partial writes never land.
type ActionService struct {
	uow         repository.UnitOfWork
	cache       repository.MatchCache
	broadcaster Broadcaster
	rng         tactics.RNG
}

// NewActionService creates an ActionService using math/rand for combat rolls.
func NewActionService(uow repository.UnitOfWork, cache repository.MatchCache, broadcaster Broadcaster) *ActionService {
	return NewActionServiceWithRNG(uow, cache, broadcaster, mathRand{})
}

// NewActionServiceWithRNG creates an ActionService with an injected RNG.
func NewActionServiceWithRNG(uow repository.UnitOfWork, cache repository.MatchCache, broadcaster Broadcaster, rng tactics.RNG) *ActionService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &ActionService{uow: uow, cache: cache, broadcaster: broadcaster, rng: rng}
}

// Move relocates a group to a reachable cell and consumes its action.
func (s *ActionService) Move(ctx context.Context, matchID, actorID, groupID string, x, y int) (*ActionResult, error) {
	return s.execute(ctx, matchID, "move", func(agg *tactics.Match) (bool, error) {
		return agg.Move(actorID, groupID, tactics.Cell{X: x, Y: y})
	})
}

// Attack resolves a full strike against a visible enemy group: damage roll,
// possible counterattack, kamikaze losses, and win detection.
func (s *ActionService) Attack(ctx context.Context, matchID, actorID, attackerID, targetID string) (*ActionResult, error) {
	return s.execute(ctx, matchID, "attack", func(agg *tactics.Match) (bool, error) {
		return agg.Attack(s.rng, actorID, attackerID, targetID)
	})
}

// Skip spends a group's action without moving or attacking.
func (s *ActionService) Skip(ctx context.Context, matchID, actorID, groupID string) (*ActionResult, error) {
	return s.execute(ctx, matchID, "skip", func(agg *tactics.Match) (bool, error) {
		return agg.Skip(actorID, groupID)
	})
}

// Surrender forfeits a running match; the opponent wins and collects the
// reward immediately.
func (s *ActionService) Surrender(ctx context.Context, matchID, actorID string) (*ActionResult, error) {
	return s.execute(ctx, matchID, "surrender", func(agg *tactics.Match) (bool, error) {
		return false, agg.Surrender(actorID)
	})
}

// execute runs one engine operation under the match lock and inside one
// transaction, then refreshes the snapshot cache and notifies observers.
func (s *ActionService) execute(ctx context.Context, matchID, kind string, op func(agg *tactics.Match) (bool, error)) (*ActionResult, error) {
	var agg *tactics.Match
	var switched bool
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
			switched, err = op(agg)
			if err != nil {
				return err
			}
			return persistAggregate(ctx, r, agg, before)
		})
	})
	if err != nil {
		return nil, err
	}

	result := &ActionResult{
		Message:      narrate(agg.Events),
		TurnSwitched: switched,
		MatchOver:    agg.Status == tactics.StatusCompleted,
		Winner:       agg.Winner,
	}
	log.Info().Str("matchId", matchID).Str("action", kind).
		Bool("turnSwitched", switched).Bool("matchOver", result.MatchOver).
		Msg("Action executed")

	refreshSnapshot(ctx, s.cache, agg)
	s.broadcaster.BroadcastMatchEvent(matchID, kind, result)
	return result, nil
}

// narrate joins the events of one action into the message shown to players.
func narrate(events []tactics.Event) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, e.Message)
	}
	return strings.Join(lines, "\n")
}
