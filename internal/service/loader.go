package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/freeeve/gridwar/internal/model"
	"github.com/freeeve/gridwar/internal/repository"
	"github.com/freeeve/gridwar/pkg/tactics"
)

// loadAggregate assembles the in-memory match aggregate the engine operates
// on: match row, board with obstacles, living groups, templates, and the
// casualty tally.
func loadAggregate(ctx context.Context, r repository.Repos, m *model.Match) (*tactics.Match, error) {
	templates, err := r.Templates.List(ctx)
	if err != nil {
		return nil, err
	}
	tmplMap := make(map[string]*tactics.Template, len(templates))
	for i := range templates {
		tmplMap[templates[i].ID] = toEngineTemplate(&templates[i])
	}

	obstacles, err := r.Matches.ListObstacles(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	cells := make([]tactics.Cell, len(obstacles))
	for i, o := range obstacles {
		cells[i] = tactics.Cell{X: o.X, Y: o.Y}
	}
	board := tactics.NewBoard(m.BoardWidth, m.BoardHeight, cells)

	rows, err := r.Groups.ListByMatch(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	groups := make([]*tactics.Group, len(rows))
	for i, g := range rows {
		groups[i] = &tactics.Group{
			ID:          g.ID,
			PlayerID:    g.PlayerID,
			Pos:         tactics.Cell{X: g.X, Y: g.Y},
			TemplateID:  g.TemplateID,
			Count:       g.TotalCount,
			RemainingHP: g.RemainingHP,
			Morale:      g.Morale,
			Fatigue:     g.Fatigue,
			HasActed:    g.HasActed,
		}
	}

	agg := tactics.NewMatch(m.ID, m.CreatorID, m.OpponentID, tactics.Status(m.Status), board, tmplMap, groups)
	agg.CurrentTurn = m.CurrentTurn
	agg.Winner = m.Winner

	casualties, err := r.Groups.ListCasualties(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range casualties {
		if agg.Losses[c.PlayerID] == nil {
			agg.Losses[c.PlayerID] = make(map[string]int)
		}
		agg.Losses[c.PlayerID][c.TemplateID] += c.Count
	}
	return agg, nil
}

func toEngineTemplate(t *model.UnitTemplate) *tactics.Template {
	return &tactics.Template{
		ID:               t.ID,
		Name:             t.Name,
		Damage:           t.Damage,
		Defense:          t.Defense,
		Health:           t.Health,
		Range:            t.Range,
		Speed:            t.Speed,
		LuckChance:       t.LuckChance,
		CritChance:       t.CritChance,
		DodgeChance:      t.DodgeChance,
		CounterChance:    t.CounterChance,
		Kamikaze:         t.Kamikaze,
		Flying:           t.Flying,
		EffectiveAgainst: t.EffectiveAgainst,
		Price:            t.Price,
	}
}

// aggregateSnapshot captures the pre-action state needed to persist only
// what an engine operation changed.
type aggregateSnapshot struct {
	groupIDs map[string]bool
	losses   map[string]map[string]int
	status   tactics.Status
	turn     string
}

func snapshotAggregate(agg *tactics.Match) aggregateSnapshot {
	ids := make(map[string]bool, len(agg.Groups))
	for _, g := range agg.Groups {
		ids[g.ID] = true
	}
	losses := make(map[string]map[string]int, len(agg.Losses))
	for player, byTmpl := range agg.Losses {
		losses[player] = make(map[string]int, len(byTmpl))
		for tmpl, n := range byTmpl {
			losses[player][tmpl] = n
		}
	}
	return aggregateSnapshot{groupIDs: ids, losses: losses, status: agg.Status, turn: agg.CurrentTurn}
}

// persistAggregate writes every mutation of one engine operation back inside
// the caller's transaction: group updates and deletions, casualty deltas,
// match row transitions, reward settlement, and log entries.
func persistAggregate(ctx context.Context, r repository.Repos, agg *tactics.Match, before aggregateSnapshot) error {
	for _, g := range agg.Groups {
		row := &model.UnitGroup{
			ID:          g.ID,
			MatchID:     agg.ID,
			PlayerID:    g.PlayerID,
			TemplateID:  g.TemplateID,
			X:           g.Pos.X,
			Y:           g.Pos.Y,
			TotalCount:  g.Count,
			RemainingHP: g.RemainingHP,
			Morale:      g.Morale,
			Fatigue:     g.Fatigue,
			HasActed:    g.HasActed,
		}
		if err := r.Groups.Update(ctx, row); err != nil {
			return err
		}
		delete(before.groupIDs, g.ID)
	}
	// Whatever remains was wiped out this action.
	for id := range before.groupIDs {
		if err := r.Groups.Delete(ctx, id); err != nil {
			return err
		}
	}

	for player, byTmpl := range agg.Losses {
		for tmpl, n := range byTmpl {
			delta := n - before.losses[player][tmpl]
			if delta > 0 {
				if err := r.Groups.AddCasualties(ctx, agg.ID, player, tmpl, delta); err != nil {
					return err
				}
			}
		}
	}

	switch {
	case before.status == tactics.StatusWaiting && agg.Status == tactics.StatusInProgress:
		if err := r.Matches.SetInProgress(ctx, agg.ID, agg.CurrentTurn); err != nil {
			return err
		}
	case before.status != tactics.StatusCompleted && agg.Status == tactics.StatusCompleted:
		if err := r.Matches.SetCompleted(ctx, agg.ID, agg.Winner); err != nil {
			return err
		}
		if err := settleRewards(ctx, r, agg); err != nil {
			return err
		}
	case agg.CurrentTurn != before.turn:
		if err := r.Matches.SetCurrentTurn(ctx, agg.ID, agg.CurrentTurn); err != nil {
			return err
		}
	}

	return appendEvents(ctx, r, agg)
}

// settleRewards credits the winner's balance and updates both players'
// win/loss counters inside the completing transaction.
func settleRewards(ctx context.Context, r repository.Repos, agg *tactics.Match) error {
	loser := agg.Opponent(agg.Winner)
	if agg.Reward > 0 {
		if err := r.Users.CreditBalance(ctx, agg.Winner, agg.Reward); err != nil {
			return err
		}
	}
	return r.Users.RecordResult(ctx, agg.Winner, loser)
}

// appendEvents flushes the pending engine events to the match log.
func appendEvents(ctx context.Context, r repository.Repos, agg *tactics.Match) error {
	for _, e := range agg.Events {
		var data json.RawMessage
		if e.Data != nil {
			b, err := json.Marshal(e.Data)
			if err != nil {
				return fmt.Errorf("marshal event data: %w", err)
			}
			data = b
		}
		if err := r.Logs.Append(ctx, agg.ID, string(e.Kind), e.Message, data); err != nil {
			return err
		}
	}
	return nil
}
