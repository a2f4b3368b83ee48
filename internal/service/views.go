package service

import (
	"github.com/freeeve/gridwar/pkg/tactics"
)

// BoardSnapshot is the read-only board view consumed by the external
// renderer and other front-ends.
type BoardSnapshot struct {
	MatchID     string          `json:"match_id"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Status      string          `json:"status"`
	CurrentTurn string          `json:"current_turn,omitempty"`
	Winner      string          `json:"winner,omitempty"`
	Obstacles   []tactics.Cell  `json:"obstacles"`
	Groups      []SnapshotGroup `json:"groups"`
}

// SnapshotGroup is one living group in a board snapshot.
type SnapshotGroup struct {
	ID         string `json:"id"`
	Owner      string `json:"owner"`
	TemplateID string `json:"template_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	AliveCount int    `json:"alive_count"`
}

// Action modes returned by AvailableActions.
const (
	ModeWait   = "wait"   // nothing to do: opponent's turn, or waiting as creator
	ModeAccept = "accept" // the invited player may accept or decline
	ModePlay   = "play"   // the actor owns the turn; per-group options included
	ModeDone   = "done"   // match completed
)

// AvailableActions describes what the asking player can do right now.
type AvailableActions struct {
	Mode   string         `json:"mode"`
	Groups []GroupActions `json:"groups,omitempty"`
}

// GroupActions lists the legal options of one group on the actor's turn.
type GroupActions struct {
	GroupID        string         `json:"group_id"`
	CanMove        bool           `json:"can_move"`
	ReachableCells []tactics.Cell `json:"reachable_cells"`
	TargetIDs      []string       `json:"target_ids"`
}

func buildSnapshot(agg *tactics.Match) *BoardSnapshot {
	snap := &BoardSnapshot{
		MatchID:     agg.ID,
		Width:       agg.Board.Width,
		Height:      agg.Board.Height,
		Status:      string(agg.Status),
		CurrentTurn: agg.CurrentTurn,
		Winner:      agg.Winner,
		Obstacles:   agg.Board.ObstacleCells(),
		Groups:      make([]SnapshotGroup, 0, len(agg.Groups)),
	}
	for _, g := range agg.Groups {
		snap.Groups = append(snap.Groups, SnapshotGroup{
			ID:         g.ID,
			Owner:      g.PlayerID,
			TemplateID: g.TemplateID,
			X:          g.Pos.X,
			Y:          g.Pos.Y,
			AliveCount: g.Count,
		})
	}
	return snap
}

func buildActions(agg *tactics.Match, actor string) *AvailableActions {
	switch agg.Status {
	case tactics.StatusCompleted:
		return &AvailableActions{Mode: ModeDone}
	case tactics.StatusWaiting:
		if actor == agg.OpponentID {
			return &AvailableActions{Mode: ModeAccept}
		}
		return &AvailableActions{Mode: ModeWait}
	}
	if actor != agg.CurrentTurn {
		return &AvailableActions{Mode: ModeWait}
	}

	out := &AvailableActions{Mode: ModePlay}
	for _, g := range agg.GroupsOf(actor) {
		if g.HasActed {
			continue
		}
		cells := agg.ReachableCells(g)
		ga := GroupActions{
			GroupID:        g.ID,
			CanMove:        len(cells) > 0,
			ReachableCells: make([]tactics.Cell, 0, len(cells)),
		}
		for c := range cells {
			ga.ReachableCells = append(ga.ReachableCells, c)
		}
		for _, t := range agg.AvailableTargets(g) {
			ga.TargetIDs = append(ga.TargetIDs, t.ID)
		}
		out.Groups = append(out.Groups, ga)
	}
	return out
}
