package tactics

// Placement describes one group to put on the board at match creation,
// drawn from a player's inventory by the front-end.
type Placement struct {
	PlayerID   string
	TemplateID string
	Pos        Cell
	Count      int
}

// ValidateSetup checks initial placements against the board: every group in
// bounds, off obstacles, on its own cell, with a known template and at least
// one individual. It is run once at match creation; the same invariants are
// preserved by every later action.
func ValidateSetup(board *Board, templates map[string]*Template, placements []Placement) error {
	if board.Width <= 0 || board.Height <= 0 {
		return ruleErr("setup", "board dimensions must be positive")
	}
	taken := make(map[Cell]bool, len(placements))
	for _, p := range placements {
		t := templates[p.TemplateID]
		if t == nil {
			return ruleErr("setup", "unknown template %s", p.TemplateID)
		}
		if p.Count <= 0 {
			return ruleErr("setup", "group of %s must have at least one individual", t.Name)
		}
		if !board.InBounds(p.Pos) {
			return ruleErr("setup", "position (%d,%d) is out of bounds", p.Pos.X, p.Pos.Y)
		}
		if board.ObstacleAt(p.Pos) {
			return ruleErr("setup", "position (%d,%d) holds an obstacle", p.Pos.X, p.Pos.Y)
		}
		if taken[p.Pos] {
			return ruleErr("setup", "position (%d,%d) is already taken", p.Pos.X, p.Pos.Y)
		}
		taken[p.Pos] = true
	}
	return nil
}
