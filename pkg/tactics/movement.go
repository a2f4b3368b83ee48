package tactics

// ReachableCells runs a breadth-first search from the group's position over
// the 4-neighbor grid, bounded by the template's speed. A cell blocks
// expansion if it is off the board, occupied by any living group, or holds
// an obstacle the unit cannot fly over. Flying units traverse obstacle cells
// but may not stop on one, so those cells are excluded from the result.
// The origin is excluded.
func (m *Match) ReachableCells(g *Group) map[Cell]bool {
	t := m.Template(g.TemplateID)
	if t == nil || t.Speed <= 0 {
		return map[Cell]bool{}
	}

	reachable := make(map[Cell]bool)
	visited := map[Cell]bool{g.Pos: true}
	frontier := []Cell{g.Pos}

	for step := 0; step < t.Speed && len(frontier) > 0; step++ {
		var next []Cell
		for _, c := range frontier {
			for _, n := range neighbors(c) {
				if visited[n] {
					continue
				}
				visited[n] = true
				if !m.Board.InBounds(n) {
					continue
				}
				if m.GroupAt(n) != nil {
					continue
				}
				if m.Board.ObstacleAt(n) {
					if !t.Flying {
						continue
					}
					// Flying passes over but cannot land here.
					next = append(next, n)
					continue
				}
				reachable[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}
	return reachable
}

func neighbors(c Cell) [4]Cell {
	return [4]Cell{
		{c.X + 1, c.Y},
		{c.X - 1, c.Y},
		{c.X, c.Y + 1},
		{c.X, c.Y - 1},
	}
}

// Move relocates a group to a reachable cell. The reachable set is
// recomputed here; the caller's idea of reachability is never trusted.
// Returns whether the turn switched as a result.
func (m *Match) Move(actor, groupID string, target Cell) (bool, error) {
	g, rerr := m.validateAction("move", actor, groupID)
	if rerr != nil {
		return false, rerr
	}
	if !m.ReachableCells(g)[target] {
		return false, ruleErr("move", "cell (%d,%d) is not reachable", target.X, target.Y)
	}

	from := g.Pos
	m.moveGroup(g, target)
	g.HasActed = true
	m.logData(EventMove, map[string]any{
		"group": g.ID, "from_x": from.X, "from_y": from.Y, "to_x": target.X, "to_y": target.Y,
	}, "%s moved from (%d,%d) to (%d,%d)", m.groupLabel(g), from.X, from.Y, target.X, target.Y)

	return m.endTurnIfExhausted(), nil
}

// groupLabel names a group for log messages.
func (m *Match) groupLabel(g *Group) string {
	if t := m.Template(g.TemplateID); t != nil {
		return t.Name
	}
	return g.ID
}
