package tactics

// AvailableTargets returns the enemy groups the given group can attack:
// within the template's range by Manhattan distance, with a clear line of
// sight. Any obstacle or living group (friend or foe) strictly between the
// two positions blocks. Flying attackers see over obstacles only when the
// match rules say so; living groups block them regardless.
func (m *Match) AvailableTargets(g *Group) []*Group {
	t := m.Template(g.TemplateID)
	if t == nil {
		return nil
	}
	ignoreObstacles := t.Flying && m.Rules.FlyingIgnoresLOS

	var targets []*Group
	for _, enemy := range m.Groups {
		if enemy.PlayerID == g.PlayerID {
			continue
		}
		if g.Pos.ManhattanDist(enemy.Pos) > t.Range {
			continue
		}
		if m.lineOfSightClear(g.Pos, enemy.Pos, ignoreObstacles) {
			targets = append(targets, enemy)
		}
	}
	return targets
}

// lineOfSightClear walks the straight line between two cells and reports
// whether every cell strictly between them is free of blockers.
func (m *Match) lineOfSightClear(from, to Cell, ignoreObstacles bool) bool {
	for _, c := range lineBetween(from, to) {
		if m.GroupAt(c) != nil {
			return false
		}
		if !ignoreObstacles && m.Board.ObstacleAt(c) {
			return false
		}
	}
	return true
}

// lineBetween returns the integer cells strictly between a and b along the
// straight line connecting them, using Bresenham interpolation. Endpoints
// are excluded.
func lineBetween(a, b Cell) []Cell {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	var cells []Cell
	x, y := a.X, a.Y
	err := dx - dy
	for {
		if x == b.X && y == b.Y {
			break
		}
		if !(x == a.X && y == a.Y) {
			cells = append(cells, Cell{x, y})
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return cells
}
