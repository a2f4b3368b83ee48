package tactics

// Board is the fixed playing field: grid bounds plus the obstacle set laid
// down at match creation. Obstacles never move or disappear mid-match.
type Board struct {
	Width     int
	Height    int
	Obstacles map[Cell]bool
}

// NewBoard creates a board with the given dimensions and obstacles.
// Obstacles outside the bounds are ignored.
func NewBoard(width, height int, obstacles []Cell) *Board {
	b := &Board{Width: width, Height: height, Obstacles: make(map[Cell]bool, len(obstacles))}
	for _, c := range obstacles {
		if b.InBounds(c) {
			b.Obstacles[c] = true
		}
	}
	return b
}

// InBounds reports whether the cell lies on the board.
func (b *Board) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < b.Width && c.Y >= 0 && c.Y < b.Height
}

// ObstacleAt reports whether the cell holds an obstacle.
func (b *Board) ObstacleAt(c Cell) bool {
	return b.Obstacles[c]
}

// ObstacleCells returns the obstacle set as a slice.
func (b *Board) ObstacleCells() []Cell {
	cells := make([]Cell, 0, len(b.Obstacles))
	for c := range b.Obstacles {
		cells = append(cells, c)
	}
	return cells
}
