package tactics

// Match is the in-memory aggregate a single action operates on: the board,
// every living group, the turn bookkeeping, and the casualty tally that
// feeds reward settlement. The caller loads it, runs one action, and
// persists the whole thing atomically.
type Match struct {
	ID          string
	CreatorID   string
	OpponentID  string
	Status      Status
	CurrentTurn string // player ID, set iff Status == StatusInProgress
	Winner      string // player ID, set iff Status == StatusCompleted
	Reward      int    // credited to the winner on completion
	Rules       Rules

	Board     *Board
	Groups    []*Group
	Templates map[string]*Template

	// Losses counts dead individuals per player per template over the whole
	// match. It is the input to the reward formula.
	Losses map[string]map[string]int

	// Events accumulates log entries produced by the current action.
	Events []Event

	occupied map[Cell]*Group
}

// NewMatch assembles a match aggregate from loaded state and builds the
// occupancy index.
func NewMatch(id, creatorID, opponentID string, status Status, board *Board, templates map[string]*Template, groups []*Group) *Match {
	m := &Match{
		ID:         id,
		CreatorID:  creatorID,
		OpponentID: opponentID,
		Status:     status,
		Rules:      DefaultRules(),
		Board:      board,
		Groups:     groups,
		Templates:  templates,
		Losses:     make(map[string]map[string]int),
		occupied:   make(map[Cell]*Group, len(groups)),
	}
	for _, g := range groups {
		m.occupied[g.Pos] = g
	}
	return m
}

// Template returns the template for the given ID, or nil.
func (m *Match) Template(id string) *Template {
	return m.Templates[id]
}

// GroupByID returns the living group with the given ID, or nil.
func (m *Match) GroupByID(id string) *Group {
	for _, g := range m.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// GroupAt returns the living group occupying the cell, or nil.
func (m *Match) GroupAt(c Cell) *Group {
	return m.occupied[c]
}

// GroupsOf returns all living groups owned by the player.
func (m *Match) GroupsOf(playerID string) []*Group {
	var out []*Group
	for _, g := range m.Groups {
		if g.PlayerID == playerID {
			out = append(out, g)
		}
	}
	return out
}

// Opponent returns the other player's ID.
func (m *Match) Opponent(playerID string) string {
	if playerID == m.CreatorID {
		return m.OpponentID
	}
	return m.CreatorID
}

// HasPlayer reports whether the given player is part of this match.
func (m *Match) HasPlayer(playerID string) bool {
	return playerID == m.CreatorID || playerID == m.OpponentID
}

// ArmyValue returns the total template price of a player's living
// individuals. Front-ends use it to pick opponents of comparable strength.
func (m *Match) ArmyValue(playerID string) int {
	total := 0
	for _, g := range m.Groups {
		if g.PlayerID != playerID {
			continue
		}
		if t := m.Template(g.TemplateID); t != nil {
			total += t.Price * g.Count
		}
	}
	return total
}

// recordLosses adds dead individuals to the match casualty tally.
func (m *Match) recordLosses(playerID, templateID string, count int) {
	if count <= 0 {
		return
	}
	if m.Losses[playerID] == nil {
		m.Losses[playerID] = make(map[string]int)
	}
	m.Losses[playerID][templateID] += count
}

// moveGroup relocates a group and keeps the occupancy index in sync.
func (m *Match) moveGroup(g *Group, to Cell) {
	delete(m.occupied, g.Pos)
	g.Pos = to
	m.occupied[to] = g
}

// removeGroup deletes an emptied group from the board and the aggregate.
// Zero-count groups are never kept.
func (m *Match) removeGroup(g *Group) {
	delete(m.occupied, g.Pos)
	for i, other := range m.Groups {
		if other.ID == g.ID {
			m.Groups = append(m.Groups[:i], m.Groups[i+1:]...)
			break
		}
	}
}

// validateAction checks the preconditions shared by move, attack, and skip:
// the match is running, the actor owns the current turn and the group, and
// the group has not acted yet.
func (m *Match) validateAction(op, actor, groupID string) (*Group, *RuleError) {
	if m.Status != StatusInProgress {
		return nil, ruleErr(op, "match is not in progress")
	}
	if actor != m.CurrentTurn {
		return nil, ruleErr(op, "it is not your turn")
	}
	g := m.GroupByID(groupID)
	if g == nil {
		return nil, ruleErr(op, "group %s not found", groupID)
	}
	if g.PlayerID != actor {
		return nil, ruleErr(op, "group %s is not yours", groupID)
	}
	if g.HasActed {
		return nil, ruleErr(op, "group %s has already acted this turn", groupID)
	}
	return g, nil
}
