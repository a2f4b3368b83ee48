package tactics

// Accept moves a waiting match into play. Only the invited player can
// accept. The creator takes the first turn with every group fresh.
func (m *Match) Accept(actor string) error {
	if m.Status != StatusWaiting {
		return ruleErr("accept", "match is not waiting for acceptance")
	}
	if actor != m.OpponentID {
		return ruleErr("accept", "only the invited player can accept")
	}
	if len(m.GroupsOf(m.CreatorID)) == 0 || len(m.GroupsOf(m.OpponentID)) == 0 {
		return ruleErr("accept", "both sides need at least one group")
	}

	m.Status = StatusInProgress
	m.CurrentTurn = m.CreatorID
	for _, g := range m.Groups {
		g.HasActed = false
	}
	m.logf(EventAccept, "match accepted, battle begins")
	return nil
}

// Skip marks a group as having acted without moving or attacking.
// Returns whether the turn switched.
func (m *Match) Skip(actor, groupID string) (bool, error) {
	g, rerr := m.validateAction("skip", actor, groupID)
	if rerr != nil {
		return false, rerr
	}
	g.HasActed = true
	m.logf(EventSkip, "%s holds position", m.groupLabel(g))
	return m.endTurnIfExhausted(), nil
}

// Surrender immediately completes a running match with the opponent as
// winner. Declining a still-waiting challenge is handled by deleting the
// match, not here.
func (m *Match) Surrender(actor string) error {
	if m.Status != StatusInProgress {
		return ruleErr("surrender", "match is not in progress")
	}
	if !m.HasPlayer(actor) {
		return ruleErr("surrender", "you are not part of this match")
	}
	m.logf(EventSurrender, "player %s surrenders", actor)
	m.complete(m.Opponent(actor))
	return nil
}

// endTurnIfExhausted hands the turn over once every living group of the
// current player has acted, resetting the other side's flags.
func (m *Match) endTurnIfExhausted() bool {
	if m.Status != StatusInProgress {
		return false
	}
	for _, g := range m.GroupsOf(m.CurrentTurn) {
		if !g.HasActed {
			return false
		}
	}
	next := m.Opponent(m.CurrentTurn)
	for _, g := range m.GroupsOf(next) {
		g.HasActed = false
	}
	m.CurrentTurn = next
	m.logf(EventTurnSwitch, "turn passes to player %s", next)
	return true
}

// complete finalizes the match: the winner is set once and never changes,
// and the reward is computed from the loser's casualties. The 10% cut
// never reaches either player.
func (m *Match) complete(winner string) {
	if m.Status == StatusCompleted {
		return
	}
	m.Status = StatusCompleted
	m.Winner = winner
	m.CurrentTurn = ""
	m.Reward = m.rewardFor(winner)
	m.logData(EventGameEnd, map[string]any{
		"winner": winner, "reward": m.Reward,
	}, "player %s wins the match (reward %d)", winner, m.Reward)
}

// rewardFor computes 90% of the total template price of every individual
// the losing side lost during the match.
func (m *Match) rewardFor(winner string) int {
	loser := m.Opponent(winner)
	total := 0
	for templateID, count := range m.Losses[loser] {
		if t := m.Template(templateID); t != nil {
			total += t.Price * count
		}
	}
	return total * 9 / 10
}
