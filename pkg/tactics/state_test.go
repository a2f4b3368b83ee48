package tactics

import "testing"

func TestAccept(t *testing.T) {
	b := NewBoard(5, 5, nil)
	g1 := group("g1", "alice", "swordsman", 0, 0, 1)
	g2 := group("g2", "bob", "swordsman", 4, 0, 1)
	g1.HasActed = true

	m := NewMatch("m1", "alice", "bob", StatusWaiting, b, testTemplates(), []*Group{g1, g2})

	if err := m.Accept("alice"); err == nil {
		t.Fatal("creator must not be able to accept their own challenge")
	}
	if m.Status != StatusWaiting {
		t.Fatal("rejected accept changed status")
	}

	if err := m.Accept("bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if m.Status != StatusInProgress {
		t.Errorf("status = %s, want in_progress", m.Status)
	}
	if m.CurrentTurn != "alice" {
		t.Errorf("first turn should belong to the creator, got %s", m.CurrentTurn)
	}
	if g1.HasActed {
		t.Error("accept must reset hasActed on every group")
	}

	if err := m.Accept("bob"); err == nil {
		t.Error("accepting twice must fail")
	}
}

func TestSkip_TurnSwitchProperty(t *testing.T) {
	b := NewBoard(8, 8, nil)
	a1 := group("a1", "alice", "swordsman", 0, 0, 1)
	a2 := group("a2", "alice", "archer", 0, 2, 1)
	b1 := group("b1", "bob", "swordsman", 7, 0, 1)
	b2 := group("b2", "bob", "archer", 7, 2, 1)
	m := newTestMatch(b, a1, a2, b1, b2)

	switched, err := m.Skip("alice", "a1")
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if switched {
		t.Fatal("turn switched with an unacted group remaining")
	}

	switched, err = m.Skip("alice", "a2")
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if !switched || m.CurrentTurn != "bob" {
		t.Fatal("turn must switch once every living group has acted")
	}
	// Immediately after switching, every group of the new current player is fresh.
	for _, g := range m.GroupsOf("bob") {
		if g.HasActed {
			t.Errorf("group %s should have hasActed reset", g.ID)
		}
	}

	if _, err := m.Skip("alice", "a1"); err == nil {
		t.Error("alice must not act on bob's turn")
	}
}

func TestSurrender(t *testing.T) {
	b := NewBoard(5, 5, nil)
	g1 := group("g1", "alice", "swordsman", 0, 0, 1)
	g2 := group("g2", "bob", "archer", 4, 0, 3)
	m := newTestMatch(b, g1, g2)
	m.recordLosses("alice", "swordsman", 2) // two individuals already lost

	if err := m.Surrender("carol"); err == nil {
		t.Fatal("outsider must not be able to surrender")
	}

	if err := m.Surrender("alice"); err != nil {
		t.Fatalf("surrender failed: %v", err)
	}
	if m.Status != StatusCompleted || m.Winner != "bob" {
		t.Errorf("status=%s winner=%s, want completed/bob", m.Status, m.Winner)
	}
	if m.CurrentTurn != "" {
		t.Error("completed match must not have a current turn")
	}
	// Reward: 0.9 * (50 * 2 swordsmen lost by alice) = 90.
	if m.Reward != 90 {
		t.Errorf("reward = %d, want 90", m.Reward)
	}

	if err := m.Surrender("bob"); err == nil {
		t.Error("surrender on a completed match must fail")
	}
}

func TestCompletion_WinnerIrreversible(t *testing.T) {
	b := NewBoard(5, 5, nil)
	g1 := group("g1", "alice", "swordsman", 0, 0, 3)
	g2 := group("g2", "bob", "archer", 1, 0, 1)
	g2.RemainingHP = 1
	m := newTestMatch(b, g1, g2)

	if _, err := m.Attack(neutralRNG(), "alice", "g1", "g2"); err != nil {
		t.Fatalf("attack failed: %v", err)
	}
	if m.Status != StatusCompleted || m.Winner != "alice" {
		t.Fatalf("expected alice to win, status=%s winner=%s", m.Status, m.Winner)
	}

	m.complete("bob")
	if m.Winner != "alice" {
		t.Error("winner must never change once set")
	}

	// No further actions on a completed match.
	if _, err := m.Skip("alice", "g1"); err == nil {
		t.Error("completed match must reject actions")
	}
}

func TestCompletion_RewardFromLoserCasualties(t *testing.T) {
	b := NewBoard(5, 5, nil)
	g1 := group("g1", "alice", "swordsman", 0, 0, 7)
	g2 := group("g2", "bob", "archer", 1, 0, 2) // price 60 each
	g2.RemainingHP = 1
	m := newTestMatch(b, g1, g2)
	m.Losses = map[string]map[string]int{"bob": {"archer": 1}} // prior casualty

	rng := &scriptRNG{vals: []float64{0.5, 0.999, 0.999, 0.999, 0.999}}
	if _, err := m.Attack(rng, "alice", "g1", "g2"); err != nil {
		t.Fatalf("attack failed: %v", err)
	}
	if m.Status != StatusCompleted {
		t.Fatal("match should complete when a side is wiped out")
	}
	// Alice's strike: max(7, 10*7 - 1) = 69 damage, enough to kill both
	// remaining archers (1 HP + 60 HP). Total bob losses: 3 archers.
	if m.Losses["bob"]["archer"] != 3 {
		t.Fatalf("losses = %v, want 3 archers", m.Losses)
	}
	// Reward: 0.9 * 60 * 3 = 162.
	if m.Reward != 162 {
		t.Errorf("reward = %d, want 162", m.Reward)
	}
}

func TestValidateSetup(t *testing.T) {
	board := NewBoard(5, 5, []Cell{{2, 2}})
	tmpl := testTemplates()

	tests := []struct {
		name       string
		placements []Placement
		wantErr    bool
	}{
		{"valid", []Placement{
			{PlayerID: "alice", TemplateID: "swordsman", Pos: Cell{0, 0}, Count: 3},
			{PlayerID: "bob", TemplateID: "archer", Pos: Cell{4, 4}, Count: 2},
		}, false},
		{"unknown template", []Placement{{PlayerID: "alice", TemplateID: "nope", Pos: Cell{0, 0}, Count: 1}}, true},
		{"zero count", []Placement{{PlayerID: "alice", TemplateID: "archer", Pos: Cell{0, 0}, Count: 0}}, true},
		{"out of bounds", []Placement{{PlayerID: "alice", TemplateID: "archer", Pos: Cell{5, 0}, Count: 1}}, true},
		{"on obstacle", []Placement{{PlayerID: "alice", TemplateID: "archer", Pos: Cell{2, 2}, Count: 1}}, true},
		{"shared cell", []Placement{
			{PlayerID: "alice", TemplateID: "archer", Pos: Cell{0, 0}, Count: 1},
			{PlayerID: "bob", TemplateID: "archer", Pos: Cell{0, 0}, Count: 1},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSetup(board, tmpl, tt.placements)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSetup() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestArmyValue(t *testing.T) {
	b := NewBoard(5, 5, nil)
	g1 := group("g1", "alice", "swordsman", 0, 0, 4) // 4 * 50
	g2 := group("g2", "alice", "archer", 0, 1, 2)    // 2 * 60
	g3 := group("g3", "bob", "dragon", 4, 4, 1)      // 400
	m := newTestMatch(b, g1, g2, g3)

	if got := m.ArmyValue("alice"); got != 320 {
		t.Errorf("ArmyValue(alice) = %d, want 320", got)
	}
	if got := m.ArmyValue("bob"); got != 400 {
		t.Errorf("ArmyValue(bob) = %d, want 400", got)
	}
}
