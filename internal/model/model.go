package model

import (
	"encoding/json"
	"time"
)

// User represents a registered player.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Balance     int       `json:"balance"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnitTemplate is reference data for one unit type. The catalog is
// maintained by the admin front-end; prices come from the external pricing
// tool. The engine only reads these rows.
type UnitTemplate struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Damage           int       `json:"damage"`
	Defense          int       `json:"defense"`
	Health           int       `json:"health"`
	Range            int       `json:"range"`
	Speed            int       `json:"speed"`
	LuckChance       float64   `json:"luck_chance"`
	CritChance       float64   `json:"crit_chance"`
	DodgeChance      float64   `json:"dodge_chance"`
	CounterChance    float64   `json:"counter_chance"`
	Kamikaze         bool      `json:"kamikaze"`
	Flying           bool      `json:"flying"`
	EffectiveAgainst string    `json:"effective_against,omitempty"`
	Price            int       `json:"price"`
	CreatedAt        time.Time `json:"created_at"`
}

// Match represents one battle between two players.
type Match struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	OpponentID  string     `json:"opponent_id"`
	BoardWidth  int        `json:"board_width"`
	BoardHeight int        `json:"board_height"`
	Status      string     `json:"status"` // waiting, in_progress, completed
	CurrentTurn string     `json:"current_turn,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// UnitGroup is a stack of identical living individuals on the board.
// Rows with zero individuals are never stored; the group is deleted instead.
type UnitGroup struct {
	ID          string `json:"id"`
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	TemplateID  string `json:"template_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	TotalCount  int    `json:"total_count"`
	RemainingHP int    `json:"remaining_hp"`
	Morale      int    `json:"morale"`
	Fatigue     int    `json:"fatigue"`
	HasActed    bool   `json:"has_acted"`
}

// Obstacle is a blocked cell, fixed at match creation.
type Obstacle struct {
	MatchID string `json:"match_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Casualty accumulates dead individuals per player per template over a
// match. It feeds the reward formula at completion.
type Casualty struct {
	MatchID    string `json:"match_id"`
	PlayerID   string `json:"player_id"`
	TemplateID string `json:"template_id"`
	Count      int    `json:"count"`
}

// LogEntry is one append-only narration entry of a match. Entries are never
// mutated or deleted except by cascading match deletion.
type LogEntry struct {
	ID        int64           `json:"id"`
	MatchID   string          `json:"match_id"`
	Kind      string          `json:"kind"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
