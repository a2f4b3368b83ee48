package tactics

// Status represents the overall match status.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// CombatRulesVersion identifies the combat formula set in effect.
// Version 2 is the affected-units defense scaling; version 1 was the
// plain additive "damage minus defense" and is no longer implemented.
const CombatRulesVersion = 2

// Cell is a board coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanDist returns the Manhattan distance between two cells.
func (c Cell) ManhattanDist(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Template holds the immutable combat stats of a unit type. Templates are
// reference data maintained outside the engine; prices come from an external
// pricing tool and are never recomputed here.
type Template struct {
	ID               string
	Name             string
	Damage           int
	Defense          int
	Health           int
	Range            int
	Speed            int
	LuckChance       float64 // 0..1
	CritChance       float64 // 0..1
	DodgeChance      float64 // 0..1
	CounterChance    float64 // 0..1
	Kamikaze         bool
	Flying           bool
	EffectiveAgainst string // template ID this unit gets a damage bonus against, "" = none
	Price            int
}

// Group is a stack of identical living individuals sharing one position.
// RemainingHP is the hit points of the currently wounded individual; it is
// refilled to Template.Health each time an individual dies.
type Group struct {
	ID         string
	PlayerID   string
	Pos        Cell
	TemplateID string
	Count      int
	RemainingHP int
	Morale     int // 0..100
	Fatigue    int // 0..100
	HasActed   bool
}

// Rules holds engine configuration choices that are deliberately not
// hard-coded. FlyingIgnoresLOS controls whether flying attackers see over
// obstacles when targeting; flying always traverses obstacles when moving.
type Rules struct {
	FlyingIgnoresLOS bool
}

// DefaultRules returns the standard rule configuration.
func DefaultRules() Rules {
	return Rules{FlyingIgnoresLOS: false}
}

// RNG supplies randomness for combat resolution. math/rand's *Rand satisfies
// it; tests inject fixed sequences for deterministic replay.
type RNG interface {
	Float64() float64
}
