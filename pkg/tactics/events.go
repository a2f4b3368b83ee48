package tactics

import "fmt"

// EventKind labels an entry in the match log.
type EventKind string

const (
	EventAccept     EventKind = "accept"
	EventMove       EventKind = "move"
	EventAttack     EventKind = "attack"
	EventEffective  EventKind = "effective"
	EventCrit       EventKind = "crit"
	EventLuck       EventKind = "luck"
	EventDodge      EventKind = "dodge"
	EventCounter    EventKind = "counter"
	EventKill       EventKind = "kill"
	EventKamikaze   EventKind = "kamikaze"
	EventSkip       EventKind = "skip"
	EventTurnSwitch EventKind = "turn_switch"
	EventSurrender  EventKind = "surrender"
	EventGameEnd    EventKind = "game_end"
)

// Event is one append-only narration entry. Data carries an optional
// structured snapshot for replay tooling.
type Event struct {
	Kind    EventKind
	Message string
	Data    map[string]any
}

// logf appends a plain event to the pending log.
func (m *Match) logf(kind EventKind, format string, args ...any) {
	m.Events = append(m.Events, Event{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// logData appends an event carrying a structured snapshot.
func (m *Match) logData(kind EventKind, data map[string]any, format string, args ...any) {
	m.Events = append(m.Events, Event{Kind: kind, Message: fmt.Sprintf(format, args...), Data: data})
}
