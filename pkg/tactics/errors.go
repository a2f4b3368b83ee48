package tactics

import "fmt"

// RuleError describes why an action is illegal. It is a structured failure
// result: the engine never mutates state before returning one.
type RuleError struct {
	Op      string // "move", "attack", "skip", "accept", "surrender"
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Op, e.Message)
}

func ruleErr(op, format string, args ...any) *RuleError {
	return &RuleError{Op: op, Message: fmt.Sprintf(format, args...)}
}
