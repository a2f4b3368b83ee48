package tactics

import "math"

// Morale and fatigue feedback applied after each strike.
const (
	moraleKillGain    = 10
	fatigueKillRelief = 5
	fatigueLossGain   = 10
	moraleLossDrop    = 5
)

// strikeResult summarizes one resolved strike (main attack or counter).
type strikeResult struct {
	Dodged bool
	Damage int
	Kills  int
}

// Attack resolves a full attack action: the main strike, an optional
// counterattack, kamikaze self-sacrifice, win detection, and the turn
// hand-off. Returns whether the turn switched.
func (m *Match) Attack(rng RNG, actor, attackerID, targetID string) (bool, error) {
	attacker, rerr := m.validateAction("attack", actor, attackerID)
	if rerr != nil {
		return false, rerr
	}
	target := m.GroupByID(targetID)
	if target == nil {
		return false, ruleErr("attack", "target group %s not found", targetID)
	}
	if target.PlayerID == actor {
		return false, ruleErr("attack", "cannot attack your own group")
	}
	inRange := false
	for _, candidate := range m.AvailableTargets(attacker) {
		if candidate.ID == target.ID {
			inRange = true
			break
		}
	}
	if !inRange {
		return false, ruleErr("attack", "target is out of range or line of sight is blocked")
	}

	// All preconditions passed; from here on state may mutate.
	main := m.resolveStrike(rng, attacker, target, 1.0, false)

	counterDone := false
	var counter strikeResult
	if !main.Dodged && target.Count > 0 {
		tt := m.Template(target.TemplateID)
		if rng.Float64() < tt.CounterChance {
			m.logf(EventCounter, "%s counterattacks", m.groupLabel(target))
			counter = m.resolveStrike(rng, target, attacker, tt.CounterChance, true)
			counterDone = true
		}
	}

	// Kamikaze pays one individual for every non-dodged strike it performed.
	if !main.Dodged {
		m.kamikazeSelfLoss(attacker)
	}
	if counterDone && !counter.Dodged && target.Count > 0 {
		m.kamikazeSelfLoss(target)
	}

	if attacker.Count > 0 {
		attacker.HasActed = true
	}

	// The defender's side is checked first: if the exchange empties both
	// sides (a kamikaze trading its last individual), the aggressor wins.
	if len(m.GroupsOf(target.PlayerID)) == 0 {
		m.complete(actor)
	} else if len(m.GroupsOf(actor)) == 0 {
		m.complete(target.PlayerID)
	}
	if m.Status == StatusCompleted {
		return false, nil
	}
	return m.endTurnIfExhausted(), nil
}

// resolveStrike runs the damage pipeline for one strike from att to def:
// randomized base damage, fatigue/morale scaling, effectiveness bonus, crit,
// luck, group-size scaling (kamikaze excepted), dodge, defense reduction,
// and HP-pool death accounting. scale is 1.0 for a normal attack and the
// counterattack chance for counters.
func (m *Match) resolveStrike(rng RNG, att, def *Group, scale float64, isCounter bool) strikeResult {
	at := m.Template(att.TemplateID)
	dt := m.Template(def.TemplateID)
	nAtt := att.Count

	base := float64(at.Damage) * (0.9 + 0.2*rng.Float64())
	base *= (1 - float64(att.Fatigue)/100*0.3) * (1 + float64(att.Morale)/100*0.2)

	if at.EffectiveAgainst != "" && at.EffectiveAgainst == dt.ID {
		base *= 1.5
		m.logf(EventEffective, "%s is effective against %s", at.Name, dt.Name)
	}

	pCrit := clamp01(at.CritChance + float64(att.Morale)/100*0.2 - float64(att.Fatigue)/100*0.2)
	if rng.Float64() < pCrit {
		base *= 2
		m.logf(EventCrit, "%s lands a critical hit", at.Name)
	}

	if rng.Float64() < at.LuckChance {
		base *= 1.5
		m.logf(EventLuck, "%s gets lucky", at.Name)
	}

	// A kamikaze stack always strikes with a single individual's damage.
	multiplied := base * float64(nAtt)
	if at.Kamikaze {
		multiplied = base
	}

	if rng.Float64() < dt.DodgeChance {
		m.logf(EventDodge, "%s dodges the attack from %s", dt.Name, at.Name)
		return strikeResult{Dodged: true}
	}

	multiplied *= scale

	affected := 1 + int(math.Floor(0.5*(multiplied-float64(dt.Health))/float64(dt.Health)))
	if affected < 1 {
		affected = 1
	}
	final := multiplied - float64(dt.Defense*affected)
	if final < float64(nAtt) {
		// At least one damage point per attacking individual.
		final = float64(nAtt)
	}
	damage := int(final)

	kills := m.applyDamage(def, damage)

	kind := EventAttack
	if isCounter {
		kind = EventCounter
	}
	m.logData(kind, map[string]any{
		"attacker": att.ID, "target": def.ID, "damage": damage, "kills": kills,
	}, "%s hits %s for %d damage (%d killed)", at.Name, dt.Name, damage, kills)

	m.applyBattleFeedback(att, def, kills)
	return strikeResult{Damage: damage, Kills: kills}
}

// applyDamage drains the defender's HP pool. Individuals die one at a time,
// each consuming the currently-wounded individual's remaining HP, which is
// refilled from the template for the next. An emptied group leaves the board.
func (m *Match) applyDamage(def *Group, damage int) int {
	dt := m.Template(def.TemplateID)
	kills := 0
	for damage > 0 && def.Count > 0 {
		if damage >= def.RemainingHP {
			damage -= def.RemainingHP
			def.Count--
			def.RemainingHP = dt.Health
			kills++
		} else {
			def.RemainingHP -= damage
			damage = 0
		}
	}
	m.recordLosses(def.PlayerID, def.TemplateID, kills)
	if def.Count == 0 {
		m.logf(EventKill, "%s is wiped out", dt.Name)
		m.removeGroup(def)
	}
	return kills
}

// applyBattleFeedback updates morale and fatigue after a strike: the killer
// rallies, the side that lost individuals tires and loses heart.
func (m *Match) applyBattleFeedback(att, def *Group, kills int) {
	if kills > 0 && att.Count > 0 {
		att.Morale = clampCounter(att.Morale + moraleKillGain)
		att.Fatigue = clampCounter(att.Fatigue - fatigueKillRelief)
	}
	if kills > 0 && def.Count > 0 {
		def.Fatigue = clampCounter(def.Fatigue + fatigueLossGain)
		def.Morale = clampCounter(def.Morale - moraleLossDrop)
	}
}

// kamikazeSelfLoss removes one individual from a kamikaze group after a
// non-dodged strike it performed, deleting the group if that was its last.
func (m *Match) kamikazeSelfLoss(g *Group) {
	t := m.Template(g.TemplateID)
	if t == nil || !t.Kamikaze || g.Count == 0 {
		return
	}
	g.Count--
	m.recordLosses(g.PlayerID, g.TemplateID, 1)
	m.logf(EventKamikaze, "%s sacrifices one of its own", t.Name)
	if g.Count == 0 {
		m.logf(EventKill, "%s is wiped out", t.Name)
		m.removeGroup(g)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampCounter(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
