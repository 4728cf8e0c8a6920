package engine

// VetoOrder lays out who bans or picks at each step for a pool of poolSize
// maps. Teams alternate, beginning with starting (team1 when empty).
func VetoOrder(format MapFormat, poolSize int, starting Team) []TurnStep {
	var actions []Action
	switch format {
	case FormatBO1:
		actions = fillBans(nil, poolSize)
	case FormatBO2:
		actions = []Action{ActionBan, ActionBan, ActionPick, ActionPick}
	case FormatBO5:
		actions = fillBans([]Action{ActionBan, ActionBan, ActionPick, ActionPick, ActionPick, ActionPick}, poolSize)
	default:
		// bo3 and anything unrecognised
		actions = fillBans([]Action{ActionBan, ActionBan, ActionPick, ActionPick}, poolSize)
	}
	if len(actions) > poolSize {
		actions = actions[:max(poolSize, 0)]
	}

	team := Team1
	if starting == Team2 {
		team = Team2
	}
	order := make([]TurnStep, 0, len(actions))
	for _, a := range actions {
		order = append(order, TurnStep{Team: team, Action: a})
		team = team.Other()
	}
	return order
}

// fillBans appends bans until exactly one map of the pool is left unclaimed.
func fillBans(prefix []Action, poolSize int) []Action {
	actions := append([]Action(nil), prefix...)
	for len(actions) < poolSize-1 {
		actions = append(actions, ActionBan)
	}
	return actions
}
