package engine

// Side is the outcome of a single map from the point of view of the record's
// team order.
type Side int

const (
	SideNone Side = 0
	Side1    Side = 1
	Side2    Side = 2
)

func (s Side) String() string {
	switch s {
	case Side1:
		return "team1"
	case Side2:
		return "team2"
	default:
		return "none"
	}
}

type winRule func(score1, score2 int) Side

// winRules is the complete variant dispatch. Variants missing here use cs2Rule.
var winRules = map[GameVariant]winRule{
	GameCS2:  cs2Rule,
	GameCSGO: cs2Rule,
	GameR6:   r6Rule,
}

// Winner reports which side has clinched a map with the given round scores.
// It is total over all ints and returns SideNone for anything that is not a
// finished map.
func Winner(score1, score2 int, variant GameVariant) Side {
	rule, ok := winRules[variant]
	if !ok {
		rule = cs2Rule
	}
	return rule(score1, score2)
}

// r6Rule: first to 7 with a two round lead. The lead is checked as
// other <= score-2, which cannot overflow once score >= 7.
func r6Rule(score1, score2 int) Side {
	switch {
	case score1 >= 7 && score2 <= score1-2:
		return Side1
	case score2 >= 7 && score1 <= score2-2:
		return Side2
	default:
		return SideNone
	}
}

// cs2Rule: 13 makes a side eligible, then the higher score wins. Overtime
// scores above 13 follow the same comparison.
func cs2Rule(score1, score2 int) Side {
	if score1 < 13 && score2 < 13 {
		return SideNone
	}
	switch {
	case score1 > score2:
		return Side1
	case score2 > score1:
		return Side2
	default:
		return SideNone
	}
}
