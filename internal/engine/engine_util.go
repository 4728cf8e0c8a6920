package engine

import "slices"

// Clone deep-copies rec so callers can mutate the result freely.
func Clone(rec VetoRecord) VetoRecord {
	out := rec
	out.AllMaps = slices.Clone(rec.AllMaps)
	out.Bans = slices.Clone(rec.Bans)
	out.Picks = slices.Clone(rec.Picks)
	out.Scores = slices.Clone(rec.Scores)
	return out
}

// Cursor is the index of the next veto step.
func Cursor(rec VetoRecord) int {
	return len(rec.Bans) + len(rec.Picks)
}

// NextStep reports whose turn it is. ok is false once the veto is complete.
func NextStep(rec VetoRecord) (TurnStep, bool) {
	step, done := currentStep(rec, VetoOrder(rec.Format, len(rec.AllMaps), rec.StartingTeam))
	return step, !done
}

// FindEvent returns the first event of type typ.
func FindEvent(events []Event, typ EventType) (Event, bool) {
	i := slices.IndexFunc(events, func(e Event) bool { return e.Type == typ })
	if i < 0 {
		return Event{}, false
	}
	return events[i], true
}

// WithScore returns a copy of rec with the score for s.Map replaced or appended.
func WithScore(rec VetoRecord, s MapScore) VetoRecord {
	out := Clone(rec)
	for i := range out.Scores {
		if out.Scores[i].Map == s.Map {
			out.Scores[i] = s
			return out
		}
	}
	out.Scores = append(out.Scores, s)
	return out
}
