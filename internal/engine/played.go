package engine

import "slices"

// PlayedMaps returns the maps that are actually contested for rec, in play
// order. It returns an empty slice when there is no valid veto session.
//
//   - bo1: the first pool map that was not banned.
//   - bo2: the picks, no decider.
//   - anything else: the picks plus the first pool map that was neither
//     picked nor banned, if one is left.
func PlayedMaps(rec *VetoRecord) []string {
	played := []string{}
	if rec == nil || rec.Team1 == "" || rec.Team2 == "" {
		return played
	}

	bans := make([]string, 0, len(rec.Bans))
	for _, b := range rec.Bans {
		bans = append(bans, b.Map)
	}

	switch rec.Format {
	case FormatBO1:
		for _, m := range rec.AllMaps {
			if !slices.Contains(bans, m) {
				return append(played, m)
			}
		}
		return played

	case FormatBO2:
		for _, p := range rec.Picks {
			played = append(played, p.Map)
		}
		return played
	}

	for _, p := range rec.Picks {
		played = append(played, p.Map)
	}
	picks := slices.Clone(played)
	for _, m := range rec.AllMaps {
		if !slices.Contains(picks, m) && !slices.Contains(bans, m) {
			return append(played, m)
		}
	}
	return played
}
