package engine

type MapResult struct {
	Map     string `json:"map"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
	Scored  bool   `json:"scored"`
	Winner  Side   `json:"winner"`
	Decider bool   `json:"decider"`
}

type Series struct {
	Maps     []MapResult `json:"maps"`
	Won1     int         `json:"won1"`
	Won2     int         `json:"won2"`
	ToWin    int         `json:"toWin"`
	Winner   Side        `json:"winner"`
	Finished bool        `json:"finished"`
}

// Standings scores every played map of rec with the rules of rec.Game and
// works out the series score. A side takes the series once it has won a
// strict majority of the played maps.
func Standings(rec *VetoRecord) Series {
	played := PlayedMaps(rec)
	series := Series{Maps: make([]MapResult, 0, len(played))}
	if len(played) == 0 {
		return series
	}

	variant := ParseVariant(string(rec.Game))
	scores := make(map[string]MapScore, len(rec.Scores))
	for _, s := range rec.Scores {
		scores[s.Map] = s
	}

	for i, m := range played {
		res := MapResult{Map: m, Decider: isDecider(rec, i, m)}
		if s, ok := scores[m]; ok {
			res.Score1, res.Score2, res.Scored = s.Score1, s.Score2, true
			res.Winner = Winner(s.Score1, s.Score2, variant)
		}
		switch res.Winner {
		case Side1:
			series.Won1++
		case Side2:
			series.Won2++
		}
		series.Maps = append(series.Maps, res)
	}

	series.ToWin = len(played)/2 + 1
	switch {
	case series.Won1 >= series.ToWin:
		series.Winner = Side1
	case series.Won2 >= series.ToWin:
		series.Winner = Side2
	}
	decided := series.Won1 + series.Won2
	series.Finished = series.Winner != SideNone || decided == len(played)
	return series
}

// isDecider reports whether the i-th played map was left over rather than picked.
func isDecider(rec *VetoRecord, i int, m string) bool {
	if rec.Format == FormatBO1 {
		return true
	}
	return i >= len(rec.Picks) && !hasPick(*rec, m)
}
