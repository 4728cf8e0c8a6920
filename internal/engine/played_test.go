package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bans(maps ...string) []BanEntry {
	out := make([]BanEntry, 0, len(maps))
	for _, m := range maps {
		out = append(out, BanEntry{Map: m})
	}
	return out
}

func picks(maps ...string) []PickEntry {
	out := make([]PickEntry, 0, len(maps))
	for _, m := range maps {
		out = append(out, PickEntry{Map: m})
	}
	return out
}

func TestPlayedMaps(t *testing.T) {
	cases := []struct {
		name string
		rec  *VetoRecord
		want []string
	}{
		{
			name: "nil record",
			rec:  nil,
			want: []string{},
		},
		{
			name: "bo1 leftover map",
			rec:  &VetoRecord{Format: FormatBO1, AllMaps: []string{"A", "B", "C"}, Bans: bans("B", "C"), Team1: "x", Team2: "y"},
			want: []string{"A"},
		},
		{
			name: "bo1 all banned",
			rec:  &VetoRecord{Format: FormatBO1, AllMaps: []string{"A", "B", "C"}, Bans: bans("A", "B", "C"), Team1: "x", Team2: "y"},
			want: []string{},
		},
		{
			name: "bo1 empty pool",
			rec:  &VetoRecord{Format: FormatBO1, Team1: "x", Team2: "y"},
			want: []string{},
		},
		{
			name: "bo1 first unbanned wins when several remain",
			rec:  &VetoRecord{Format: FormatBO1, AllMaps: []string{"A", "B", "C"}, Bans: bans("A"), Team1: "x", Team2: "y"},
			want: []string{"B"},
		},
		{
			name: "bo2 picks only",
			rec:  &VetoRecord{Format: FormatBO2, AllMaps: []string{"A", "B", "C", "D"}, Bans: bans("X", "A"), Picks: picks("X", "Y"), Team1: "x", Team2: "y"},
			want: []string{"X", "Y"},
		},
		{
			name: "bo3 with decider",
			rec:  &VetoRecord{Format: FormatBO3, AllMaps: []string{"A", "B", "C", "D", "E"}, Bans: bans("A", "B"), Picks: picks("C", "D"), Team1: "x", Team2: "y"},
			want: []string{"C", "D", "E"},
		},
		{
			name: "bo3 fully drafted has no decider",
			rec:  &VetoRecord{Format: FormatBO3, AllMaps: []string{"A", "B", "C", "D"}, Bans: bans("A", "B"), Picks: picks("C", "D"), Team1: "x", Team2: "y"},
			want: []string{"C", "D"},
		},
		{
			name: "bo5 treated as general series",
			rec:  &VetoRecord{Format: FormatBO5, AllMaps: []string{"A", "B", "C", "D", "E", "F"}, Bans: bans("A"), Picks: picks("F", "B", "D", "C"), Team1: "x", Team2: "y"},
			want: []string{"F", "B", "D", "C", "E"},
		},
		{
			name: "unknown format treated as general series",
			rec:  &VetoRecord{Format: "bo7", AllMaps: []string{"A", "B"}, Picks: picks("B"), Team1: "x", Team2: "y"},
			want: []string{"B", "A"},
		},
		{
			name: "map in both bans and picks is played and never the decider",
			rec:  &VetoRecord{Format: FormatBO3, AllMaps: []string{"A", "B", "C"}, Bans: bans("A"), Picks: picks("A", "B"), Team1: "x", Team2: "y"},
			want: []string{"A", "B", "C"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlayedMaps(tc.rec))
		})
	}
}

func TestPlayedMaps_MissingTeams(t *testing.T) {
	for _, format := range []MapFormat{FormatBO1, FormatBO2, FormatBO3, FormatBO5} {
		rec := &VetoRecord{Format: format, AllMaps: []string{"A", "B", "C"}, Picks: picks("A"), Team1: "x"}
		assert.Empty(t, PlayedMaps(rec), "format %s without team2", format)

		rec.Team1, rec.Team2 = "", "y"
		assert.Empty(t, PlayedMaps(rec), "format %s without team1", format)
	}
}

func TestPlayedMaps_Idempotent(t *testing.T) {
	rec := &VetoRecord{Format: FormatBO3, AllMaps: []string{"A", "B", "C", "D", "E"}, Bans: bans("A", "B"), Picks: picks("C", "D"), Team1: "x", Team2: "y"}
	before := Clone(*rec)

	first := PlayedMaps(rec)
	second := PlayedMaps(rec)

	require.Equal(t, first, second)
	assert.Equal(t, before, *rec, "record must not be modified")
}
