package engine

import (
	"math"
	"testing"
)

func TestWinner_R6BelowThresholdIsNone(t *testing.T) {
	for s1 := 0; s1 <= 6; s1++ {
		for s2 := 0; s2 <= 6; s2++ {
			if got := Winner(s1, s2, GameR6); got != SideNone {
				t.Fatalf("Winner(%d, %d, r6) = %s, want none", s1, s2, got)
			}
		}
	}
}

func TestWinner(t *testing.T) {
	cases := []struct {
		name    string
		s1, s2  int
		variant GameVariant
		want    Side
	}{
		{"r6 clean win", 7, 5, GameR6, Side1},
		{"r6 margin too small", 8, 7, GameR6, SideNone},
		{"r6 extended win side1", 9, 7, GameR6, Side1},
		{"r6 extended win side2", 7, 9, GameR6, Side2},
		{"r6 7-6 still open", 7, 6, GameR6, SideNone},
		{"cs2 regulation", 13, 5, GameCS2, Side1},
		{"cs2 overtime", 16, 14, GameCS2, Side1},
		{"cs2 side2", 11, 13, GameCS2, Side2},
		{"cs2 tied overtime", 15, 15, GameCS2, SideNone},
		{"cs2 below threshold", 10, 3, GameCS2, SideNone},
		{"csgo uses cs2 rules", 16, 14, GameCSGO, Side1},
		{"unknown variant uses cs2 rules", 13, 2, GameVariant("valorant"), Side1},
		{"unknown variant below threshold", 12, 0, GameVariant(""), SideNone},
		{"negative scores", -5, -20, GameCS2, SideNone},
		{"negative r6", -1, 7, GameR6, Side2},
		{"huge scores", math.MaxInt, math.MinInt, GameCS2, Side1},
		{"huge r6 does not overflow into a win", math.MinInt, math.MaxInt, GameR6, Side2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Winner(tc.s1, tc.s2, tc.variant); got != tc.want {
				t.Fatalf("Winner(%d, %d, %s) = %s, want %s", tc.s1, tc.s2, tc.variant, got, tc.want)
			}
		})
	}
}
