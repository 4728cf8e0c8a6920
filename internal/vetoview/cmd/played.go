package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

func Played(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "played",
		Short: "List the maps that will be played, with scores",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := e.source.Load(cmd.Context())
			if err != nil {
				return err
			}
			printSeries(e, rec)
			return nil
		},
	}
}

func printSeries(e *env, rec *engine.VetoRecord) {
	s := engine.Standings(rec)
	if len(s.Maps) == 0 {
		return
	}

	team1, team2 := e.catalog.Tr(e.lang, "team.one"), e.catalog.Tr(e.lang, "team.two")
	if rec.Team1 != "" {
		team1 = rec.Team1
	}
	if rec.Team2 != "" {
		team2 = rec.Team2
	}

	for i, m := range s.Maps {
		line := fmt.Sprintf("%d. %s", i+1, m.Map)
		if m.Decider {
			line += " (" + e.catalog.Tr(e.lang, "action.decider") + ")"
		}
		if m.Scored {
			line += fmt.Sprintf("  %d:%d", m.Score1, m.Score2)
		}
		fmt.Fprintln(e.out, line)
	}

	fmt.Fprintf(e.out, "%s: %s %d:%d %s\n", e.catalog.Tr(e.lang, "series.score"), team1, s.Won1, s.Won2, team2)
	switch s.Winner {
	case engine.Side1:
		fmt.Fprintln(e.out, e.catalog.Tr(e.lang, "series.winner", "team", team1))
	case engine.Side2:
		fmt.Fprintln(e.out, e.catalog.Tr(e.lang, "series.winner", "team", team2))
	}
}
