package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

func Winner(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "winner score1 score2",
		Short: "Decide a single map from its round scores",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			s1, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("score1: %w", err)
			}
			s2, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("score2: %w", err)
			}
			game, _ := cmd.Flags().GetString("game")

			side := engine.Winner(s1, s2, engine.ParseVariant(game))
			fmt.Fprintf(e.out, "%d %s\n", int(side), side)
			return nil
		},
	}

	cmd.Flags().StringP("game", "g", string(engine.GameCS2), "Game variant: cs2, csgo or r6")
	return cmd
}
