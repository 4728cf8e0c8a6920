package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func Lang(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "lang de|en",
		Short:     "Switch the UI language of the running server",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"de", "en"},

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.source.SetLanguage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(e.out, e.catalog.Tr(args[0], "language."+args[0]))
			return nil
		},
	}
}
