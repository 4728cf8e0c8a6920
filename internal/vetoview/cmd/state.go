package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func State(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the current veto record as JSON",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := e.source.Load(cmd.Context())
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Fprintln(e.out, "{}")
				return nil
			}
			b, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, string(b))
			return nil
		},
	}
}
