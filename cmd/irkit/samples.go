package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irkit/internal/samples"
)

func newSamplesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in sample modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := a.table("", "name", "description")
			tbl.MaxCell = 72
			for _, s := range samples.All() {
				tbl.Row(s.Name, s.Description)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
			return err
		},
	}
}
