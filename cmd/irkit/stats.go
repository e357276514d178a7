package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"irkit/internal/pass"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <sample>",
		Short: "Count the IR nodes of a sample module by kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := loadSample(args[0])
			if err != nil {
				return err
			}
			results, err := pass.Run(cmd.Context(), m, []pass.Pass{pass.Count{}}, a.passOptions())
			if err != nil {
				return err
			}
			counts, ok := results[0].Value.(pass.Counts)
			if !ok {
				return fmt.Errorf("count pass returned %T", results[0].Value)
			}

			tbl := a.table(m.Name, "kind", "count")
			for _, kc := range counts.Sorted() {
				tbl.Row(kc.Kind, strconv.Itoa(kc.Count))
			}
			tbl.Row("total", strconv.Itoa(counts.Total()))
			_, err = fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
			return err
		},
	}
}
