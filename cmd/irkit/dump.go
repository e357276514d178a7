package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irkit/internal/irdump"
	"irkit/internal/pass"
)

func newDumpCmd(a *app) *cobra.Command {
	var opts irdump.DumpOptions
	cmd := &cobra.Command{
		Use:   "dump <sample>",
		Short: "Print the textual listing of a sample module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := loadSample(args[0])
			if err != nil {
				return err
			}
			results, err := pass.Run(cmd.Context(), m, []pass.Pass{pass.Dump{Options: opts}}, a.passOptions())
			if err != nil {
				return err
			}
			listing, ok := results[0].Value.(string)
			if !ok {
				return fmt.Errorf("dump pass returned %T", results[0].Value)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), listing)
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.Edges, "edges", false, "annotate blocks with predecessors and successors")
	cmd.Flags().BoolVar(&opts.Tables, "tables", false, "append vtables and itables")
	return cmd
}
