package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"irkit/internal/pass"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <sample>",
		Short: "Show the dispatch table layout of a sample module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, m, err := loadSample(args[0])
			if err != nil {
				return err
			}
			results, err := pass.Run(cmd.Context(), m, []pass.Pass{pass.TableStability{Rebuild: s.Build}}, a.passOptions())
			if err != nil {
				return err
			}
			unstable := make(map[string]bool)
			for _, d := range results[0].Bag.Items() {
				unstable[d.Primary.Object] = true
			}
			status := func(object string) string {
				if unstable[object] {
					return "changed"
				}
				return "stable"
			}

			tbl := a.table(m.Name, "structure", "table", "slots", "order")
			tbl.StatusColumn = 3
			for _, owner := range m.VTableOwners() {
				keys, _ := m.VTableKeys(owner)
				tbl.Row(owner, "vtable", strings.Join(keys, ", "), status("vtable "+owner))
			}
			for _, owner := range m.ITableOwners() {
				entries, _ := m.ITableKeys(owner)
				parts := make([]string, len(entries))
				for i, e := range entries {
					parts[i] = e.String()
				}
				tbl.Row(owner, "itable", strings.Join(parts, ", "), status("itable "+owner))
			}
			out := cmd.OutOrStdout()
			if tbl.Len() == 0 {
				_, err = fmt.Fprintf(out, "%s has no dispatch tables\n", m.Name)
				return err
			}
			_, err = fmt.Fprint(out, tbl.Render())
			return err
		},
	}
}
