package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitpy-cse/assetreg/internal/table"
)

func NewLogsCommand(g *GlobalFlags) *cobra.Command {
	f := &ViewFlags{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show login activity with session statistics (HOD only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.Client()
			if err != nil {
				return err
			}
			logs, err := c.FetchLoginLogs(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats := table.ComputeLogStats(logs)
			fmt.Fprintf(out, "Total logins: %d  Active sessions: %d  Completed: %d  Avg duration: %dm\n\n",
				stats.Total, stats.Active, stats.Completed, stats.AverageMinutes)

			v := table.NewLogView()
			v.SetRows(logs)
			return show(out, v, f)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}
