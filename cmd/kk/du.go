package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newDuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "du",
		Short: "Show disk usage of the repository cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			manager, err := gitcache.NewManager(dbCtx)
			if err != nil {
				return err
			}

			report := manager.DiskUsage(context.Background())
			if !report.OK {
				return fmt.Errorf("%s", report.Message)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Message)
			if report.TotalRepos > 0 {
				fmt.Fprintf(out, "Average: %.2f MB per repository\n", report.AvgSizeMB)
			}

			if len(report.Largest) > 0 {
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleLight)
				t.SetTitle("Largest repositories")
				t.AppendHeader(table.Row{"Alias", "Size (MB)"})
				for _, repo := range report.Largest {
					t.AppendRow(table.Row{repo.Alias, fmt.Sprintf("%.2f", repo.SizeMB)})
				}
				t.Render()
			}

			return nil
		},
	}

	return cmd
}
