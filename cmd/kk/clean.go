package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newCleanCmd() *cobra.Command {
	var sync bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove orphaned cache directories",
		Long:  "Deletes cache directories that no longer have a database record.\nWith --sync, also removes database records whose local clone is gone.",
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

			ctx := context.Background()
			out := cmd.OutOrStdout()

			report := manager.CleanupOrphanedFiles(ctx)
			if !report.OK {
				return fmt.Errorf("%s", report.Message)
			}
			fmt.Fprintln(out, report.Message)
			for _, failed := range report.Failed {
				fmt.Fprintf(out, "  failed to remove %s: %s\n", failed.Directory, failed.Error)
			}

			if !sync {
				return nil
			}

			syncReport := manager.SyncDatabaseWithFilesystem(ctx)
			if !syncReport.OK {
				return fmt.Errorf("%s", syncReport.Message)
			}
			fmt.Fprintln(out, syncReport.Message)
			for _, alias := range syncReport.MissingRepos {
				fmt.Fprintf(out, "  removed record for missing clone: %s\n", alias)
			}
			for _, alias := range syncReport.InvalidRepos {
				fmt.Fprintf(out, "  removed record for invalid clone: %s\n", alias)
			}
			for _, alias := range syncReport.UpdatedRepos {
				fmt.Fprintf(out, "  updated stored path: %s\n", alias)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&sync, "sync", false, "Reconcile database records with the filesystem")

	return cmd
}
