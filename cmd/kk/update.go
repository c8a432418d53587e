package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newUpdateCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "update [alias]",
		Short: "Pull the latest changes for one or all repositories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("specify a repository alias or use --all")
			}
			if all && len(args) > 0 {
				return fmt.Errorf("cannot combine an alias with --all")
			}

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

			if !all {
				result := manager.Update(ctx, args[0])
				if !result.OK {
					return fmt.Errorf("%s", result.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
				return nil
			}

			records, err := manager.Store().List(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No repositories to update")
				return nil
			}

			// One failing repository must not stop the rest.
			failures := 0
			for _, record := range records {
				result := manager.Update(ctx, record.Alias)
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
				if !result.OK {
					failures++
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d repositories failed to update", failures, len(records))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Update every managed repository")

	return cmd
}
