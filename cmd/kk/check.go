package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <alias>",
		Short: "Check whether a repository has remote updates",
		Long:  "Fetches from the remote and reports whether new changes are available,\nwithout modifying the working tree or the catalog.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result := manager.CheckRemoteUpdates(context.Background(), args[0])
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	return cmd
}
