package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url> <alias>",
		Short: "Clone a repository into the local cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, alias := args[0], args[1]

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

			result := manager.Clone(context.Background(), url, alias)
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	return cmd
}
