package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newRemoveCmd() *cobra.Command {
	var (
		force     bool
		keepFiles bool
	)

	cmd := &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove a repository from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			// Confirmation prompt
			if !force {
				var message string
				if keepFiles {
					message = fmt.Sprintf("Remove '%s' from the database? Local files will be kept. (y/N) ", alias)
				} else {
					message = fmt.Sprintf("Remove '%s' and delete its local files? (y/N) ", alias)
				}

				reader := bufio.NewReader(os.Stdin)
				fmt.Fprint(cmd.ErrOrStderr(), message)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return err
				}

				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled")
					return nil
				}
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

			result := manager.Remove(context.Background(), alias, keepFiles)
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "Remove the database record but keep local files")

	return cmd
}
