package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <alias>",
		Short: "Show detailed status for a repository",
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

			result := manager.Status(context.Background(), args[0])
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			printStatus(cmd, result.Status)
			return nil
		},
	}

	return cmd
}

func printStatus(cmd *cobra.Command, status gitcache.RepoStatus) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Repository: %s\n", status.Alias)
	fmt.Fprintf(out, "Path:       %s\n", status.LocalPath)
	fmt.Fprintf(out, "Branch:     %s\n", status.CurrentBranch)
	fmt.Fprintf(out, "Commits:    %d\n", status.TotalCommits)

	worktree := "clean"
	if status.IsDirty {
		worktree = fmt.Sprintf("dirty (%d untracked)", status.UntrackedFiles)
	}
	fmt.Fprintf(out, "Worktree:   %s\n", worktree)

	if status.HasRemote {
		fmt.Fprintf(out, "Remote:     %s\n", status.RemoteURL)
	} else {
		fmt.Fprintln(out, "Remote:     none")
	}

	updated := "never"
	if status.LastUpdated != nil {
		updated = status.LastUpdated.Format(time.RFC3339)
	}
	fmt.Fprintf(out, "Updated:    %s\n", updated)
	fmt.Fprintf(out, "Indexed:    %t\n", status.Indexed)
}
