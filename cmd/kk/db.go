package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	cmd.AddCommand(newDBInfoCmd())
	cmd.AddCommand(newDBClearCmd())

	return cmd
}

func newDBInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := database.GetInfo("")
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Database: %s\n", info.DatabasePath)
			fmt.Fprintf(out, "Data dir: %s (exists: %t)\n", info.DataDir, info.DirExists)
			if info.Exists {
				fmt.Fprintf(out, "Size:     %.2f MB\n", info.SizeMB)
			} else {
				fmt.Fprintln(out, "Size:     not created yet")
			}

			return nil
		},
	}
}

func newDBClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all database records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				reader := bufio.NewReader(os.Stdin)
				fmt.Fprint(cmd.ErrOrStderr(), "Delete ALL repository records? Local files are kept. (y/N) ")
				answer, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				if strings.TrimSpace(strings.ToLower(answer)) != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Clear cancelled")
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

			if err := database.ClearDatabase(dbCtx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
