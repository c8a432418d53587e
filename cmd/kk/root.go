package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "kk",
	Short:   "kodeklip - Surgical code context management",
	Long:    "kodeklip caches git repositories locally and searches them with ripgrep,\nextracting precise code context for LLM interactions.",
	Version: version,
}

func init() {
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newDuCmd())
	rootCmd.AddCommand(newDBCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newMCPCmd())
}
