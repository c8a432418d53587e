package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed repositories",
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
			records, err := manager.Store().List(ctx)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return listOutputJSON(cmd, ctx, manager, records)
			case "table":
				listOutputTable(cmd, ctx, manager, records)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type listOutputEntry struct {
	Alias       string  `json:"alias"`
	URL         string  `json:"url"`
	LocalPath   string  `json:"local_path"`
	LastUpdated *string `json:"last_updated,omitempty"`
	Indexed     bool    `json:"indexed"`
	Valid       bool    `json:"valid"`
}

func listOutputJSON(cmd *cobra.Command, ctx context.Context, manager *gitcache.Manager, records []database.RepositoryRecord) error {
	var output []listOutputEntry

	for _, record := range records {
		item := listOutputEntry{
			Alias:     record.Alias,
			URL:       record.URL,
			LocalPath: record.LocalPath,
			Indexed:   record.Indexed,
			Valid:     manager.RepositoryExists(ctx, record.Alias),
		}
		if record.LastUpdated != nil {
			updated := record.LastUpdated.Format(time.RFC3339)
			item.LastUpdated = &updated
		}
		output = append(output, item)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func listOutputTable(cmd *cobra.Command, ctx context.Context, manager *gitcache.Manager, records []database.RepositoryRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Alias", "URL", "Updated", "Status"})

	for _, record := range records {
		updated := "never"
		if record.LastUpdated != nil {
			updated = record.LastUpdated.Format("2006-01-02 15:04:05")
		}

		// A record whose clone is missing or invalid needs a clean resync.
		status := "ok"
		if !manager.RepositoryExists(ctx, record.Alias) {
			status = "missing (run 'kk clean --sync')"
		}

		t.AppendRow(table.Row{record.Alias, record.URL, updated, status})
	}

	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "%d repositories\n", len(records))
}
