package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/search"
)

func newFindCmd() *cobra.Command {
	var (
		fileType      string
		contextLines  int
		caseSensitive bool
		regexMode     bool
		limit         int
		exclude       []string
		include       []string
		jsonOutput    bool
		outputFile    string
		sortBy        string
		pageSize      int
		page          int
		detailed      bool
		semantic      bool
	)

	cmd := &cobra.Command{
		Use:   "find <alias> <query>",
		Short: "Search for code patterns in a repository",
		Long: `Search a cached repository with ripgrep.

Examples:
  kk find python "async def"                        # Basic search
  kk find python "connection" -t py                 # Filter Python files
  kk find python "class.*Error"                     # Regex pattern
  kk find python "test" -e "*_test.py"              # Exclude test files
  kk find python "import" --include "*.py"          # Include only Python
  kk find python "function" --json -o results.json  # JSON output to file
  kk find python "def" --sort file --page-size 10   # Sort and paginate`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, query := args[0], args[1]

			if semantic {
				fmt.Fprintln(cmd.OutOrStdout(), "Semantic search is not implemented yet")
				return nil
			}

			if sortBy != "" && !search.ValidSortBy(sortBy) {
				return fmt.Errorf("invalid sort option: %s (valid values: file, line, relevance)", sortBy)
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			searcher, err := search.NewSearcher(dbCtx)
			if err != nil {
				return err
			}

			opts := search.DefaultOptions()
			if fileType != "" {
				opts.FileTypes = []string{fileType}
			}
			opts.ContextBefore = contextLines
			opts.ContextAfter = contextLines
			opts.IgnoreCase = !caseSensitive
			opts.SmartCase = !caseSensitive
			opts.RegexMode = regexMode
			opts.MaxResults = limit
			opts.ExcludePatterns = exclude
			opts.IncludePatterns = include

			results, err := searcher.Search(context.Background(), alias, query, opts)
			if err != nil {
				return err
			}

			if sortBy != "" {
				results = search.SortResults(results, sortBy)
			}
			if pageSize > 0 {
				results = search.Paginate(results, pageSize, page)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Found %d matches\n", len(results))

			if jsonOutput {
				return findOutputJSON(cmd, results, query, alias, outputFile)
			}

			formatter := search.NewFormatter()
			// Give wide terminals more room for the content column; the
			// file and line columns need roughly 40 columns.
			if width := getTerminalWidth(); width > 120 {
				formatter.ContentWidth = width - 40
			}
			var rendered string
			if detailed {
				rendered = formatter.Detailed(results, query)
			} else {
				rendered = formatter.Table(results, query)
			}

			if outputFile != "" {
				var exported string
				if detailed {
					exported = formatter.ExportDetailed(results, query, alias)
				} else {
					exported = formatter.ExportTSV(results, query, alias)
				}
				if err := os.WriteFile(outputFile, []byte(exported+"\n"), 0o644); err != nil {
					return fmt.Errorf("failed to save results: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", outputFile)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileType, "type", "t", "", "Filter by ripgrep file type (e.g. py, go)")
	cmd.Flags().IntVarP(&contextLines, "context", "c", 0, "Lines of context before and after each match")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Disable smart-case matching")
	cmd.Flags().BoolVar(&regexMode, "regex", true, "Treat the query as a regex (disable for literal search)")
	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum number of results")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "e", nil, "Glob patterns to exclude (repeatable)")
	cmd.Flags().StringArrayVar(&include, "include", nil, "Glob patterns to include (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Save results to a file")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort results by: file, line, relevance")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Paginate results (number per page)")
	cmd.Flags().IntVar(&page, "page", 1, "Page to display when paginating")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed result blocks instead of a table")
	cmd.Flags().BoolVarP(&semantic, "semantic", "s", false, "Use semantic search (not implemented)")

	return cmd
}

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

type findJSONOutput struct {
	Query        string          `json:"query"`
	Repository   string          `json:"repository"`
	TotalMatches int             `json:"total_matches"`
	Results      []search.Result `json:"results"`
}

func findOutputJSON(cmd *cobra.Command, results []search.Result, query, alias, outputFile string) error {
	payload := findJSONOutput{
		Query:        query,
		Repository:   alias,
		TotalMatches: len(results),
		Results:      results,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", outputFile)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
