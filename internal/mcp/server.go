package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kodeklip/kodeklip/internal/database"
	"github.com/kodeklip/kodeklip/internal/gitcache"
	"github.com/kodeklip/kodeklip/internal/search"
)

// Server wraps the MCP server with repository cache and search functionality
type Server struct {
	server   *mcp.Server
	dbCtx    *database.Context
	manager  *gitcache.Manager
	searcher *search.Searcher
}

// NewServer creates a new MCP server instance
func NewServer() (*Server, error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	manager, err := gitcache.NewManager(dbCtx)
	if err != nil {
		_ = database.CloseDatabase(dbCtx)
		return nil, err
	}

	searcher, err := search.NewSearcher(dbCtx)
	if err != nil {
		_ = database.CloseDatabase(dbCtx)
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "kodeklip",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server:   mcpServer,
		dbCtx:    dbCtx,
		manager:  manager,
		searcher: searcher,
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	// kodeklip_search
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kodeklip_search",
		Description: "Search for a pattern in one managed repository",
	}, s.handleSearch)

	// kodeklip_search_all
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kodeklip_search_all",
		Description: "Search for a pattern across all managed repositories",
	}, s.handleSearchAll)

	// kodeklip_list
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kodeklip_list",
		Description: "List all managed repositories",
	}, s.handleList)

	// kodeklip_status
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kodeklip_status",
		Description: "Get detailed status for one managed repository",
	}, s.handleStatus)
}

// Input/Output types for each tool

type SearchInput struct {
	Repository    string   `json:"repository" jsonschema:"required,description=Alias of the repository to search"`
	Query         string   `json:"query" jsonschema:"required,description=Search pattern (regex by default)"`
	FileTypes     []string `json:"fileTypes,omitempty" jsonschema:"description=Restrict to ripgrep file types (e.g. py, go)"`
	Context       *int     `json:"context,omitempty" jsonschema:"description=Lines of context before and after each match"`
	CaseSensitive *bool    `json:"caseSensitive,omitempty" jsonschema:"description=Disable smart-case matching"`
	Literal       *bool    `json:"literal,omitempty" jsonschema:"description=Treat the query as a literal string instead of a regex"`
	MaxResults    *int     `json:"maxResults,omitempty" jsonschema:"description=Maximum number of results (default 1000)"`
}

type SearchOutput struct {
	Repository   string          `json:"repository"`
	Query        string          `json:"query"`
	TotalMatches int             `json:"totalMatches"`
	Results      []search.Result `json:"results"`
}

type SearchAllInput struct {
	Query         string   `json:"query" jsonschema:"required,description=Search pattern (regex by default)"`
	FileTypes     []string `json:"fileTypes,omitempty" jsonschema:"description=Restrict to ripgrep file types (e.g. py, go)"`
	CaseSensitive *bool    `json:"caseSensitive,omitempty" jsonschema:"description=Disable smart-case matching"`
	Literal       *bool    `json:"literal,omitempty" jsonschema:"description=Treat the query as a literal string instead of a regex"`
	MaxResults    *int     `json:"maxResults,omitempty" jsonschema:"description=Maximum number of results per repository (default 1000)"`
}

type SearchAllOutput struct {
	Query        string                     `json:"query"`
	TotalMatches int                        `json:"totalMatches"`
	Results      map[string][]search.Result `json:"results"`
}

type ListInput struct{}

type ListOutput struct {
	Repositories []ListEntry `json:"repositories"`
}

type ListEntry struct {
	Alias       string  `json:"alias"`
	URL         string  `json:"url"`
	LocalPath   string  `json:"localPath"`
	LastUpdated *string `json:"lastUpdated,omitempty"`
	Indexed     bool    `json:"indexed"`
	Valid       bool    `json:"valid"`
}

type StatusInput struct {
	Repository string `json:"repository" jsonschema:"required,description=Alias of the repository"`
}

type StatusOutput struct {
	Alias          string  `json:"alias"`
	LocalPath      string  `json:"localPath"`
	URL            string  `json:"url"`
	CurrentBranch  string  `json:"currentBranch"`
	TotalCommits   int     `json:"totalCommits"`
	IsDirty        bool    `json:"isDirty"`
	UntrackedFiles int     `json:"untrackedFiles"`
	HasRemote      bool    `json:"hasRemote"`
	RemoteURL      string  `json:"remoteUrl"`
	LastUpdated    *string `json:"lastUpdated,omitempty"`
	Indexed        bool    `json:"indexed"`
}

func optionsFromInput(fileTypes []string, contextLines, maxResults *int, caseSensitive, literal *bool) search.Options {
	opts := search.DefaultOptions()
	opts.FileTypes = fileTypes
	if contextLines != nil && *contextLines > 0 {
		opts.ContextBefore = *contextLines
		opts.ContextAfter = *contextLines
	}
	if caseSensitive != nil && *caseSensitive {
		opts.SmartCase = false
	}
	if literal != nil && *literal {
		opts.RegexMode = false
	}
	if maxResults != nil && *maxResults > 0 {
		opts.MaxResults = *maxResults
	}
	return opts
}

// Tool handlers

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	opts := optionsFromInput(input.FileTypes, input.Context, input.MaxResults, input.CaseSensitive, input.Literal)

	results, err := s.searcher.Search(ctx, input.Repository, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	return nil, SearchOutput{
		Repository:   input.Repository,
		Query:        input.Query,
		TotalMatches: len(results),
		Results:      results,
	}, nil
}

func (s *Server) handleSearchAll(ctx context.Context, req *mcp.CallToolRequest, input SearchAllInput) (*mcp.CallToolResult, SearchAllOutput, error) {
	opts := optionsFromInput(input.FileTypes, nil, input.MaxResults, input.CaseSensitive, input.Literal)

	results, err := s.searcher.SearchAll(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchAllOutput{}, fmt.Errorf("search failed: %w", err)
	}

	total := 0
	for _, repoResults := range results {
		total += len(repoResults)
	}

	return nil, SearchAllOutput{
		Query:        input.Query,
		TotalMatches: total,
		Results:      results,
	}, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	records, err := s.manager.Store().List(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list repositories: %w", err)
	}

	entries := make([]ListEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, ListEntry{
			Alias:       record.Alias,
			URL:         record.URL,
			LocalPath:   record.LocalPath,
			LastUpdated: formatTimePtr(record.LastUpdated),
			Indexed:     record.Indexed,
			Valid:       s.manager.RepositoryExists(ctx, record.Alias),
		})
	}

	return nil, ListOutput{Repositories: entries}, nil
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	result := s.manager.Status(ctx, input.Repository)
	if !result.OK {
		return nil, StatusOutput{}, fmt.Errorf("%s", result.Message)
	}

	status := result.Status
	return nil, StatusOutput{
		Alias:          status.Alias,
		LocalPath:      status.LocalPath,
		URL:            status.CatalogURL,
		CurrentBranch:  status.CurrentBranch,
		TotalCommits:   status.TotalCommits,
		IsDirty:        status.IsDirty,
		UntrackedFiles: status.UntrackedFiles,
		HasRemote:      status.HasRemote,
		RemoteURL:      status.RemoteURL,
		LastUpdated:    formatTimePtr(status.LastUpdated),
		Indexed:        status.Indexed,
	}, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
