// Package search runs keyword searches over cached repository clones by
// shelling out to ripgrep and parsing its line-oriented output.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kodeklip/kodeklip/internal/database"
)

// ErrRipgrepNotFound is returned by NewSearcher when no rg binary can be
// located. Searching is impossible without it, so construction fails hard.
var ErrRipgrepNotFound = errors.New("ripgrep binary not found, install it from https://github.com/BurntSushi/ripgrep#installation")

// ErrRepositoryNotFound reports an alias with no catalog record.
var ErrRepositoryNotFound = errors.New("repository not found")

// ErrRepositoryPathMissing reports a catalog record whose local clone is
// gone. Distinct from ErrRepositoryNotFound so callers can suggest a resync.
var ErrRepositoryPathMissing = errors.New("repository path does not exist")

// ExecError wraps a ripgrep invocation that failed for a reason other than
// finding zero matches.
type ExecError struct {
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ripgrep failed: %s", strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("ripgrep failed: %v", e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ripgrepCandidates are checked in order before falling back to PATH lookup.
var ripgrepCandidates = []string{
	"/usr/local/bin/rg",
	"/opt/homebrew/bin/rg",
	"/usr/bin/rg",
}

// Searcher executes searches against managed repositories and caches the
// parsed results per (alias, query, options) for a short TTL.
type Searcher struct {
	store  *database.RepositoryStore
	rgPath string
	cache  *resultCache
}

// NewSearcher builds a Searcher over the given catalog handle. It locates the
// rg binary up front and fails when none is available.
func NewSearcher(dbCtx *database.Context) (*Searcher, error) {
	rgPath, err := detectRipgrep()
	if err != nil {
		return nil, err
	}
	return &Searcher{
		store:  database.NewRepositoryStore(dbCtx),
		rgPath: rgPath,
		cache:  newResultCache(),
	}, nil
}

func detectRipgrep() (string, error) {
	for _, candidate := range ripgrepCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath("rg"); err == nil {
		return path, nil
	}
	return "", ErrRipgrepNotFound
}

// ClearCache drops all cached results.
func (s *Searcher) ClearCache() {
	s.cache.clear()
}

// Search runs one query against the repository registered under alias.
// Results come from the cache when an identical search ran within the TTL.
func (s *Searcher) Search(ctx context.Context, alias, query string, opts Options) ([]Result, error) {
	key := cacheKey(alias, query, opts)
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}

	record, err := s.store.Get(ctx, alias)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("repository %q: %w", alias, ErrRepositoryNotFound)
		}
		return nil, err
	}

	if _, err := os.Stat(record.LocalPath); err != nil {
		return nil, fmt.Errorf("repository %q at %s: %w", alias, record.LocalPath, ErrRepositoryPathMissing)
	}

	output, err := s.run(ctx, query, record.LocalPath, opts)
	if err != nil {
		return nil, err
	}

	results := parseOutput(output, record.LocalPath)
	s.cache.set(key, results)
	return results, nil
}

// SearchAll runs one query against every managed repository. Repositories
// that fail to search or yield no matches are excluded from the map.
func (s *Searcher) SearchAll(ctx context.Context, query string, opts Options) (map[string][]Result, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]Result)
	for _, record := range records {
		repoResults, err := s.Search(ctx, record.Alias, query, opts)
		if err != nil || len(repoResults) == 0 {
			continue
		}
		results[record.Alias] = repoResults
	}
	return results, nil
}

// buildArgs translates Options into a ripgrep argument vector. Output is
// always path:line:content so parsing stays uniform.
func buildArgs(query, root string, opts Options) []string {
	args := []string{"--with-filename", "--line-number"}

	for _, fileType := range opts.FileTypes {
		args = append(args, "--type", fileType)
	}
	for _, excludeType := range opts.ExcludeTypes {
		args = append(args, "--type-not", excludeType)
	}

	for _, pattern := range opts.IncludePatterns {
		args = append(args, "--glob", pattern)
	}
	for _, pattern := range opts.ExcludePatterns {
		args = append(args, "--glob", "!"+pattern)
	}

	if opts.ContextBefore > 0 {
		args = append(args, "-B", strconv.Itoa(opts.ContextBefore))
	}
	if opts.ContextAfter > 0 {
		args = append(args, "-A", strconv.Itoa(opts.ContextAfter))
	}

	// ignore-case wins over smart-case when both are set.
	if opts.IgnoreCase {
		args = append(args, "-i")
	} else if opts.SmartCase {
		args = append(args, "-S")
	}

	if !opts.RegexMode {
		args = append(args, "--fixed-strings")
	}

	if opts.MaxResults > 0 {
		args = append(args, "--max-count", strconv.Itoa(opts.MaxResults))
	}

	return append(args, query, root)
}

// run executes ripgrep. Exit code 1 with empty output means zero matches and
// is not an error; anything else non-zero is an ExecError.
func (s *Searcher) run(ctx context.Context, query, root string, opts Options) (string, error) {
	cmd := exec.CommandContext(ctx, s.rgPath, buildArgs(query, root, opts)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && strings.TrimSpace(stdout.String()) == "" {
		return "", nil
	}
	return "", &ExecError{Stderr: stderr.String(), Err: err}
}

// parseOutput converts ripgrep's path:line:content lines into Results.
// Malformed lines (context separators, unparsable line numbers) are skipped.
func parseOutput(output, root string) []Result {
	results := []Result{}

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}

		lineNumber, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		filePath := parts[0]
		if filepath.IsAbs(filePath) {
			if rel, err := filepath.Rel(root, filePath); err == nil && !strings.HasPrefix(rel, "..") {
				filePath = rel
			}
		}

		results = append(results, Result{
			FilePath:    filePath,
			LineNumber:  lineNumber,
			LineContent: parts[2],
		})
	}

	return results
}
