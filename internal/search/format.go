package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

// detailedLimit caps how many results the detailed view renders.
const detailedLimit = 10

// defaultContentWidth is the display width budget for one content cell.
const defaultContentWidth = 80

var languageByExtension = map[string]string{
	"py":   "python",
	"js":   "javascript",
	"ts":   "typescript",
	"rs":   "rust",
	"go":   "go",
	"java": "java",
	"c":    "c",
	"cpp":  "cpp",
	"h":    "c",
	"hpp":  "cpp",
	"md":   "markdown",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"xml":  "xml",
	"html": "html",
	"css":  "css",
	"sql":  "sql",
	"sh":   "bash",
	"bash": "bash",
}

// LanguageForResult maps a result's file extension to a language tag, or an
// empty string when unknown.
func LanguageForResult(r Result) string {
	return languageByExtension[r.FileExtension()]
}

// Formatter renders search results for terminal and file output.
type Formatter struct {
	// ContentWidth is the truncation budget for the content column.
	ContentWidth int
}

func NewFormatter() *Formatter {
	return &Formatter{ContentWidth: defaultContentWidth}
}

// Table renders results as a bordered table with content truncated to a
// fixed display width.
func (f *Formatter) Table(results []Result, query string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	if query != "" {
		t.SetTitle("Search Results: %q", query)
	} else {
		t.SetTitle("Search Results")
	}

	t.AppendHeader(table.Row{"File", "Line", "Content"})
	for _, result := range results {
		content := runewidth.Truncate(strings.TrimSpace(result.LineContent), f.ContentWidth, "...")
		t.AppendRow(table.Row{result.FilePath, result.LineNumber, content})
	}

	return t.Render()
}

// Detailed renders the first few results as titled blocks, with context
// lines around the match and a language tag when the extension is known.
func (f *Formatter) Detailed(results []Result, query string) string {
	var b strings.Builder

	limit := len(results)
	if limit > detailedLimit {
		limit = detailedLimit
	}

	for i, result := range results[:limit] {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "%s:%d", result.FilePath, result.LineNumber)
		if language := LanguageForResult(result); language != "" {
			fmt.Fprintf(&b, " [%s]", language)
		}
		b.WriteString("\n")

		for _, line := range result.ContextBefore {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		fmt.Fprintf(&b, "> %s\n", result.LineContent)
		for _, line := range result.ContextAfter {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	if len(results) > limit {
		fmt.Fprintf(&b, "\n(%d more results not shown)\n", len(results)-limit)
	}

	return b.String()
}

// Summary renders per-repository match counts for a multi-repository search,
// sorted by alias, with a total in the title.
func (f *Formatter) Summary(resultsByRepo map[string][]Result, query string) string {
	aliases := make([]string, 0, len(resultsByRepo))
	total := 0
	for alias, results := range resultsByRepo {
		aliases = append(aliases, alias)
		total += len(results)
	}
	sort.Strings(aliases)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Search Summary: %q (%d total matches)", query, total)
	t.AppendHeader(table.Row{"Repository", "Matches"})
	for _, alias := range aliases {
		t.AppendRow(table.Row{alias, len(resultsByRepo[alias])})
	}

	return t.Render()
}

// ExportDetailed renders results as a markdown document suitable for saving
// to a file.
func (f *Formatter) ExportDetailed(results []Result, query, alias string) string {
	lines := []string{
		"# KodeKlip Search Results",
		fmt.Sprintf("# Query: %q in repository: %s", query, alias),
		fmt.Sprintf("# Found %d matches", len(results)),
		fmt.Sprintf("# Generated: %s", time.Now().UTC().Format(time.RFC3339)),
		"",
	}

	for i, result := range results {
		lines = append(lines,
			fmt.Sprintf("## Result %d: %s:%d", i+1, result.FilePath, result.LineNumber),
			"",
			"```",
			strings.TrimSpace(result.LineContent),
			"```",
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// ExportTSV renders results as a tab-separated table with a comment header.
// Tabs inside content are replaced so columns stay aligned.
func (f *Formatter) ExportTSV(results []Result, query, alias string) string {
	lines := []string{
		"# KodeKlip Search Results",
		fmt.Sprintf("# Query: %q in repository: %s", query, alias),
		fmt.Sprintf("# Found %d matches", len(results)),
		fmt.Sprintf("# Generated: %s", time.Now().UTC().Format(time.RFC3339)),
		"",
		"File\tLine\tContent",
	}

	for _, result := range results {
		content := strings.ReplaceAll(strings.TrimSpace(result.LineContent), "\t", "    ")
		lines = append(lines, fmt.Sprintf("%s\t%d\t%s", result.FilePath, result.LineNumber, content))
	}

	return strings.Join(lines, "\n")
}
