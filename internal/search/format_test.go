package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatterTable(t *testing.T) {
	f := NewFormatter()
	results := []Result{
		{FilePath: "src/app.py", LineNumber: 12, LineContent: "def run():"},
		{FilePath: "src/util.py", LineNumber: 3, LineContent: "  " + strings.Repeat("x", 200)},
	}

	out := f.Table(results, "run")
	require.Contains(t, out, "src/app.py")
	require.Contains(t, out, "def run():")
	require.Contains(t, out, `"run"`)

	// Long content is truncated with an ellipsis marker.
	require.Contains(t, out, "...")
	require.NotContains(t, out, strings.Repeat("x", 200))
}

func TestFormatterDetailedLimitsResults(t *testing.T) {
	f := NewFormatter()

	results := make([]Result, 12)
	for i := range results {
		results[i] = Result{FilePath: "main.go", LineNumber: i + 1, LineContent: "line"}
	}

	out := f.Detailed(results, "line")
	require.Contains(t, out, "main.go:1 [go]")
	require.Contains(t, out, "main.go:10 [go]")
	require.NotContains(t, out, "main.go:11 [go]")
	require.Contains(t, out, "(2 more results not shown)")
}

func TestFormatterDetailedIncludesContext(t *testing.T) {
	f := NewFormatter()
	results := []Result{{
		FilePath:      "notes.txt",
		LineNumber:    5,
		LineContent:   "the match",
		ContextBefore: []string{"before"},
		ContextAfter:  []string{"after"},
	}}

	out := f.Detailed(results, "match")
	require.Contains(t, out, "notes.txt:5\n")
	require.NotContains(t, out, "[")
	require.Contains(t, out, "  before\n> the match\n  after\n")
}

func TestFormatterSummary(t *testing.T) {
	f := NewFormatter()
	out := f.Summary(map[string][]Result{
		"zeta":  {{}, {}},
		"alpha": {{}},
	}, "needle")

	require.Contains(t, out, "3 total matches")
	require.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"))
}

func TestExportDetailed(t *testing.T) {
	f := NewFormatter()
	results := []Result{{FilePath: "a.go", LineNumber: 7, LineContent: "  x := 1  "}}

	out := f.ExportDetailed(results, "x", "demo")
	require.Contains(t, out, "# KodeKlip Search Results")
	require.Contains(t, out, `# Query: "x" in repository: demo`)
	require.Contains(t, out, "# Found 1 matches")
	require.Contains(t, out, "## Result 1: a.go:7")
	require.Contains(t, out, "```\nx := 1\n```")
}

func TestExportTSV(t *testing.T) {
	f := NewFormatter()
	results := []Result{{FilePath: "a.go", LineNumber: 7, LineContent: "x\ty"}}

	out := f.ExportTSV(results, "x", "demo")
	require.Contains(t, out, "File\tLine\tContent")
	require.Contains(t, out, "a.go\t7\tx    y")
}
