package search

import (
	"sort"
	"strings"
)

// Sort criteria accepted by SortResults.
const (
	SortByFile      = "file"
	SortByLine      = "line"
	SortByRelevance = "relevance"
)

// ValidSortBy reports whether value names a known sort criterion.
func ValidSortBy(value string) bool {
	switch value {
	case SortByFile, SortByLine, SortByRelevance:
		return true
	default:
		return false
	}
}

// SortResults returns a sorted copy of results. Unknown criteria leave the
// original order untouched.
func SortResults(results []Result, by string) []Result {
	sorted := append([]Result(nil), results...)

	switch by {
	case SortByFile:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].FilePath < sorted[j].FilePath
		})
	case SortByLine:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].FilePath != sorted[j].FilePath {
				return sorted[i].FilePath < sorted[j].FilePath
			}
			return sorted[i].LineNumber < sorted[j].LineNumber
		})
	case SortByRelevance:
		sort.SliceStable(sorted, func(i, j int) bool {
			return relevanceScore(sorted[i]) > relevanceScore(sorted[j])
		})
	}

	return sorted
}

// relevanceScore is a crude heuristic: matches in files whose name suggests
// an entry point score higher, as do matches at the start of a line and
// matches in shallow paths.
func relevanceScore(result Result) int {
	score := 0

	lowerPath := strings.ToLower(result.FilePath)
	for _, keyword := range []string{"main", "index", "core"} {
		if strings.Contains(lowerPath, keyword) {
			score += 10
			break
		}
	}

	trimmed := strings.TrimSpace(result.LineContent)
	if trimmed != "" && !strings.HasPrefix(result.LineContent, " ") && !strings.HasPrefix(result.LineContent, "\t") {
		score += 5
	}

	depth := strings.Count(result.FilePath, "/")
	if depth < 20 {
		score += 20 - depth
	}

	return score
}

// Paginate returns the 1-based page of results of the given size. Out of
// range pages yield an empty slice.
func Paginate(results []Result, pageSize, page int) []Result {
	if pageSize <= 0 || page <= 0 {
		return results
	}

	start := (page - 1) * pageSize
	if start >= len(results) {
		return []Result{}
	}

	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
