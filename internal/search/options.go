package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Options configures a single search invocation. The zero value is not
// useful; start from DefaultOptions.
type Options struct {
	FileTypes       []string
	ExcludeTypes    []string
	ContextBefore   int
	ContextAfter    int
	IgnoreCase      bool
	SmartCase       bool
	RegexMode       bool
	MaxResults      int
	IncludePatterns []string
	ExcludePatterns []string
}

// DefaultOptions returns the baseline configuration: smart-case regex search
// capped at 1000 results.
func DefaultOptions() Options {
	return Options{
		SmartCase:  true,
		RegexMode:  true,
		MaxResults: 1000,
	}
}

// cacheKey derives a stable key for one (alias, query, options) triple. List
// fields are sorted first so two logically equal option sets hash alike.
func cacheKey(alias, query string, opts Options) string {
	var b strings.Builder
	b.WriteString(alias)
	b.WriteByte(0)
	b.WriteString(query)
	b.WriteByte(0)

	writeList := func(values []string) {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		b.WriteString(strings.Join(sorted, ","))
		b.WriteByte(0)
	}

	writeList(opts.FileTypes)
	writeList(opts.ExcludeTypes)
	writeList(opts.IncludePatterns)
	writeList(opts.ExcludePatterns)

	fmt.Fprintf(&b, "%d:%d:%t:%t:%t:%d",
		opts.ContextBefore, opts.ContextAfter,
		opts.IgnoreCase, opts.SmartCase, opts.RegexMode,
		opts.MaxResults)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
