package search

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Result is one matched line, with its path relative to the repository root.
type Result struct {
	FilePath      string   `json:"file_path"`
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	MatchStart    int      `json:"match_start"`
	MatchEnd      int      `json:"match_end"`
	ContextBefore []string `json:"context_before,omitempty"`
	ContextAfter  []string `json:"context_after,omitempty"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s:%d: %s", r.FilePath, r.LineNumber, strings.TrimSpace(r.LineContent))
}

// FileExtension returns the lowercase extension without the leading dot.
func (r Result) FileExtension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(r.FilePath), "."))
}
