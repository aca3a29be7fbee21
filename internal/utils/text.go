package utils

import (
	"fmt"
	"strings"
)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// OneLine collapses every run of whitespace, newlines included, into a single space.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinLimit joins at most limit items and reports how many were left out.
func JoinLimit(items []string, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if limit <= 0 || len(items) <= limit {
		return strings.Join(items, ", ")
	}

	return fmt.Sprintf("%s +%d more", strings.Join(items[:limit], ", "), len(items)-limit)
}
