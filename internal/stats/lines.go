// Package stats computes aggregate counters and word frequencies for a searched document.
package stats

import "strings"

// SplitLines splits content into lines. Lines are separated by "\n"; a trailing "\r"
// is dropped from each line, and a trailing newline does not start an extra line.
// The empty document has no lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
