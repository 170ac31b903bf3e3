package search

import (
	"strings"

	"github.com/hyperjump/minigrep/internal/models"
)

// Highlight wraps each matched span of line with open and close. Overlapping or
// adjacent spans are merged first; positions outside the line are clipped.
func Highlight(line string, positions []models.MatchPosition, open, close string) string {
	return HighlightFunc(line, positions, func(s string) string { return open + s + close })
}

// HighlightFunc is Highlight with each merged span rendered by mark.
func HighlightFunc(line string, positions []models.MatchPosition, mark func(string) string) string {
	spans := MergeSpans(positions)
	if len(spans) == 0 {
		return line
	}
	runes := []rune(line)
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s.Start >= len(runes) {
			break
		}
		end := s.End
		if end > len(runes) {
			end = len(runes)
		}
		b.WriteString(string(runes[prev:s.Start]))
		b.WriteString(mark(string(runes[s.Start:end])))
		prev = end
	}
	b.WriteString(string(runes[prev:]))
	return b.String()
}

// MergeSpans returns positions with overlapping or touching intervals combined.
// Input must be ordered by Start, as produced by the strategies.
func MergeSpans(positions []models.MatchPosition) []models.MatchPosition {
	var merged []models.MatchPosition
	for _, p := range positions {
		if p.Start < 0 || p.End <= p.Start {
			continue
		}
		if n := len(merged); n > 0 && p.Start <= merged[n-1].End {
			if p.End > merged[n-1].End {
				merged[n-1].End = p.End
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
