package search

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/stats"
)

// Search runs the strategy selected by mode over content and returns the matching
// lines in document order. Every strategy returns nothing for an empty query.
func Search(mode models.SearchMode, query, content string) []*models.SearchResult {
	switch mode.Kind {
	case models.ModeCaseInsensitive:
		return searchCaseInsensitive(query, content)
	case models.ModeExact:
		return searchExact(query, content)
	case models.ModePrefixWildcard:
		pattern := mode.Pattern
		if pattern == "" {
			pattern = query
		}
		return searchPrefixWildcard(pattern, content)
	default:
		return searchCaseSensitive(query, content)
	}
}

// ModeName returns a human-readable strategy name for diagnostics.
func ModeName(mode models.SearchMode) string {
	switch mode.Kind {
	case models.ModeCaseInsensitive:
		return "case-insensitive search"
	case models.ModeExact:
		return "exact line search"
	case models.ModePrefixWildcard:
		return "prefix wildcard search"
	default:
		return "case-sensitive search"
	}
}

// scanLines calls match for each line and collects a result for every line with
// at least one position. Line numbers are 1-based.
func scanLines(content string, match func(line string) []models.MatchPosition) []*models.SearchResult {
	var results []*models.SearchResult
	for i, line := range stats.SplitLines(content) {
		positions := match(line)
		if len(positions) == 0 {
			continue
		}
		results = append(results, &models.SearchResult{
			Line:           line,
			LineNumber:     i + 1,
			MatchPositions: positions,
		})
	}
	return results
}

func searchCaseSensitive(query, content string) []*models.SearchResult {
	if query == "" {
		return nil
	}
	return scanLines(content, func(line string) []models.MatchPosition {
		return FindAllMatches(line, query, true)
	})
}

func searchCaseInsensitive(query, content string) []*models.SearchResult {
	if query == "" {
		return nil
	}
	return scanLines(content, func(line string) []models.MatchPosition {
		return FindAllMatches(line, query, false)
	})
}

// searchExact matches lines whose trimmed text equals query. The position spans
// the whole untrimmed line.
func searchExact(query, content string) []*models.SearchResult {
	if query == "" {
		return nil
	}
	return scanLines(content, func(line string) []models.MatchPosition {
		if strings.TrimSpace(line) != query {
			return nil
		}
		return []models.MatchPosition{{Start: 0, End: utf8.RuneCountInString(line)}}
	})
}

// searchPrefixWildcard handles "<prefix>*" patterns only. It is not a regular
// expression engine: a pattern without a trailing '*' falls back to a
// case-sensitive substring search, and a bare "*" matches nothing.
func searchPrefixWildcard(pattern, content string) []*models.SearchResult {
	if !strings.HasSuffix(pattern, "*") {
		return searchCaseSensitive(pattern, content)
	}
	prefix := strings.TrimRight(pattern, "*")
	if prefix == "" {
		return nil
	}
	end := utf8.RuneCountInString(prefix)
	return scanLines(content, func(line string) []models.MatchPosition {
		if !strings.HasPrefix(line, prefix) {
			return nil
		}
		return []models.MatchPosition{{Start: 0, End: end}}
	})
}
