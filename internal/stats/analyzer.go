package stats

import (
	"strings"
	"unicode"

	"github.com/hyperjump/minigrep/internal/models"
)

// Analyze derives statistics from the document text and the results of a run over it.
// The word frequency profiles the whole document, independent of the query.
func Analyze(content string, results []*models.SearchResult) *models.SearchStats {
	total := 0
	for _, r := range results {
		total += len(r.MatchPositions)
	}
	return &models.SearchStats{
		TotalLines:    len(SplitLines(content)),
		MatchedLines:  len(results),
		TotalMatches:  total,
		WordFrequency: WordFrequency(content),
	}
}

// WordFrequency counts whitespace-separated words, lowercased and stripped of
// leading and trailing non-letter runes. Tokens that become empty are dropped.
func WordFrequency(content string) map[string]int {
	freq := make(map[string]int)
	for _, field := range strings.Fields(content) {
		word := Normalize(field)
		if word == "" {
			continue
		}
		freq[word]++
	}
	return freq
}

// Normalize lowercases a token and trims non-letter runes from both ends.
func Normalize(token string) string {
	return strings.TrimFunc(strings.ToLower(token), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
