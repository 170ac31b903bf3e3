package search

import (
	"unicode"

	"github.com/hyperjump/minigrep/internal/models"
)

// FindAllMatches returns every occurrence of pattern in text as rune offsets.
// The search resumes one rune after each match start, so overlapping occurrences
// are reported ("aa" in "aaa" yields two). An empty pattern matches nothing.
//
// When caseSensitive is false both sides are folded rune by rune with unicode.ToLower.
// Folding never changes the rune count, so offsets are valid against the original text.
func FindAllMatches(text, pattern string, caseSensitive bool) []models.MatchPosition {
	if pattern == "" {
		return nil
	}
	hay := []rune(text)
	needle := []rune(pattern)
	if !caseSensitive {
		foldRunes(hay)
		foldRunes(needle)
	}

	var matches []models.MatchPosition
	for start := 0; start+len(needle) <= len(hay); {
		pos := indexRunes(hay[start:], needle)
		if pos < 0 {
			break
		}
		at := start + pos
		matches = append(matches, models.MatchPosition{Start: at, End: at + len(needle)})
		start = at + 1
	}
	return matches
}

func foldRunes(rs []rune) {
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
}

// indexRunes returns the index of the first occurrence of needle in hay, or -1.
func indexRunes(hay, needle []rune) int {
	n := len(needle)
outer:
	for i := 0; i+n <= len(hay); i++ {
		for j := 0; j < n; j++ {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
