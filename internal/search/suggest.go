package search

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/hyperjump/minigrep/internal/stats"
)

// suggestion is a candidate replacement for a query term.
type suggestion struct {
	term      string
	distance  int
	frequency int
}

// Suggest returns "did you mean" alternatives for query drawn from the document's
// word frequencies. A single-word query yields up to limit close words; a multi-word
// query yields one corrected phrase when at least one term has a close word.
// Words farther than maxDistance edits are never suggested.
func Suggest(query string, freq map[string]int, maxDistance, limit int) []string {
	if maxDistance <= 0 || limit <= 0 || len(freq) == 0 {
		return nil
	}
	var terms []string
	for _, f := range strings.Fields(query) {
		if t := stats.Normalize(f); t != "" {
			terms = append(terms, t)
		}
	}
	switch len(terms) {
	case 0:
		return nil
	case 1:
		cands := candidates(terms[0], freq, maxDistance)
		if len(cands) > limit {
			cands = cands[:limit]
		}
		out := make([]string, len(cands))
		for i, c := range cands {
			out[i] = c.term
		}
		return out
	}

	corrected := make([]string, len(terms))
	changed := false
	for i, t := range terms {
		corrected[i] = t
		if _, known := freq[t]; known {
			continue
		}
		if cands := candidates(t, freq, maxDistance); len(cands) > 0 {
			corrected[i] = cands[0].term
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return []string{strings.Join(corrected, " ")}
}

// candidates lists document words within maxDistance of term, closest first, then
// most frequent, then alphabetical. The term itself is excluded.
func candidates(term string, freq map[string]int, maxDistance int) []suggestion {
	termLen := len([]rune(term))
	var out []suggestion
	for word, count := range freq {
		if word == term {
			continue
		}
		if diff := len([]rune(word)) - termLen; diff > maxDistance || -diff > maxDistance {
			continue
		}
		d := edlib.LevenshteinDistance(term, word)
		if d == 0 || d > maxDistance {
			continue
		}
		out = append(out, suggestion{term: word, distance: d, frequency: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].distance != out[j].distance {
			return out[i].distance < out[j].distance
		}
		if out[i].frequency != out[j].frequency {
			return out[i].frequency > out[j].frequency
		}
		return out[i].term < out[j].term
	})
	return out
}
