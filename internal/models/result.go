package models

import (
	"sort"
	"time"
)

// MatchPosition is a half-open [Start, End) interval of rune offsets within a line.
type MatchPosition struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResult is one matching line. MatchPositions is never empty.
type SearchResult struct {
	Line           string          `json:"line"`
	LineNumber     int             `json:"line_number"`
	MatchPositions []MatchPosition `json:"match_positions"`
}

// WordCount is one entry of a word-frequency ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SearchStats aggregates a document and the results of one run over it.
type SearchStats struct {
	TotalLines    int            `json:"total_lines"`
	MatchedLines  int            `json:"matched_lines"`
	TotalMatches  int            `json:"total_matches"`
	WordFrequency map[string]int `json:"word_frequency"`
}

// MatchRate returns the percentage of lines that matched, or 0 for an empty document.
func (s *SearchStats) MatchRate() float64 {
	if s.TotalLines == 0 {
		return 0
	}
	return float64(s.MatchedLines) / float64(s.TotalLines) * 100
}

// MostCommonWords returns the n most frequent words, highest count first.
// Words with equal counts are ordered alphabetically.
func (s *SearchStats) MostCommonWords(n int) []WordCount {
	if n <= 0 || len(s.WordFrequency) == 0 {
		return nil
	}
	words := make([]WordCount, 0, len(s.WordFrequency))
	for w, c := range s.WordFrequency {
		words = append(words, WordCount{Word: w, Count: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if n < len(words) {
		words = words[:n]
	}
	return words
}

// RunRecord is one persisted search run.
type RunRecord struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	DocumentPath string    `json:"document_path" db:"document_path"`
	Query        string    `json:"query" db:"query"`
	Mode         string    `json:"mode" db:"mode"`
	ResultCount  int       `json:"result_count" db:"result_count"`
	TotalMatches int       `json:"total_matches" db:"total_matches"`
	ContentHash  string    `json:"content_hash" db:"content_hash"`
	DurationMs   int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SearchResponse is what the CLI and HTTP API render for one run.
type SearchResponse struct {
	Query        string          `json:"query"`
	DocumentPath string          `json:"document_path"`
	Mode         SearchMode      `json:"mode"`
	Results      []*SearchResult `json:"results"`
	Total        int             `json:"total"`
	Stats        *SearchStats    `json:"stats,omitempty"`
	TopWords     []WordCount     `json:"top_words,omitempty"`
	// Suggestions holds "did you mean" words from the document when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
	ContentHash string   `json:"content_hash"`
	QueryTime   int64    `json:"query_time_ms"`
	RunID       string   `json:"run_id,omitempty"`
	// RunCount is the number of runs recorded in history, including this one.
	RunCount int64 `json:"run_count,omitempty"`
	// DocumentRunCount is the number of those runs against this document.
	DocumentRunCount int64 `json:"document_run_count,omitempty"`
}
