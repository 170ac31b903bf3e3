package stats

import (
	"reflect"
	"testing"

	"github.com/hyperjump/minigrep/internal/models"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single", "one", []string{"one"}},
		{"trailing newline", "one\ntwo\n", []string{"one", "two"}},
		{"leading newline", "\nRust:", []string{"", "Rust:"}},
		{"blank middle", "a\n\nb", []string{"a", "", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"only newline", "\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	content := "Hello world\nRust is great\nProgramming with Rust\nHello again"
	results := []*models.SearchResult{
		{Line: "Rust is great", LineNumber: 2, MatchPositions: []models.MatchPosition{{Start: 0, End: 4}}},
		{Line: "Programming with Rust", LineNumber: 3, MatchPositions: []models.MatchPosition{{Start: 17, End: 21}}},
	}
	s := Analyze(content, results)
	if s.TotalLines != 4 {
		t.Errorf("TotalLines = %d, want 4", s.TotalLines)
	}
	if s.MatchedLines != 2 {
		t.Errorf("MatchedLines = %d, want 2", s.MatchedLines)
	}
	if s.TotalMatches != 2 {
		t.Errorf("TotalMatches = %d, want 2", s.TotalMatches)
	}
	if s.WordFrequency["hello"] != 2 || s.WordFrequency["rust"] != 2 {
		t.Errorf("WordFrequency = %v", s.WordFrequency)
	}
}

func TestAnalyze_EmptyDocument(t *testing.T) {
	s := Analyze("", nil)
	if s.TotalLines != 0 || s.MatchedLines != 0 || s.TotalMatches != 0 {
		t.Errorf("empty document stats = %+v", s)
	}
	if len(s.WordFrequency) != 0 {
		t.Errorf("empty document word frequency = %v", s.WordFrequency)
	}
}

func TestAnalyze_CountsEveryPosition(t *testing.T) {
	results := []*models.SearchResult{
		{Line: "the quick brown fox jumps over the lazy dog", LineNumber: 1,
			MatchPositions: []models.MatchPosition{{Start: 0, End: 3}, {Start: 31, End: 34}}},
	}
	s := Analyze("the quick brown fox jumps over the lazy dog", results)
	if s.TotalMatches != 2 || s.MatchedLines != 1 || s.TotalLines != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestWordFrequency(t *testing.T) {
	got := WordFrequency("Hello, hello! \"World\" 42 --- world's Café café")
	want := map[string]int{
		"hello":   2,
		"world":   1,
		"world's": 1,
		"café":    2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequency = %v, want %v", got, want)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	content := "a b a\nc a"
	first := Analyze(content, nil)
	second := Analyze(content, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze not deterministic: %+v vs %+v", first, second)
	}
	top := first.MostCommonWords(2)
	want := []models.WordCount{{Word: "a", Count: 3}, {Word: "b", Count: 1}}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("MostCommonWords(2) = %v, want %v", top, want)
	}
}
