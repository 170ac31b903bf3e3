package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/minigrep/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:        "the",
		DocumentPath: "poem.txt",
		Mode:         models.CaseSensitive(),
		Results: []*models.SearchResult{
			{Line: "the cat and the hat", LineNumber: 2, MatchPositions: []models.MatchPosition{{Start: 0, End: 3}, {Start: 12, End: 15}}},
			{Line: "over the moon", LineNumber: 5, MatchPositions: []models.MatchPosition{{Start: 5, End: 8}}},
		},
		Total:     3,
		QueryTime: 7,
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputText, "text": OutputText, "JSON": OutputJSON, "compact": OutputCompact} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), RenderOptions{Format: OutputText, ShowLineNumbers: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 3 matching lines in poem.txt (showing 2, 7ms)",
		"[1] 2: [the] cat and [the] hat",
		"    matches: 0:3 12:15",
		"[2] 5: over [the] moon",
		"    matches: 5:8",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_textWithoutLineNumbers(t *testing.T) {
	resp := sampleResponse()
	resp.Total = 2
	resp.RunCount = 4
	resp.DocumentRunCount = 2
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 2 matching lines in poem.txt (7ms)") {
		t.Errorf("header:\n%s", out)
	}
	if !strings.Contains(out, "[2] over [the] moon\n") {
		t.Errorf("result line:\n%s", out)
	}
	if !strings.Contains(out, "Run #4 (2 on this document)") {
		t.Errorf("run count:\n%s", out)
	}
}

func TestWriteSearchResults_noMatches(t *testing.T) {
	resp := &models.SearchResponse{Query: "rsut", DocumentPath: "poem.txt", Results: []*models.SearchResult{}, Suggestions: []string{"rust", "dust"}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, RenderOptions{Format: OutputText}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `No matches for "rsut" in poem.txt`) || !strings.Contains(out, "Did you mean: rust, dust?") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), RenderOptions{Format: OutputCompact}); err != nil {
		t.Fatal(err)
	}
	want := "poem.txt:2:the cat and the hat\npoem.txt:5:over the moon\n"
	if buf.String() != want {
		t.Errorf("compact output = %q, want %q", buf.String(), want)
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), RenderOptions{Format: OutputJSON}); err != nil {
		t.Fatal(err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "the" || decoded.Total != 3 || len(decoded.Results) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Results[0].MatchPositions[1] != (models.MatchPosition{Start: 12, End: 15}) {
		t.Errorf("positions = %v", decoded.Results[0].MatchPositions)
	}
	if decoded.Mode != models.CaseSensitive() {
		t.Errorf("mode = %v", decoded.Mode)
	}
}

func TestWriteSearchResults_color(t *testing.T) {
	var buf bytes.Buffer
	opts := RenderOptions{Format: OutputText, Styles: NewStyles(&buf, true)}
	if err := WriteSearchResults(&buf, sampleResponse(), opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI escapes:\n%q", out)
	}
	if strings.Contains(out, "[the]") {
		t.Errorf("colored output should not use brackets:\n%s", out)
	}
}

func TestWriteStats(t *testing.T) {
	stats := &models.SearchStats{TotalLines: 3, MatchedLines: 1, TotalMatches: 2}
	var buf bytes.Buffer
	WriteStats(&buf, stats, []models.WordCount{{Word: "the", Count: 4}}, 500*time.Millisecond)
	out := buf.String()
	for _, sub := range []string{"total lines:   3", "matched lines: 1", "total matches: 2", "match rate:    33.3%", "'the': 4", "6.00 lines/sec"} {
		if !strings.Contains(out, sub) {
			t.Errorf("stats output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	WriteStats(&buf, &models.SearchStats{}, nil, 0)
	out = buf.String()
	if !strings.Contains(out, "match rate:    0.0%") || strings.Contains(out, "lines/sec") || strings.Contains(out, "top words") {
		t.Errorf("empty stats output:\n%s", out)
	}
}

func TestWriteTopWords(t *testing.T) {
	var buf bytes.Buffer
	WriteTopWords(&buf, []models.WordCount{{Word: "hello", Count: 2}, {Word: "world", Count: 1}})
	want := "Top words:\n    'hello': 2\n    'world': 1\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteTopWords() = %q, want %q", got, want)
	}
}

func TestWriteHistory(t *testing.T) {
	runs := []*models.RunRecord{
		{ID: "r2", DocumentPath: "/docs/b.txt", Query: "world", Mode: "exact", ResultCount: 1, TotalMatches: 1, CreatedAt: time.Now()},
		{ID: "r1", DocumentPath: "/docs/a.txt", Query: "a very long query that will be truncated", Mode: "case_sensitive", ResultCount: 3, TotalMatches: 5, CreatedAt: time.Now()},
	}
	var buf bytes.Buffer
	if err := WriteHistory(&buf, runs, 10, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Showing 2 of 10 runs", "/docs/b.txt", `"world"`, "a very long query that...", "3 lines"} {
		if !strings.Contains(out, sub) {
			t.Errorf("history output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteHistory(&buf, nil, 0, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Runs  []*models.RunRecord `json:"runs"`
		Total int64               `json:"total"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Runs == nil || len(decoded.Runs) != 0 {
		t.Errorf("runs should be an empty array: %s", buf.String())
	}

	buf.Reset()
	_ = WriteHistory(&buf, nil, 0, OutputText)
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Errorf("empty history: %q", buf.String())
	}
}
