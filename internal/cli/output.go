package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/search"
	"github.com/hyperjump/minigrep/pkg/utils"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one "path:line:text" row per result, grep style.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an output format; "" means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

// RenderOptions controls how results are written.
type RenderOptions struct {
	Format          OutputFormat
	ShowLineNumbers bool
	Styles          *Styles
}

// WriteSearchResults writes response to w in the format chosen by opts.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, opts RenderOptions) error {
	switch opts.Format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, r := range response.Results {
			if _, err := fmt.Fprintf(w, "%s:%d:%s\n", response.DocumentPath, r.LineNumber, r.Line); err != nil {
				return err
			}
		}
		return nil
	default:
		writeSearchResultsText(w, response, opts)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, opts RenderOptions) {
	styles := opts.Styles
	if styles == nil {
		styles = PlainStyles()
	}
	if len(response.Results) == 0 {
		fmt.Fprintf(w, "No matches for %q in %s\n", response.Query, response.DocumentPath)
		if len(response.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
		}
		return
	}

	shown := len(response.Results)
	if response.Total > shown {
		fmt.Fprintf(w, "Found %d matching lines in %s (showing %d, %dms)\n",
			response.Total, response.DocumentPath, shown, response.QueryTime)
	} else {
		fmt.Fprintf(w, "Found %d matching lines in %s (%dms)\n", shown, response.DocumentPath, response.QueryTime)
	}
	fmt.Fprintln(w, styles.Rule(strings.Repeat("=", 50)))
	for i, r := range response.Results {
		line := search.HighlightFunc(r.Line, r.MatchPositions, styles.Match)
		if opts.ShowLineNumbers {
			line = styles.LineNumber(fmt.Sprintf("%d:", r.LineNumber)) + " " + line
		}
		fmt.Fprintf(w, "[%d] %s\n", i+1, line)
		if len(r.MatchPositions) > 0 {
			spans := make([]string, len(r.MatchPositions))
			for j, p := range r.MatchPositions {
				spans[j] = fmt.Sprintf("%d:%d", p.Start, p.End)
			}
			fmt.Fprintf(w, "    matches: %s\n", strings.Join(spans, " "))
		}
	}
	if response.RunCount > 0 {
		fmt.Fprintf(w, "Run #%d (%d on this document)\n", response.RunCount, response.DocumentRunCount)
	}
}

// WriteStats writes the statistics report. elapsed is the search time used for
// the lines-per-second figure; it is omitted when elapsed is zero.
func WriteStats(w io.Writer, stats *models.SearchStats, topWords []models.WordCount, elapsed time.Duration) {
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  total lines:   %d\n", stats.TotalLines)
	fmt.Fprintf(w, "  matched lines: %d\n", stats.MatchedLines)
	fmt.Fprintf(w, "  total matches: %d\n", stats.TotalMatches)
	fmt.Fprintf(w, "  match rate:    %.1f%%\n", stats.MatchRate())
	if len(topWords) > 0 {
		fmt.Fprintln(w, "  top words:")
		writeWordCounts(w, topWords)
	}
	if elapsed > 0 {
		fmt.Fprintf(w, "  speed:         %.2f lines/sec\n", float64(stats.TotalLines)/elapsed.Seconds())
	}
}

// WriteTopWords writes the most common words without the rest of the statistics.
func WriteTopWords(w io.Writer, topWords []models.WordCount) {
	fmt.Fprintln(w, "Top words:")
	writeWordCounts(w, topWords)
}

func writeWordCounts(w io.Writer, topWords []models.WordCount) {
	for _, wc := range topWords {
		fmt.Fprintf(w, "    '%s': %d\n", wc.Word, wc.Count)
	}
}

// WriteHistory writes recorded runs, newest first, as text or JSON. total is the
// number of runs stored, which may exceed len(runs).
func WriteHistory(w io.Writer, runs []*models.RunRecord, total int64, format OutputFormat) error {
	if format == OutputJSON {
		if runs == nil {
			runs = []*models.RunRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Runs  []*models.RunRecord `json:"runs"`
			Total int64               `json:"total"`
		}{runs, total})
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	fmt.Fprintf(w, "Showing %d of %d runs\n\n", len(runs), total)
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-16s %4d lines %4d matches  %-24q %s\n",
			run.CreatedAt.Local().Format(time.DateTime),
			run.Mode, run.ResultCount, run.TotalMatches,
			utils.Truncate(run.Query, 22), run.DocumentPath)
	}
	return nil
}
