// Package integration runs searches through the full stack: config file, extractor, engine and SQLite history.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/minigrep/internal/config"
	"github.com/hyperjump/minigrep/internal/extract"
	"github.com/hyperjump/minigrep/internal/fileid"
	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/search"
	"github.com/hyperjump/minigrep/internal/storage"
)

func TestIntegration_Search(t *testing.T) {
	dir := t.TempDir()

	// TOML config with a database path relative to the config file.
	cfgPath := filepath.Join(dir, "minigrep.toml")
	saved := config.Default()
	saved.Storage.DatabasePath = "./history.db"
	saved.Search.Mode = "case_insensitive"
	saved.Search.TopWords = 2
	if err := config.Save(cfgPath, saved); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "history.db"); cfg.Storage.DatabasePath != want {
		t.Fatalf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}

	history, err := storage.NewSQLiteHistory(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer history.Close()

	engine := search.NewEngine(extract.NewExtractor(),
		search.WithHistory(history),
		search.WithSuggestions(cfg.Search.MaxSuggestionDistance, cfg.Search.MaxSuggestions),
	)
	ctx := context.Background()

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("Rust is fast\r\nGo is simple\r\nrust never sleeps\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sheetPath := filepath.Join(dir, "langs.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Language")
	f.SetCellValue("Sheet1", "B1", "Year")
	f.SetCellValue("Sheet1", "A2", "Rust")
	f.SetCellValue("Sheet1", "B2", 2015)
	f.SetCellValue("Sheet1", "A3", "Go")
	f.SetCellValue("Sheet1", "B3", 2012)
	if err := f.SaveAs(sheetPath); err != nil {
		t.Fatal(err)
	}
	f.Close()

	searchCfg, err := cfg.SearchFor("RUST", textPath)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := engine.Search(ctx, searchCfg, search.SearchOptions{Stats: true, TopWords: cfg.Search.TopWords, Record: true})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("text search: total %d, results %d; want 2, 2", resp.Total, len(resp.Results))
	}
	if resp.Results[1].Line != "rust never sleeps" || resp.Results[1].LineNumber != 3 {
		t.Errorf("second result = %d %q", resp.Results[1].LineNumber, resp.Results[1].Line)
	}
	if resp.Stats.TotalLines != 3 || resp.RunCount != 1 {
		t.Errorf("stats total lines %d, run count %d; want 3, 1", resp.Stats.TotalLines, resp.RunCount)
	}

	sheetCfg, err := cfg.SearchFor("rust", sheetPath)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = engine.Search(ctx, sheetCfg, search.SearchOptions{Record: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Line != "Rust\t2015" {
		t.Fatalf("sheet search results = %+v", resp.Results)
	}
	if resp.RunCount != 2 {
		t.Errorf("run count = %d, want 2", resp.RunCount)
	}

	// No match: suggestions come from the document's words.
	missCfg, err := cfg.SearchFor("rsut", textPath)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = engine.Search(ctx, missCfg, search.SearchOptions{Record: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 || len(resp.Suggestions) == 0 || resp.Suggestions[0] != "rust" {
		t.Errorf("miss: results %d, suggestions %v", len(resp.Results), resp.Suggestions)
	}

	absText, _ := filepath.Abs(textPath)
	n, err := history.CountRunsForDocument(ctx, fileid.FileDocID(absText))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("runs for %s = %d, want 2", textPath, n)
	}
	runs, err := history.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 || runs[0].Query != "rsut" || runs[0].ResultCount != 0 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[2].Mode != models.CaseInsensitive().String() || runs[2].TotalMatches != 2 {
		t.Errorf("oldest run mode %q matches %d", runs[2].Mode, runs[2].TotalMatches)
	}
}
