// Package search implements line-oriented text search: match finding, the four
// search strategies, and the engine that validates, loads, dispatches, and caps.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/minigrep/internal/fileid"
	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/stats"
)

// DocumentLoader returns the full text of the document at path.
type DocumentLoader interface {
	Load(path string) (string, error)
}

// History records runs and reports how many have been recorded, in total and per document.
type History interface {
	RecordRun(ctx context.Context, run *models.RunRecord) error
	CountRuns(ctx context.Context) (int64, error)
	CountRunsForDocument(ctx context.Context, documentID string) (int64, error)
}

// Engine runs searches against documents supplied by a DocumentLoader.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	loader         DocumentLoader
	history        History
	logger         *zap.Logger
	maxDistance    int
	maxSuggestions int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHistory records every Search call in h.
func WithHistory(h History) EngineOption {
	return func(e *Engine) { e.history = h }
}

// WithSuggestions enables "did you mean" suggestions for searches with no results.
// maxDistance is the largest edit distance considered; limit caps the list.
func WithSuggestions(maxDistance, limit int) EngineOption {
	return func(e *Engine) {
		e.maxDistance = maxDistance
		e.maxSuggestions = limit
	}
}

// NewEngine creates an engine that reads documents through loader.
func NewEngine(loader DocumentLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader: loader,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchOptions selects the extras computed by Search.
type SearchOptions struct {
	// Stats attaches the full SearchStats to the response.
	Stats bool
	// TopWords is the number of most common words to attach; 0 disables.
	TopWords int
	// Record stores the run in history when the engine has one.
	Record bool
}

// Validate checks cfg before any document is read.
func Validate(cfg *models.Config) error {
	if cfg.Query == "" {
		return &ConfigError{Kind: KindConfigInvalid, Err: ErrEmptyQuery}
	}
	if cfg.DocumentPath == "" {
		return &ConfigError{Kind: KindConfigInvalid, Err: ErrEmptyFilePath}
	}
	info, err := os.Stat(cfg.DocumentPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ConfigError{Kind: KindDocumentNotFound, Path: cfg.DocumentPath, Err: ErrFileNotFound}
		}
		return &DocumentError{Path: cfg.DocumentPath, Err: err}
	}
	if info.IsDir() {
		return &DocumentError{Path: cfg.DocumentPath, Err: errors.New("is a directory")}
	}
	return nil
}

// Run validates cfg, loads the document, runs the selected strategy, and applies
// cfg.MaxResults. An empty result set is not an error.
func (e *Engine) Run(cfg *models.Config) ([]*models.SearchResult, error) {
	content, err := e.load(cfg)
	if err != nil {
		return nil, err
	}
	return Limit(e.dispatch(cfg, content), cfg.MaxResults), nil
}

// Search is Run plus the extras the CLI and API display: statistics, top words,
// suggestions, a content fingerprint, timing, and the history run count.
// A failure to record history is logged and does not fail the search.
func (e *Engine) Search(ctx context.Context, cfg *models.Config, opts SearchOptions) (*models.SearchResponse, error) {
	startTime := time.Now()
	content, err := e.load(cfg)
	if err != nil {
		return nil, err
	}
	all := e.dispatch(cfg, content)
	results := Limit(all, cfg.MaxResults)
	if results == nil {
		results = []*models.SearchResult{}
	}

	response := &models.SearchResponse{
		Query:        cfg.Query,
		DocumentPath: cfg.DocumentPath,
		Mode:         cfg.Mode,
		Results:      results,
		Total:        len(all),
		ContentHash:  fileid.ContentHash(content),
	}

	var freq map[string]int
	if opts.Stats || opts.TopWords > 0 {
		st := stats.Analyze(content, results)
		freq = st.WordFrequency
		if opts.Stats {
			response.Stats = st
		}
		response.TopWords = st.MostCommonWords(opts.TopWords)
	}
	if len(all) == 0 && e.maxSuggestions > 0 {
		if freq == nil {
			freq = stats.WordFrequency(content)
		}
		response.Suggestions = Suggest(cfg.Query, freq, e.maxDistance, e.maxSuggestions)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()

	if opts.Record && e.history != nil {
		e.record(ctx, cfg, response)
	}
	return response, nil
}

func (e *Engine) load(cfg *models.Config) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}
	content, err := e.loader.Load(cfg.DocumentPath)
	if err != nil {
		return "", &DocumentError{Path: cfg.DocumentPath, Err: err}
	}
	return content, nil
}

func (e *Engine) dispatch(cfg *models.Config, content string) []*models.SearchResult {
	results := Search(cfg.Mode, cfg.Query, content)
	e.logger.Debug("search completed",
		zap.String("strategy", ModeName(cfg.Mode)),
		zap.String("path", cfg.DocumentPath),
		zap.Int("results", len(results)),
	)
	return results
}

func (e *Engine) record(ctx context.Context, cfg *models.Config, response *models.SearchResponse) {
	path := cfg.DocumentPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	total := 0
	for _, r := range response.Results {
		total += len(r.MatchPositions)
	}
	run := &models.RunRecord{
		ID:           uuid.NewString(),
		DocumentID:   fileid.FileDocID(path),
		DocumentPath: path,
		Query:        cfg.Query,
		Mode:         cfg.Mode.String(),
		ResultCount:  len(response.Results),
		TotalMatches: total,
		ContentHash:  response.ContentHash,
		DurationMs:   response.QueryTime,
	}
	if err := e.history.RecordRun(ctx, run); err != nil {
		e.logger.Warn("record run failed", zap.String("path", path), zap.Error(err))
		return
	}
	response.RunID = run.ID
	count, err := e.history.CountRuns(ctx)
	if err != nil {
		e.logger.Warn("count runs failed", zap.Error(err))
		return
	}
	response.RunCount = count
	docCount, err := e.history.CountRunsForDocument(ctx, run.DocumentID)
	if err != nil {
		e.logger.Warn("count document runs failed", zap.String("path", path), zap.Error(err))
		return
	}
	response.DocumentRunCount = docCount
}

// Limit returns the first maxResults results, preserving order. A nil maxResults
// leaves results unchanged; zero or less yields no results.
func Limit(results []*models.SearchResult, maxResults *int) []*models.SearchResult {
	if maxResults == nil {
		return results
	}
	n := *maxResults
	if n <= 0 {
		return nil
	}
	if n < len(results) {
		return results[:n]
	}
	return results
}

// Describe formats err for display, prefixing the error kind when known.
func Describe(err error) string {
	if kind := KindOf(err); kind != KindNone {
		return fmt.Sprintf("%s: %v", kind, err)
	}
	return err.Error()
}
