package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/minigrep/internal/cli"
	"github.com/hyperjump/minigrep/internal/extract"
	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/search"
	"github.com/hyperjump/minigrep/internal/watcher"
	"github.com/hyperjump/minigrep/pkg/utils"
)

// watchLoop re-runs one search against each changed document and prints the results.
// The run counter is local to the loop.
type watchLoop struct {
	engine *search.Engine
	cfg    *models.Config
	opts   search.SearchOptions
	render cli.RenderOptions
	out    io.Writer
	logger *zap.Logger

	mu     sync.Mutex
	runs   int
	hashes map[string]string
}

// runOnce searches path and prints, unless its content hash matches the last printed run for path.
func (l *watchLoop) runOnce(ctx context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := *l.cfg
	cfg.DocumentPath = path
	response, err := l.engine.Search(ctx, &cfg, l.opts)
	if err != nil {
		return err
	}
	if prev, ok := l.hashes[path]; ok && prev == response.ContentHash {
		l.logger.Debug("content unchanged, skipping", zap.String("path", path))
		return nil
	}
	if l.hashes == nil {
		l.hashes = make(map[string]string)
	}
	l.hashes[path] = response.ContentHash
	l.runs++
	fmt.Fprintf(l.out, "--- run %d at %s: %s ---\n", l.runs, time.Now().Format(time.TimeOnly), path)
	return cli.WriteSearchResults(l.out, response, l.render)
}

func (l *watchLoop) onChange(path string) {
	l.logger.Debug("document changed", zap.String("path", path))
	if err := l.runOnce(context.Background(), path); err != nil {
		l.logger.Warn("search failed", zap.String("path", path), zap.String("error", search.Describe(err)))
	}
}

// documentPatterns matches every file with a supported document extension at any depth.
func documentPatterns() []string {
	exts := extract.SupportedExtensions()
	return []string{"**/*{" + strings.Join(exts, ",") + "}"}
}

// watchTarget returns the watcher roots, patterns and recursion for target: a file is
// watched through its directory with its own escaped path as the only pattern.
func watchTarget(target string, isDir bool, patterns []string, recursive bool) ([]string, []string, bool) {
	if !isDir {
		return []string{filepath.Dir(target)}, []string{watcher.EscapeMeta(filepath.ToSlash(target))}, false
	}
	if len(patterns) == 0 {
		patterns = documentPatterns()
	}
	return []string{target}, patterns, recursive
}

func runWatch(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	f := newSearchFlags("watch", stderr)
	debounce := f.fs.Duration("debounce", 0, "wait this long after the last change before searching (default from config, 400ms)")
	recursive := f.fs.Bool("recursive", true, "when watching a directory, include subdirectories (default from config)")
	f.fs.Usage = func() {
		fmt.Fprintf(f.fs.Output(), "Usage: minigrep watch [flags] <query> <file|directory>\n\n")
		f.fs.PrintDefaults()
		fmt.Fprintf(f.fs.Output(), "\nA directory is searched file by file as matching files change (watch.patterns in config,\ndefault every supported document type).\n")
	}
	if err := f.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if f.fs.NArg() < 2 {
		f.fs.Usage()
		return 1
	}

	cfg, _, err := loadConfig(*f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	searchCfg, err := f.searchConfig(cfg, f.fs.Arg(0), f.fs.Arg(1), lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid search: %v\n", err)
		return 1
	}
	render, err := f.renderOptions(stdout, searchCfg.ShowLineNumbers)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	target, err := filepath.Abs(searchCfg.DocumentPath)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid path: %v\n", err)
		return 1
	}
	info, err := os.Stat(target)
	isDir := err == nil && info.IsDir()

	logger, err := utils.NewCLILogger(cfg.Debug || *f.debug)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, false, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer comps.Close()

	loop := &watchLoop{engine: comps.engine, cfg: searchCfg, render: render, out: stdout, logger: logger}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !isDir {
		if err := loop.runOnce(ctx, target); err != nil {
			fmt.Fprintf(stderr, "Search failed: %s\n", search.Describe(err))
			return 1
		}
	}

	wait := cfg.Watch.Debounce()
	if *debounce > 0 {
		wait = *debounce
	}
	recurse := cfg.Watch.RecursiveEnabled()
	if f.isSet("recursive") {
		recurse = *recursive
	}
	roots, patterns, recurse := watchTarget(target, isDir, cfg.Watch.Patterns, recurse)
	w := watcher.NewWatcher(roots, patterns, loop.onChange,
		watcher.WithDebounce(wait),
		watcher.WithRecursive(recurse),
		watcher.WithLogger(logger),
	)
	if err := w.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "Failed to start watcher: %v\n", err)
		return 1
	}
	defer w.Stop()

	fmt.Fprintf(stderr, "Watching %s (Ctrl+C to stop)\n", target)
	<-ctx.Done()
	return 0
}
