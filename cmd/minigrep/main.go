package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/minigrep/internal/cli"
	"github.com/hyperjump/minigrep/internal/config"
	"github.com/hyperjump/minigrep/internal/extract"
	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/search"
	"github.com/hyperjump/minigrep/internal/storage"
	"github.com/hyperjump/minigrep/pkg/utils"
)

var version = "dev"

// configCandidates are looked up in the current directory when -config is not given.
var configCandidates = []string{"minigrep.yaml", "minigrep.yml", "minigrep.toml"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

// run dispatches to a subcommand and returns the process exit code.
// Anything that is not a known subcommand is treated as "<query> <file> [options]".
func run(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	switch args[0] {
	case "search":
		return runSearch(args[1:], stdout, stderr, lookupEnv)
	case "watch":
		return runWatch(args[1:], stdout, stderr, lookupEnv)
	case "server":
		return runServer(args[1:], stderr)
	case "history":
		return runHistory(args[1:], stdout, stderr)
	case "init":
		return runInit(args[1:], stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "minigrep version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	}
	return runShort(args, stdout, stderr, lookupEnv)
}

// loadConfig loads config from path. With an empty path it tries minigrep.yaml (or .yml,
// .toml) in the current directory, then <user config dir>/minigrep/config.yaml, and
// falls back to built-in defaults. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		for _, name := range configCandidates {
			candidates = append(candidates, filepath.Join(cwd, name))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "minigrep", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			if err != nil {
				return nil, "", err
			}
			return cfg, p, nil
		}
	}
	return config.Default(), "", nil
}

type components struct {
	engine  *search.Engine
	history *storage.SQLiteHistory
}

func (c *components) Close() {
	if c.history != nil {
		_ = c.history.Close()
	}
}

// initializeComponents builds the engine; history is opened only when record is set.
func initializeComponents(cfg *config.Config, record bool, logger *zap.Logger) (*components, error) {
	c := &components{}
	opts := []search.EngineOption{search.WithLogger(logger)}
	if record {
		h, err := storage.NewSQLiteHistory(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history: %w", err)
		}
		c.history = h
		opts = append(opts, search.WithHistory(h))
	}
	if cfg.Search.SuggestionsEnabled() {
		opts = append(opts, search.WithSuggestions(cfg.Search.MaxSuggestionDistance, cfg.Search.MaxSuggestions))
	}
	extractor := extract.NewExtractor(extract.WithLenientEncoding(cfg.Search.LenientEncoding))
	c.engine = search.NewEngine(extractor, opts...)
	return c, nil
}

// reorderArgs moves flags (and their values) ahead of positional arguments so that
// flag.Parse sees them wherever they were typed: "minigrep search rust poem.txt -n"
// works like "minigrep search -n rust poem.txt". Positionals keep their order and
// everything after "--" is positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, "--")
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// searchFlags are the flags shared by search and watch.
type searchFlags struct {
	fs          *flag.FlagSet
	configPath  *string
	lineNumbers *bool
	maxResults  *int
	mode        *string
	pattern     *string
	ignoreCase  *bool
	output      *string
	color       *string
	debug       *bool
}

func newSearchFlags(name string, stderr io.Writer) *searchFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return &searchFlags{
		fs:          fs,
		configPath:  fs.String("config", "", "config file path (default: ./minigrep.yaml, then the user config dir)"),
		lineNumbers: fs.Bool("n", false, "show line numbers"),
		maxResults:  fs.Int("max", 0, "maximum number of results to show"),
		mode:        fs.String("mode", "", "search mode: case_sensitive, case_insensitive, exact, or prefix_wildcard"),
		pattern:     fs.String("pattern", "", "pattern for prefix_wildcard, e.g. Hel* (default: the query)"),
		ignoreCase:  fs.Bool("ignore-case", false, "case-insensitive search (same as -mode case_insensitive)"),
		output:      fs.String("output", "text", "output format: text, compact, or json"),
		color:       fs.String("color", cli.ColorAuto, "highlight matches: auto, always, or never"),
		debug:       fs.Bool("debug", false, "enable debug logging"),
	}
}

func (f *searchFlags) parse(args []string) error {
	return f.fs.Parse(reorderArgs(f.fs, args))
}

func (f *searchFlags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// searchConfig builds the request for query and path. Explicit flags override
// IGNORE_CASE, which overrides the config file.
func (f *searchFlags) searchConfig(cfg *config.Config, query, path string, lookupEnv func(string) (string, bool)) (*models.Config, error) {
	searchCfg, err := cfg.SearchFor(query, path)
	if err != nil {
		return nil, err
	}
	if _, ok := lookupEnv("IGNORE_CASE"); ok {
		searchCfg.Mode = config.ModeFromEnv(lookupEnv)
	}
	if f.isSet("mode") {
		kind, err := models.ParseModeKind(*f.mode)
		if err != nil {
			return nil, err
		}
		searchCfg.Mode = models.SearchMode{Kind: kind}
	}
	if f.isSet("ignore-case") && *f.ignoreCase {
		searchCfg.Mode = models.CaseInsensitive()
	}
	if searchCfg.Mode.Kind == models.ModePrefixWildcard && f.isSet("pattern") {
		searchCfg.Mode.Pattern = *f.pattern
	}
	if f.isSet("n") {
		searchCfg.ShowLineNumbers = *f.lineNumbers
	}
	if f.isSet("max") {
		searchCfg.MaxResults = models.IntPtr(*f.maxResults)
	}
	return searchCfg, nil
}

func (f *searchFlags) renderOptions(stdout io.Writer, showLineNumbers bool) (cli.RenderOptions, error) {
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return cli.RenderOptions{}, err
	}
	color, err := cli.ShouldColor(*f.color, stdout)
	if err != nil {
		return cli.RenderOptions{}, err
	}
	return cli.RenderOptions{
		Format:          format,
		ShowLineNumbers: showLineNumbers,
		Styles:          cli.NewStyles(stdout, color),
	}, nil
}

// runShort handles "minigrep <query> <file> [--line-numbers|-n] [--max=N]" with
// built-in defaults: results, then the statistics report.
func runShort(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	searchCfg, err := cli.BuildConfig(args, lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Problem parsing arguments: %v\n", err)
		printUsage(stderr)
		return 1
	}
	cfg := config.Default()
	logger, err := utils.NewCLILogger(false)
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

	start := time.Now()
	response, err := comps.engine.Search(context.Background(), searchCfg, search.SearchOptions{Stats: true, TopWords: 5})
	if err != nil {
		fmt.Fprintf(stderr, "Application error: %s\n", search.Describe(err))
		return 1
	}
	elapsed := time.Since(start)

	color, _ := cli.ShouldColor(cli.ColorAuto, stdout)
	opts := cli.RenderOptions{Format: cli.OutputText, ShowLineNumbers: searchCfg.ShowLineNumbers, Styles: cli.NewStyles(stdout, color)}
	if err := cli.WriteSearchResults(stdout, response, opts); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout)
	cli.WriteStats(stdout, response.Stats, response.TopWords, elapsed)
	if len(response.Results) == 0 {
		return 1
	}
	return 0
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: minigrep search [flags] <query> <file>\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Flags may come before or after the query and file. Exit status is 1 when nothing matched.

Examples:
  minigrep search rust poem.txt
  minigrep search -n -max 5 the story.txt
  minigrep search -mode exact "Pick three." poem.txt
  minigrep search -mode prefix_wildcard -pattern "Hel*" x greetings.txt
  minigrep search -stats -top 5 -output json to poem.txt
`)
}

func runSearch(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	f := newSearchFlags("search", stderr)
	showStats := f.fs.Bool("stats", false, "print statistics for the document and results")
	top := f.fs.Int("top", 0, "number of most common words to report")
	record := f.fs.Bool("history", true, "record this run in history (default from config)")
	f.fs.Usage = func() { printSearchUsage(f.fs) }
	if err := f.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if f.fs.NArg() < 2 {
		printSearchUsage(f.fs)
		return 1
	}

	cfg, cfgPath, err := loadConfig(*f.configPath)
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
	opts := search.SearchOptions{Stats: cfg.Search.Stats, TopWords: cfg.Search.TopWords, Record: cfg.Storage.HistoryEnabled()}
	if f.isSet("stats") {
		opts.Stats = *showStats
	}
	if f.isSet("top") {
		opts.TopWords = *top
	}
	if f.isSet("history") {
		opts.Record = *record
	}

	logger, err := utils.NewCLILogger(cfg.Debug || *f.debug)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Debug("config loaded", zap.String("config_path", cfgPath), zap.Bool("history", opts.Record))

	comps, err := initializeComponents(cfg, opts.Record, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer comps.Close()

	start := time.Now()
	response, err := comps.engine.Search(context.Background(), searchCfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Search failed: %s\n", search.Describe(err))
		return 1
	}
	elapsed := time.Since(start)

	if err := cli.WriteSearchResults(stdout, response, render); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	if render.Format == cli.OutputText {
		switch {
		case response.Stats != nil:
			fmt.Fprintln(stdout)
			cli.WriteStats(stdout, response.Stats, response.TopWords, elapsed)
		case len(response.TopWords) > 0:
			fmt.Fprintln(stdout)
			cli.WriteTopWords(stdout, response.TopWords)
		}
	}
	if len(response.Results) == 0 {
		return 1
	}
	return 0
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file path")
	limit := fs.Int("limit", 20, "number of runs to show")
	output := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if !cfg.Storage.HistoryEnabled() {
		fmt.Fprintln(stderr, "History is disabled (storage.history: false)")
		return 1
	}
	history, err := storage.NewSQLiteHistory(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
		return 1
	}
	defer history.Close()

	ctx := context.Background()
	runs, err := history.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to list runs: %v\n", err)
		return 1
	}
	total, err := history.CountRuns(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to count runs: %v\n", err)
		return 1
	}
	if err := cli.WriteHistory(stdout, runs, total, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	if format != cli.OutputJSON {
		if size, err := storage.DiskUsageBytes(history.Path()); err == nil {
			fmt.Fprintf(stdout, "\nDatabase: %s (%d bytes)\n", history.Path(), size)
		}
	}
	return 0
}

// runInit writes a config file holding every default, so it can be edited in place.
func runInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", configCandidates[0], "config file to write (.toml for TOML, YAML otherwise)")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Fprintf(stderr, "%s already exists (use -force to overwrite)\n", *path)
		return 1
	}
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	enabled := true
	cfg.Search.Suggestions = &enabled
	cfg.Storage.History = &enabled
	cfg.Watch.Recursive = &enabled
	if err := config.Save(*path, &cfg); err != nil {
		fmt.Fprintf(stderr, "Failed to write config: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", *path)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `minigrep - line-oriented text search

Usage:
  minigrep <query> <file> [options]          Search a file (short form)
  minigrep search [flags] <query> <file>     Search a file with full options
  minigrep watch [flags] <query> <file>      Re-run a search whenever the file changes
  minigrep server [flags]                    Start the HTTP API
  minigrep history [flags]                   Show recorded runs
  minigrep init [-config path] [-force]      Write a config file with the defaults
  minigrep version                           Show version
  minigrep help                              Show this help

Short form options:
  --line-numbers, -n    Show line numbers
  --max=<n>             Show at most n results

Environment:
  IGNORE_CASE           Case-insensitive search when set, even to an empty value

Recognized document types: %s (anything else is read as UTF-8 text).

Examples:
  minigrep rust poem.txt
  minigrep the story.txt --line-numbers
  IGNORE_CASE=1 minigrep RUST poem.txt
  minigrep search -mode exact -output json "Pick three." poem.txt
  minigrep watch -n error app.log
  minigrep history -limit 5
`, strings.Join(extract.SupportedExtensions(), " "))
}
