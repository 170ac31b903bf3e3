// Package cli provides argument parsing and output rendering for the minigrep command.
package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hyperjump/minigrep/internal/config"
	"github.com/hyperjump/minigrep/internal/models"
)

var (
	ErrMissingQuery    = errors.New("not enough arguments: missing query string")
	ErrMissingFilePath = errors.New("not enough arguments: missing file path")
)

// BuildConfig parses the short form "<query> <file> [--line-numbers|-n] [--max=N]".
// args excludes the program name. The mode comes from IGNORE_CASE via lookupEnv.
// Unknown options are ignored, as is a --max value that is not a number.
func BuildConfig(args []string, lookupEnv func(string) (string, bool)) (*models.Config, error) {
	if len(args) < 1 {
		return nil, ErrMissingQuery
	}
	if len(args) < 2 {
		return nil, ErrMissingFilePath
	}
	cfg := &models.Config{
		Query:        args[0],
		DocumentPath: args[1],
		Mode:         config.ModeFromEnv(lookupEnv),
	}
	for _, arg := range args[2:] {
		switch {
		case arg == "--line-numbers" || arg == "-n":
			cfg.ShowLineNumbers = true
		case strings.HasPrefix(arg, "--max="):
			if n, err := strconv.ParseUint(strings.TrimPrefix(arg, "--max="), 10, 31); err == nil {
				cfg.MaxResults = models.IntPtr(int(n))
			} else {
				cfg.MaxResults = nil
			}
		}
	}
	return cfg, nil
}
