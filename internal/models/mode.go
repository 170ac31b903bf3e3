// Package models defines the core data structures for search runs, results, and statistics.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModeKind identifies one of the four search strategies.
type ModeKind int

const (
	// ModeCaseSensitive matches substrings with exact casing.
	ModeCaseSensitive ModeKind = iota
	// ModeCaseInsensitive matches substrings ignoring case.
	ModeCaseInsensitive
	// ModeExact matches lines whose trimmed text equals the query.
	ModeExact
	// ModePrefixWildcard matches lines starting with the prefix of a "<prefix>*" pattern.
	// It is a literal stand-in for regular expressions, not a regex engine.
	ModePrefixWildcard
)

var modeNames = map[ModeKind]string{
	ModeCaseSensitive:   "case_sensitive",
	ModeCaseInsensitive: "case_insensitive",
	ModeExact:           "exact",
	ModePrefixWildcard:  "prefix_wildcard",
}

// String returns the snake_case name used in config files and JSON.
func (k ModeKind) String() string {
	if name, ok := modeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(k))
}

// ParseModeKind parses a mode name. "regex" and "wildcard" are accepted as aliases
// of prefix_wildcard; dashes and case are ignored.
func ParseModeKind(s string) (ModeKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "", "case_sensitive", "sensitive":
		return ModeCaseSensitive, nil
	case "case_insensitive", "insensitive", "ignore_case":
		return ModeCaseInsensitive, nil
	case "exact":
		return ModeExact, nil
	case "prefix_wildcard", "wildcard", "regex":
		return ModePrefixWildcard, nil
	}
	return 0, fmt.Errorf("unknown search mode %q", s)
}

// SearchMode selects the strategy for a run. Pattern is only used by ModePrefixWildcard.
type SearchMode struct {
	Kind    ModeKind
	Pattern string
}

// CaseSensitive returns the case-sensitive substring mode.
func CaseSensitive() SearchMode { return SearchMode{Kind: ModeCaseSensitive} }

// CaseInsensitive returns the case-insensitive substring mode.
func CaseInsensitive() SearchMode { return SearchMode{Kind: ModeCaseInsensitive} }

// Exact returns the whole-line exact mode.
func Exact() SearchMode { return SearchMode{Kind: ModeExact} }

// PrefixWildcard returns the wildcard mode for pattern (e.g. "Hel*").
func PrefixWildcard(pattern string) SearchMode {
	return SearchMode{Kind: ModePrefixWildcard, Pattern: pattern}
}

func (m SearchMode) String() string {
	if m.Kind == ModePrefixWildcard && m.Pattern != "" {
		return fmt.Sprintf("%s(%s)", m.Kind, m.Pattern)
	}
	return m.Kind.String()
}

type searchModeJSON struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern,omitempty"`
}

// MarshalJSON encodes the mode as {"kind": "...", "pattern": "..."}.
func (m SearchMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchModeJSON{Kind: m.Kind.String(), Pattern: m.Pattern})
}

// UnmarshalJSON accepts either the object form or a bare mode name string.
func (m *SearchMode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		kind, err := ParseModeKind(name)
		if err != nil {
			return err
		}
		*m = SearchMode{Kind: kind}
		return nil
	}
	var raw searchModeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ParseModeKind(raw.Kind)
	if err != nil {
		return err
	}
	*m = SearchMode{Kind: kind, Pattern: raw.Pattern}
	return nil
}
