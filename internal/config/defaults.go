package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Search.Mode == "" {
		cfg.Search.Mode = "case_sensitive"
	}
	if cfg.Search.MaxSuggestionDistance == 0 {
		cfg.Search.MaxSuggestionDistance = 2
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 3
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".minigrep/history.db"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 400
	}
}
