package models

// Config is the immutable input of one search run. It is built once from
// arguments, environment, or a config file and never mutated by the engine.
type Config struct {
	Query           string     `json:"query"`
	DocumentPath    string     `json:"document_path"`
	Mode            SearchMode `json:"mode"`
	ShowLineNumbers bool       `json:"show_line_numbers,omitempty"`
	// MaxResults caps the number of returned results; nil means no cap.
	MaxResults *int `json:"max_results,omitempty"`
}

// IntPtr returns a pointer to n, for building Config.MaxResults.
func IntPtr(n int) *int {
	return &n
}
