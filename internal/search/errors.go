package search

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors for display and for mapping to exit or status codes.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindConfigInvalid      ErrorKind = "config_invalid"
	KindDocumentNotFound   ErrorKind = "document_not_found"
	KindDocumentUnreadable ErrorKind = "document_unreadable"
)

var (
	ErrEmptyQuery         = errors.New("query must not be empty")
	ErrEmptyFilePath      = errors.New("file path must not be empty")
	ErrFileNotFound       = errors.New("file not found")
	ErrDocumentUnreadable = errors.New("document unreadable")
)

// ConfigError reports a Config rejected before any document was read.
type ConfigError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Path)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DocumentError reports a document that exists but could not be loaded.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *DocumentError) Unwrap() []error {
	return []error{ErrDocumentUnreadable, e.Err}
}

// KindOf returns the ErrorKind of err, or KindNone when err is not an engine error.
func KindOf(err error) ErrorKind {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, ErrDocumentUnreadable) {
		return KindDocumentUnreadable
	}
	return KindNone
}
