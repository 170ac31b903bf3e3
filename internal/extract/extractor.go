// Package extract loads documents as text so they can be searched line by line.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned for plain-text documents that are not valid UTF-8
// unless the Extractor is lenient.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Extractor turns document files into text. Office and PDF formats are flattened
// to one line per paragraph, row, or page so line numbers stay meaningful.
type Extractor struct {
	lenient bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLenientEncoding replaces invalid UTF-8 in plain-text files with U+FFFD
// instead of failing.
func WithLenientEncoding(lenient bool) Option {
	return func(e *Extractor) { e.lenient = lenient }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the file at path and returns its text.
func (e *Extractor) Load(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content according to ext (with leading dot).
// Unknown extensions are treated as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".xlsx":
		return extractExcel(content)
	case ".docx":
		return extractDOCX(content)
	case ".pptx":
		return extractPPTX(content)
	case ".odp", ".ods", ".odt":
		return extractODF(content)
	default:
		return e.extractPlain(content)
	}
}

// SupportedExtensions lists the extensions with a dedicated extractor.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".rst", ".pdf", ".xlsx", ".docx", ".pptx", ".odp", ".ods", ".odt"}
}

func (e *Extractor) extractPlain(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	if !e.lenient {
		return "", ErrInvalidUTF8
	}
	return strings.ToValidUTF8(string(content), "\uFFFD"), nil
}
