// Package fileid derives stable identifiers for documents and their contents.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

const prefix = "doc:"

// FileDocID returns a stable document ID for path. Paths are cleaned first, so
// "/a/b", "/a/b/" and "/a/./b" share an ID. Callers should pass absolute paths.
func FileDocID(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return prefix + hex.EncodeToString(sum[:])
}

// ContentHash returns a 16-digit hex xxhash fingerprint of content. It identifies
// whether a document changed between runs; it is not a security hash.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
