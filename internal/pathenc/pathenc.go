// Package pathenc implements the on-disk path conventions AgentA and AgentC
// use to key a project's history files, preserved bit-for-bit per spec.md
// §9 ("not safe to round-trip arbitrary paths through this encoding").
package pathenc

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// EncodeCWD replaces every '/' and '_' in the absolute, cleaned project
// directory with '-', matching AgentA's lossy directory-to-filename
// encoding (spec.md §4.9, §9).
func EncodeCWD(dir string) string {
	clean := filepath.Clean(dir)
	replacer := strings.NewReplacer("/", "-", "_", "-")
	return replacer.Replace(clean)
}

// ProjectHash returns the lowercase hex SHA-256 digest of the cleaned
// project directory path, used by AgentC to key its per-project history
// directory (spec.md §4.7, §6).
func ProjectHash(dir string) string {
	clean := filepath.Clean(dir)
	sum := sha256.Sum256([]byte(clean))
	return hex.EncodeToString(sum[:])
}
