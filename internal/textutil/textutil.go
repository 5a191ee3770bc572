package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hex hash of a string for change detection.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// TrailingNewlines counts the '\n' bytes that end s.
func TrailingNewlines(s string) int {
	return len(s) - len(strings.TrimRight(s, "\n"))
}
