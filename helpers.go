// Suggested path: music-stream-api/helpers.go
package main

import (
	"path/filepath"
	"strings"
)

// normalizeKey trims, folds case, and collapses whitespace for stable comparisons.
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
	// Collapse consecutive whitespace and normalize internal spacing
	s = strings.Join(strings.Fields(s), " ")
	// Lowercase for case-insensitive matching
	s = strings.ToLower(s)
	return s
}

// normalizeEmail is the canonical stored form of an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere; use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// hasAllowedExtension reports whether name ends in one of exts, ignoring case.
func hasAllowedExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range exts {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}
