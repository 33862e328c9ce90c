// Package sanitize neutralizes free-text user input before it is persisted.
//
// Stored values may later be rendered as HTML by a consuming UI, so every
// free-text field is HTML-escaped on the way to storage (defense in depth
// against stored XSS) and truncated to a per-field maximum length.
package sanitize

import (
	"html"
	"strings"
)

// Common field length limits.
const (
	MaxShortText = 200  // names, titles, usernames, categories
	MaxLongText  = 2000 // descriptions, notes
)

// Text truncates s to at most max runes and HTML-escapes the result
// (the five characters & < > " '). Truncation happens before escaping so an
// escape entity is never cut in half.
func Text(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 {
		runes := []rune(s)
		if len(runes) > max {
			s = string(runes[:max])
		}
	}
	return html.EscapeString(s)
}

// Short sanitizes a short field (names, titles, categories).
func Short(s string) string { return Text(s, MaxShortText) }

// Long sanitizes a long field (descriptions, notes).
func Long(s string) string { return Text(s, MaxLongText) }
