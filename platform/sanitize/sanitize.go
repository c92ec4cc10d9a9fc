// Package sanitize cleans free text captured in the field or returned by
// collaborators before it is stored or echoed back to clients.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Label cleans a single-line label such as a room name: HTML is stripped,
// whitespace runs collapse to one space and the result is cut to max runes.
// A non-positive max disables truncation.
func Label(s string, max int) string {
	result := spaceRegex.ReplaceAllString(StripHTML(s), " ")
	if max <= 0 || utf8.RuneCountInString(result) <= max {
		return result
	}
	runes := []rune(result)
	return strings.TrimSpace(string(runes[:max]))
}

// Note cleans multi-line free text such as an audit note. Line breaks are
// kept, blank lines are dropped and the result is cut to max runes.
func Note(s string, max int) string {
	lines := strings.Split(StripHTML(s), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = Label(line, 0); line != "" {
			kept = append(kept, line)
		}
	}
	result := strings.Join(kept, "\n")
	if max <= 0 || utf8.RuneCountInString(result) <= max {
		return result
	}
	return strings.TrimSpace(string([]rune(result)[:max]))
}
