package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const ExcerptLength = 160

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag, decodes entities and collapses whitespace.
func StripHTML(content string) string {
	plain := html.UnescapeString(strictPolicy.Sanitize(content))
	return strings.Join(strings.Fields(plain), " ")
}

// Excerpt returns at most n runes of the plain-text content, suffixed with
// "..." when truncated.
func Excerpt(content string, n int) string {
	plain := StripHTML(content)
	if utf8.RuneCountInString(plain) <= n {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeHTML keeps safe formatting markup and drops scripts, handlers and unknown tags.
func SanitizeHTML(content string) string {
	return ugcPolicy.Sanitize(content)
}
