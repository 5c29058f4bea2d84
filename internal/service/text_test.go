package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	got := StripHTML("<h1>Hello</h1>\n<p>world &amp; <b>friends</b></p><script>alert(1)</script>")
	assert.Equal(t, "Hello world & friends", got)
}

func TestExcerptShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "Short post", Excerpt("<p>Short post</p>", ExcerptLength))
}

func TestExcerptTruncatesRunes(t *testing.T) {
	body := "<p>" + strings.Repeat("é", 200) + "</p>"
	got := Excerpt(body, ExcerptLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, ExcerptLength+3, utf8.RuneCountInString(got))
}

func TestExcerptExactLength(t *testing.T) {
	body := strings.Repeat("a", ExcerptLength)
	assert.Equal(t, body, Excerpt(body, ExcerptLength))
}

func TestSanitizeHTMLKeepsFormatting(t *testing.T) {
	got := SanitizeHTML(`<p onclick="x()">Hi <strong>there</strong></p><script>bad()</script>`)
	assert.Equal(t, "<p>Hi <strong>there</strong></p>", got)
}
