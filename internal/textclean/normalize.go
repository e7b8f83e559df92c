// Package textclean turns scraped page text into the plain snippet sent to
// the language model.
package textclean

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*?>`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	disallowedPattern = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	spacePattern      = regexp.MustCompile(`\s{2,}`)
)

// SnippetDivisor bounds the share of the normalized text handed to the model.
const SnippetDivisor = 10

// Normalize strips markup, URLs and every character outside [a-zA-Z0-9 ],
// then collapses repeated whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = disallowedPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Snippet returns the leading tenth of already normalized text. Normalized
// text is ASCII, so the byte cut never splits a rune.
func Snippet(normalized string) string {
	return normalized[:len(normalized)/SnippetDivisor]
}
