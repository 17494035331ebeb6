package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs to single spaces and trims the result.
// Two strings with identical content modulo whitespace runs normalize to the
// same form, which makes normalized text usable as a content-based lookup key.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Pattern compiles a case-insensitive matcher for the given text that treats
// each internal whitespace run as "one or more whitespace characters". Live
// markup may reflow whitespace differently than the segmenter's output, so
// exact substring matching would miss otherwise identical text.
func Pattern(s string) (*regexp.Regexp, error) {
	norm := Normalize(s)
	if norm == "" {
		return nil, nil
	}
	expr := "(?i)" + strings.ReplaceAll(regexp.QuoteMeta(norm), " ", `\s+`)
	return regexp.Compile(expr)
}
