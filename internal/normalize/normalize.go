// Package normalize cleans tweet text into the form the classifiers were
// trained on: lowercase latin letters separated by single spaces.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlPattern     = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// Text lowercases the input, removes links, mentions and hashtag symbols, drops
// everything that is not a-z or whitespace and collapses the whitespace.
// The result is a fixed point: Text(Text(s)) == Text(s).
func Text(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "#", "")

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}
