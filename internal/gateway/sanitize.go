package gateway

import (
	"strings"
	"unicode/utf8"
)

// quotePairs are the wrappers stripped from provider output.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'“', '”'},
}

// Sanitize trims text and removes one layer of wrapping quotes when the whole
// text is enclosed by a matching pair. stripSingle also unwraps '...'.
func Sanitize(text string, stripSingle bool) string {
	text = strings.TrimSpace(text)

	pairs := quotePairs
	if stripSingle {
		pairs = append(pairs[:len(pairs):len(pairs)], [2]rune{'\'', '\''})
	}

	for _, p := range pairs {
		if inner, ok := unwrap(text, p[0], p[1]); ok {
			return strings.TrimSpace(inner)
		}
	}
	return text
}

func unwrap(text string, open, close rune) (string, bool) {
	first, firstSize := utf8.DecodeRuneInString(text)
	last, lastSize := utf8.DecodeLastRuneInString(text)
	if first != open || last != close {
		return "", false
	}
	// a lone quote character is not a pair
	if len(text) < firstSize+lastSize {
		return "", false
	}
	return text[firstSize : len(text)-lastSize], true
}
