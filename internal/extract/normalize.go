package extract

import (
	"strings"
	"unicode"
)

// Normalize collapses every run of whitespace, newlines included, into a single
// space and trims both ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// isSpace extends unicode.IsSpace with the ASCII information separators
// (U+001C..U+001F), which regular-expression \s classes in Unicode mode also match.
func isSpace(r rune) bool {
	if r >= 0x1c && r <= 0x1f {
		return true
	}
	return unicode.IsSpace(r)
}
