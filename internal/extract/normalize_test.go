package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t\r\n ", ""},
		{"single word", "word", "word"},
		{"newline runs", "a\n\n\nb", "a b"},
		{"crlf", "a\r\nb", "a b"},
		{"tabs and spaces", "a \t  b", "a b"},
		{"trim", "  a b  ", "a b"},
		{"non-breaking space", "a\u00a0\u00a0b", "a b"},
		{"unicode line separator", "a\u2028b", "a b"},
		{"information separator", "a\x1fb", "a b"},
		{"punctuation kept", "Hello,\nworld!", "Hello, world!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Invariants(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"line1\n\nline2   line3\n",
		"\tlead and trail\t",
		"mixed \n \r\n\t\v\f whitespace",
		"already normal",
		"unicode\u3000ideographic\u3000space",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "idempotent for %q", in)
		assert.NotContains(t, once, "  ")
		assert.NotContains(t, once, "\n")
		assert.Equal(t, strings.TrimSpace(once), once)
	}
}
