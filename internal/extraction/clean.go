package extraction

import (
	"regexp"
	"strings"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// CleanText normalizes line endings, collapses runs of three or more
// newlines down to a single blank line, and trims the edges. Interior
// single and double newlines survive untouched.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// isPlaceholder reports whether a result is one of the bracketed fallback
// strings rather than extracted content.
func isPlaceholder(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}
