package automaton

import (
	"iter"
	"strings"

	"github.com/corey/acmatch/internal/ports"
)

// ReplaceMatches rebuilds text with every match in the stream replaced.
//
// Matches are consumed in stream order with a cursor into text. The gap
// between the cursor and a match is copied only when the match starts past
// the cursor, the replacement is always written, and the cursor moves to the
// match end. Overlapping matches are not skipped: each one writes another
// replacement. For keywords {"he", "hers"} over "hers" with replacement "*"
// the result is "**", not "*".
func ReplaceMatches(text, replacement string, matches iter.Seq[ports.Match]) string {
	if text == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	cursor := 0
	replaced := false
	for m := range matches {
		replaced = true
		if m.Start > cursor {
			sb.WriteString(text[cursor:m.Start])
		}
		sb.WriteString(replacement)
		cursor = m.Start + m.Length
	}

	if !replaced {
		return text
	}
	if cursor < len(text) {
		sb.WriteString(text[cursor:])
	}
	return sb.String()
}
