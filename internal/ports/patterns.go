package ports

// Match is a single keyword occurrence found in scanned text.
// Start and Length are byte offsets into the full text (not the slice
// that began at the caller's start offset). Length always equals len(Text).
type Match struct {
	Start  int    `json:"start"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// EmptyMatch is returned by SearchFirst when no keyword occurs in the text.
var EmptyMatch = Match{Start: -1}

// IsEmpty reports whether m is the "no match" sentinel.
func (m Match) IsEmpty() bool {
	return m.Start < 0
}

// End returns the exclusive end offset of the match.
func (m Match) End() int {
	return m.Start + m.Length
}

// Matcher finds keywords in text using multi-pattern matching (Aho-Corasick).
// A single pass over the text finds every occurrence of every keyword,
// regardless of how many keywords are in the set: O(n + z) where n is the
// text length and z the number of matches.
//
// A Matcher is built once from a fixed keyword set and is immutable from then
// on, so any number of goroutines may search it concurrently. Changing the
// keyword set means building a new Matcher.
type Matcher interface {
	// SearchAll returns up to max matches starting the scan at byte offset
	// start. Matches are ordered by end position; the order of matches that
	// end at the same position is not specified. Returns an argument error
	// for empty text, start outside [0, len(text)) or max < 1.
	SearchAll(text string, start, max int) ([]Match, error)

	// SearchFirst returns the first match at or after start, or EmptyMatch.
	SearchFirst(text string, start int) (Match, error)

	// Replace substitutes every match in text with replacement. Empty text
	// is returned unchanged.
	Replace(text, replacement string) (string, error)

	// Keywords returns the deduplicated keyword set in insertion order.
	Keywords() []string
}
