// Package ahocorasick provides a ports.Matcher backed by the
// petar-dambovaliev/aho-corasick DFA. It shares argument validation and the
// replace policy with the in-house automaton, so the two engines are
// interchangeable behind ports.Matcher.
package ahocorasick

import (
	"iter"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// Matcher implements ports.Matcher over a compiled DFA.
// Build() compiles an automaton; the result is immutable.
type Matcher struct {
	automaton aho.AhoCorasick
	keywords  []string
	built     bool
}

var _ ports.Matcher = (*Matcher)(nil)

// Build compiles the DFA from the given keywords. Duplicates are dropped so
// each keyword reports once per occurrence.
func Build(keywords []string) (*Matcher, error) {
	if err := automaton.ValidateKeywords(keywords); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(keywords))
	m := &Matcher{keywords: make([]string, 0, len(keywords))}
	for _, kw := range keywords {
		if !seen[kw] {
			seen[kw] = true
			m.keywords = append(m.keywords, kw)
		}
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA:       true,
		MatchKind: aho.StandardMatch,
	})
	m.automaton = builder.Build(m.keywords)
	m.built = true
	return m, nil
}

// Keywords returns a copy of the deduplicated keyword set.
func (m *Matcher) Keywords() []string {
	if m == nil || !m.built {
		return nil
	}
	out := make([]string, len(m.keywords))
	copy(out, m.keywords)
	return out
}

// scan yields overlapping matches for text[start:], rebased to absolute
// offsets, stopping after max.
func (m *Matcher) scan(text string, start, max int) (iter.Seq[ports.Match], error) {
	if m == nil || !m.built {
		return nil, automaton.ErrNotBuilt
	}
	if err := automaton.ValidateSearch(text, start, max); err != nil {
		return nil, err
	}
	return func(yield func(ports.Match) bool) {
		it := m.automaton.IterOverlappingByte([]byte(text[start:]))
		n := 0
		for next := it.Next(); next != nil && n < max; next = it.Next() {
			kw := m.keywords[next.Pattern()]
			n++
			if !yield(ports.Match{Start: start + next.Start(), Text: kw, Length: len(kw)}) {
				return
			}
		}
	}, nil
}

// SearchAll returns up to max matches starting at byte offset start.
func (m *Matcher) SearchAll(text string, start, max int) ([]ports.Match, error) {
	seq, err := m.scan(text, start, max)
	if err != nil {
		return nil, err
	}
	var matches []ports.Match
	for match := range seq {
		matches = append(matches, match)
	}
	return matches, nil
}

// SearchFirst returns the first match at or after start, or ports.EmptyMatch.
func (m *Matcher) SearchFirst(text string, start int) (ports.Match, error) {
	seq, err := m.scan(text, start, 1)
	if err != nil {
		return ports.EmptyMatch, err
	}
	for match := range seq {
		return match, nil
	}
	return ports.EmptyMatch, nil
}

// Replace substitutes every match using the same cursor policy as the
// in-house automaton.
func (m *Matcher) Replace(text, replacement string) (string, error) {
	if m == nil || !m.built {
		return "", automaton.ErrNotBuilt
	}
	if text == "" {
		return text, nil
	}
	seq, err := m.scan(text, 0, automaton.Unbounded)
	if err != nil {
		return "", err
	}
	return automaton.ReplaceMatches(text, replacement, seq), nil
}
