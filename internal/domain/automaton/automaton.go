// Package automaton implements Aho-Corasick multi-pattern exact matching.
//
// Build turns a keyword set into a trie, links every node to its longest
// proper suffix that is also a trie path, and folds output sets along those
// failure links. The result is immutable: any number of goroutines may scan
// the same Automaton concurrently, each with its own Iterator.
//
// Matching compares bytes. Offsets and lengths are byte offsets into the
// scanned string, as with the strings package.
package automaton

import (
	"math"

	"github.com/corey/acmatch/internal/ports"
)

// Unbounded is the result limit that never stops a scan early.
const Unbounded = math.MaxInt

// Automaton is a built keyword matcher. The zero value is not built; use Build.
type Automaton struct {
	nodes    []node
	keywords []string
}

// Stats summarizes an automaton's shape.
type Stats struct {
	Keywords    int `json:"keywords"`
	Nodes       int `json:"nodes"`
	Transitions int `json:"transitions"`
	MaxDepth    int `json:"max_depth"`
}

// Build validates keywords and constructs the automaton. Duplicate keywords
// are collapsed to their first occurrence. Validation happens before any node
// is created, so a failed Build leaves nothing behind.
func Build(keywords []string) (*Automaton, error) {
	if err := ValidateKeywords(keywords); err != nil {
		return nil, err
	}

	unique := dedupe(keywords)
	nodes := buildTrie(unique)
	computeFailures(nodes)

	return &Automaton{nodes: nodes, keywords: unique}, nil
}

// MustBuild is like Build but panics on error. For fixed keyword tables.
func MustBuild(keywords ...string) *Automaton {
	a, err := Build(keywords)
	if err != nil {
		panic(err)
	}
	return a
}

func dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func (a *Automaton) built() bool {
	return a != nil && len(a.nodes) > 0
}

// Keywords returns a copy of the deduplicated keyword set in insertion order.
func (a *Automaton) Keywords() []string {
	if !a.built() {
		return nil
	}
	out := make([]string, len(a.keywords))
	copy(out, a.keywords)
	return out
}

// NodeCount returns the number of trie nodes, root included.
func (a *Automaton) NodeCount() int {
	if !a.built() {
		return 0
	}
	return len(a.nodes)
}

// Stats reports the automaton's size.
func (a *Automaton) Stats() Stats {
	if !a.built() {
		return Stats{}
	}
	s := Stats{Keywords: len(a.keywords), Nodes: len(a.nodes)}
	for i := range a.nodes {
		s.Transitions += len(a.nodes[i].next)
	}
	for _, kw := range a.keywords {
		if len(kw) > s.MaxDepth {
			s.MaxDepth = len(kw)
		}
	}
	return s
}

// SearchAll collects up to max matches, scanning from byte offset start.
func (a *Automaton) SearchAll(text string, start, max int) ([]ports.Match, error) {
	it, err := a.Iter(text, start, max)
	if err != nil {
		return nil, err
	}
	var matches []ports.Match
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		matches = append(matches, m)
	}
	return matches, nil
}

// SearchFirst returns the first match at or after start, or ports.EmptyMatch.
func (a *Automaton) SearchFirst(text string, start int) (ports.Match, error) {
	it, err := a.Iter(text, start, 1)
	if err != nil {
		return ports.EmptyMatch, err
	}
	if m, ok := it.Next(); ok {
		return m, nil
	}
	return ports.EmptyMatch, nil
}

// Replace substitutes every match in text with replacement.
// See ReplaceMatches for how overlapping matches are handled.
func (a *Automaton) Replace(text, replacement string) (string, error) {
	if !a.built() {
		return "", ErrNotBuilt
	}
	if text == "" {
		return text, nil
	}
	it, err := a.Iter(text, 0, Unbounded)
	if err != nil {
		return "", err
	}
	return ReplaceMatches(text, replacement, it.All()), nil
}

var _ ports.Matcher = (*Automaton)(nil)
