package automaton

import (
	"iter"

	"github.com/corey/acmatch/internal/ports"
)

// Iterator walks an automaton over one text and yields matches lazily.
// All scan state lives here; the automaton is only read. An Iterator is not
// safe for concurrent use, but any number of Iterators may share an Automaton.
type Iterator struct {
	a         *Automaton
	text      string
	pos       int    // next byte to consume
	state     nodeID // current node
	pending   []int32
	end       int // byte offset just past the node that produced pending
	remaining int
}

// Iter validates its arguments and returns an iterator positioned at start.
// No scanning happens until Next is called.
func (a *Automaton) Iter(text string, start, max int) (*Iterator, error) {
	if !a.built() {
		return nil, ErrNotBuilt
	}
	if err := ValidateSearch(text, start, max); err != nil {
		return nil, err
	}
	return &Iterator{
		a:         a,
		text:      text,
		pos:       start,
		state:     root,
		remaining: max,
	}, nil
}

// Next returns the next match, or false once the text is exhausted or the
// result limit has been reached.
func (it *Iterator) Next() (ports.Match, bool) {
	if it.remaining <= 0 {
		return ports.Match{}, false
	}
	for len(it.pending) == 0 {
		if it.pos >= len(it.text) {
			return ports.Match{}, false
		}
		it.step()
	}

	kw := it.a.keywords[it.pending[0]]
	it.pending = it.pending[1:]
	it.remaining--
	return ports.Match{
		Start:  it.end - len(kw),
		Text:   kw,
		Length: len(kw),
	}, true
}

// step consumes one byte: follow a transition if there is one, otherwise
// fall back along failure links until one exists or root is reached.
func (it *Iterator) step() {
	nodes := it.a.nodes
	b := it.text[it.pos]

	cur := it.state
	for {
		if next, ok := nodes[cur].transition(b); ok {
			cur = next
			break
		}
		if cur == root {
			break
		}
		cur = nodes[cur].failure
	}

	it.state = cur
	it.pos++
	it.end = it.pos
	it.pending = nodes[cur].outputs
}

// All adapts the iterator to a range-over-func sequence. The sequence shares
// the iterator's position, so it can only be ranged over once.
func (it *Iterator) All() iter.Seq[ports.Match] {
	return func(yield func(ports.Match) bool) {
		for m, ok := it.Next(); ok; m, ok = it.Next() {
			if !yield(m) {
				return
			}
		}
	}
}
