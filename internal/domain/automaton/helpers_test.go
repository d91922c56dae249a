package automaton

import (
	"sort"

	"github.com/corey/acmatch/internal/ports"
)

// find walks transitions from root along path.
func (a *Automaton) find(path string) (nodeID, bool) {
	cur := root
	for i := 0; i < len(path); i++ {
		next, ok := a.nodes[cur].transition(path[i])
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// pathOf spells the string leading from root to id.
func (a *Automaton) pathOf(id nodeID) string {
	var rev []byte
	for id != root {
		rev = append(rev, a.nodes[id].label)
		id = a.nodes[id].parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return string(rev)
}

// outputsOf returns the keywords recognized at the node for path.
func (a *Automaton) outputsOf(path string) []string {
	id, ok := a.find(path)
	if !ok {
		return nil
	}
	var out []string
	for _, kw := range a.nodes[id].outputs {
		out = append(out, a.keywords[kw])
	}
	return out
}

type hit struct {
	Start int
	Text  string
}

// hits reduces matches to (start, text) pairs sorted for set comparison.
func hits(matches []ports.Match) []hit {
	out := make([]hit, 0, len(matches))
	for _, m := range matches {
		out = append(out, hit{m.Start, m.Text})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Text < out[j].Text
	})
	return out
}

var classic = []string{"he", "she", "his", "hers"}
