package automaton

// nodeID addresses a node in the automaton's arena. Parent and failure
// references are plain indices; only transitions express ownership.
type nodeID int32

// root is always the first node in the arena.
const root nodeID = 0

// node is one trie vertex.
type node struct {
	label   byte            // byte consumed by the transition into this node (unused on root)
	parent  nodeID          // only read while computing failure links
	failure nodeID          // longest proper suffix that is also a trie path
	next    map[byte]nodeID // transitions, at most one per byte
	outputs []int32         // keyword indices recognized here, own keyword first
}

// transition returns the child reached from n on b.
func (n *node) transition(b byte) (nodeID, bool) {
	id, ok := n.next[b]
	return id, ok
}

// addOutput records keyword kw as recognized at n. Idempotent.
func (n *node) addOutput(kw int32) {
	for _, o := range n.outputs {
		if o == kw {
			return
		}
	}
	n.outputs = append(n.outputs, kw)
}
