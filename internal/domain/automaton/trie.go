package automaton

// buildTrie inserts every keyword into a fresh prefix trie. Keywords sharing a
// prefix share the path for it, so the arena never holds more than
// 1 + sum(len(keyword)) nodes. Keywords must already be validated and
// deduplicated.
func buildTrie(keywords []string) []node {
	size := 1
	for _, kw := range keywords {
		size += len(kw)
	}

	nodes := make([]node, 1, size)
	for i, kw := range keywords {
		cur := root
		for j := 0; j < len(kw); j++ {
			b := kw[j]
			child, ok := nodes[cur].transition(b)
			if !ok {
				child = nodeID(len(nodes))
				nodes = append(nodes, node{label: b, parent: cur})
				if nodes[cur].next == nil {
					nodes[cur].next = make(map[byte]nodeID)
				}
				nodes[cur].next[b] = child
			}
			cur = child
		}
		nodes[cur].addOutput(int32(i))
	}
	return nodes
}
