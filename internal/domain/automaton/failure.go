package automaton

// computeFailures attaches a failure link to every node and merges each
// failure target's outputs into the node, in breadth-first order.
//
// Level order matters: a node's failure target is strictly shallower, so by
// the time a node is dequeued its parent's failure chain and its target's
// outputs are final.
func computeFailures(nodes []node) {
	queue := make([]nodeID, 0, len(nodes))

	// Depth 1 always fails to root.
	for _, child := range nodes[root].next {
		nodes[child].failure = root
		queue = appendChildren(queue, nodes, child)
	}

	for head := 0; head < len(queue); head++ {
		id := queue[head]
		n := &nodes[id]

		r := nodes[n.parent].failure
		for r != root {
			if _, ok := nodes[r].transition(n.label); ok {
				break
			}
			r = nodes[r].failure
		}

		if t, ok := nodes[r].transition(n.label); ok && t != id {
			n.failure = t
			for _, kw := range nodes[t].outputs {
				n.addOutput(kw)
			}
		} else {
			n.failure = root
		}

		queue = appendChildren(queue, nodes, id)
	}

	nodes[root].failure = root
}

func appendChildren(queue []nodeID, nodes []node, id nodeID) []nodeID {
	for _, child := range nodes[id].next {
		queue = append(queue, child)
	}
	return queue
}
