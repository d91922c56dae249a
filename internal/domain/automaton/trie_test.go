package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Trie Builder: prefix sharing, output placement, fail-fast validation
// =============================================================================

func TestTrie_SharesPrefixes(t *testing.T) {
	// "he" and "hers" share the h-e path: root + h + e + r + s.
	a, err := Build([]string{"he", "hers"})
	require.NoError(t, err)
	assert.Equal(t, 5, a.NodeCount())

	he, ok := a.find("he")
	require.True(t, ok)
	hers, ok := a.find("hers")
	require.True(t, ok)

	// The "hers" path runs through the very same "he" node.
	assert.Equal(t, he, a.nodes[a.nodes[hers].parent].parent)
	assert.Equal(t, []string{"he"}, a.outputsOf("he"))
	assert.Equal(t, []string{"hers"}, a.outputsOf("hers"))
}

func TestTrie_NodeCountBoundedByKeywordLength(t *testing.T) {
	kws := []string{"abc", "abd", "xyz", "a"}
	a, err := Build(kws)
	require.NoError(t, err)

	total := 1
	for _, kw := range kws {
		total += len(kw)
	}
	assert.LessOrEqual(t, a.NodeCount(), total)
	// root, a, ab, abc, abd, x, xy, xyz
	assert.Equal(t, 8, a.NodeCount())
}

func TestTrie_IntermediateNodesHaveNoOwnOutput(t *testing.T) {
	a, err := Build([]string{"hers"})
	require.NoError(t, err)
	assert.Empty(t, a.outputsOf("h"))
	assert.Empty(t, a.outputsOf("her"))
	assert.Equal(t, []string{"hers"}, a.outputsOf("hers"))
}

func TestTrie_DuplicateKeywordsCollapse(t *testing.T) {
	a, err := Build([]string{"he", "he", "she", "he"})
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she"}, a.Keywords())
	assert.Equal(t, []string{"he"}, a.outputsOf("he"))

	matches, err := a.SearchAll("he", 0, Unbounded)
	require.NoError(t, err)
	assert.Len(t, matches, 1, "a duplicate keyword must not double-report")
}

func TestTrie_AddOutputIdempotent(t *testing.T) {
	var n node
	n.addOutput(3)
	n.addOutput(3)
	n.addOutput(1)
	assert.Equal(t, []int32{3, 1}, n.outputs)
}

func TestTrie_TransitionsDeterministic(t *testing.T) {
	a, err := Build(classic)
	require.NoError(t, err)
	for i := range a.nodes {
		seen := make(map[nodeID]bool)
		for _, child := range a.nodes[i].next {
			assert.False(t, seen[child], "child reached by two labels")
			seen[child] = true
			assert.Equal(t, nodeID(i), a.nodes[child].parent)
		}
	}
}

func TestBuild_RejectsBadKeywordSets(t *testing.T) {
	cases := map[string][]string{
		"nil":         nil,
		"empty":       {},
		"empty entry": {"he", ""},
		"only empty":  {""},
	}
	for name, kws := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := Build(kws)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMustBuild_PanicsOnEmptySet(t *testing.T) {
	assert.Panics(t, func() { MustBuild() })
	assert.NotPanics(t, func() { MustBuild("x") })
}

func TestStats(t *testing.T) {
	a := MustBuild(classic...)
	s := a.Stats()
	assert.Equal(t, 4, s.Keywords)
	assert.Equal(t, a.NodeCount(), s.Nodes)
	assert.Equal(t, s.Nodes-1, s.Transitions, "a trie has one incoming edge per non-root node")
	assert.Equal(t, 4, s.MaxDepth)

	var zero Automaton
	assert.Equal(t, Stats{}, zero.Stats())
}
