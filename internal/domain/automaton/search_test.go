package automaton

import (
	"strings"
	"sync"
	"testing"

	"github.com/corey/acmatch/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Matcher: lazy ordered scan, bounded results, start offsets, validation
// =============================================================================

func TestSearchAll_Ushers(t *testing.T) {
	a := MustBuild(classic...)
	matches, err := a.SearchAll("ushers", 0, Unbounded)
	require.NoError(t, err)

	assert.Equal(t, []hit{{1, "she"}, {2, "he"}, {2, "hers"}}, hits(matches))
	for _, m := range matches {
		assert.Equal(t, len(m.Text), m.Length)
		assert.LessOrEqual(t, m.End(), len("ushers"))
	}
}

func TestSearchAll_OrderedByEndPosition(t *testing.T) {
	a := MustBuild(classic...)
	matches, err := a.SearchAll("ushers his hers", 0, Unbounded)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].End(), matches[i].End())
	}
	// First match is "she", co-located "he" comes in the same step.
	assert.Equal(t, "she", matches[0].Text)
	assert.Equal(t, 4, matches[1].End())
}

func TestSearchAll_Deterministic(t *testing.T) {
	a := MustBuild(classic...)
	first, err := a.SearchAll("she sells his hershey", 0, Unbounded)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.SearchAll("she sells his hershey", 0, Unbounded)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchAll_Bounded(t *testing.T) {
	a := MustBuild(classic...)
	all, err := a.SearchAll("ushers", 0, Unbounded)
	require.NoError(t, err)

	one, err := a.SearchAll("ushers", 0, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, all[0], one[0])

	two, err := a.SearchAll("ushers", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], two)
}

func TestSearchAll_StartOffsetIsAbsolute(t *testing.T) {
	a := MustBuild(classic...)
	matches, err := a.SearchAll("ushers", 2, Unbounded)
	require.NoError(t, err)
	// "she" begins before the offset and is never seen.
	assert.Equal(t, []hit{{2, "he"}, {2, "hers"}}, hits(matches))
}

func TestSearchAll_FollowsFailureLinks(t *testing.T) {
	a := MustBuild("aab")
	matches, err := a.SearchAll("aaab", 0, Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []hit{{1, "aab"}}, hits(matches))
}

func TestSearchAll_RepeatedAndAdjacent(t *testing.T) {
	a := MustBuild("aa")
	matches, err := a.SearchAll("aaaa", 0, Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []hit{{0, "aa"}, {1, "aa"}, {2, "aa"}}, hits(matches))
}

func TestSearchAll_NoMatch(t *testing.T) {
	a := MustBuild(classic...)
	matches, err := a.SearchAll("xyz qqq", 0, Unbounded)
	require.NoError(t, err)
	assert.Empty(t, matches)

	first, err := a.SearchFirst("xyz qqq", 0)
	require.NoError(t, err)
	assert.True(t, first.IsEmpty())
	assert.Equal(t, ports.EmptyMatch, first)
}

func TestSearchFirst(t *testing.T) {
	a := MustBuild(classic...)
	m, err := a.SearchFirst("ushers", 0)
	require.NoError(t, err)
	assert.Equal(t, ports.Match{Start: 1, Text: "she", Length: 3}, m)

	m, err = a.SearchFirst("ushers", 4)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty(), "nothing completes inside \"rs\"")
}

func TestSearchAll_MultiByteKeywords(t *testing.T) {
	kws := []string{"伟大", "特色主义", "公园"}
	text := "从这里建设伟大的特色主义主题公园"
	a := MustBuild(kws...)

	matches, err := a.SearchAll(text, 0, Unbounded)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.Equal(t, strings.Index(text, m.Text), m.Start, m.Text)
		assert.Equal(t, m.Text, text[m.Start:m.End()])
	}
}

func TestSearch_ArgumentValidation(t *testing.T) {
	a := MustBuild(classic...)

	_, err := a.SearchAll("", 0, Unbounded)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = a.SearchAll("ushers", len("ushers"), Unbounded)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = a.SearchAll("ushers", -1, Unbounded)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = a.SearchAll("ushers", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	m, err := a.SearchFirst("", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, m.IsEmpty())
}

func TestSearch_NotBuilt(t *testing.T) {
	var nilAutomaton *Automaton
	_, err := nilAutomaton.SearchAll("ushers", 0, Unbounded)
	assert.ErrorIs(t, err, ErrNotBuilt)

	zero := &Automaton{}
	_, err = zero.SearchFirst("ushers", 0)
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.Nil(t, zero.Keywords())
	assert.Zero(t, zero.NodeCount())
}

func TestIterator_LazyAndExhausts(t *testing.T) {
	a := MustBuild(classic...)
	it, err := a.Iter("ushers", 0, Unbounded)
	require.NoError(t, err)

	m, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "she", m.Text)
	// Only the first four bytes have been consumed so far.
	assert.Equal(t, 4, it.pos)

	var rest []ports.Match
	for m := range it.All() {
		rest = append(rest, m)
	}
	assert.Len(t, rest, 2)

	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestIterator_IndependentPerCall(t *testing.T) {
	a := MustBuild(classic...)
	it1, err := a.Iter("ushers", 0, Unbounded)
	require.NoError(t, err)
	it2, err := a.Iter("ushers", 0, Unbounded)
	require.NoError(t, err)

	m1, _ := it1.Next()
	m1, _ = it1.Next()
	m2, _ := it2.Next()
	assert.Equal(t, "he", m1.Text)
	assert.Equal(t, "she", m2.Text)
}

func TestIterator_BreakStopsScan(t *testing.T) {
	a := MustBuild("a")
	it, err := a.Iter("aaaaaaaa", 0, Unbounded)
	require.NoError(t, err)

	n := 0
	for range it.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, it.pos)
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	a := MustBuild(classic...)
	want, err := a.SearchAll("ushers and his hershey", 0, Unbounded)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := a.SearchAll("ushers and his hershey", 0, Unbounded)
				if err != nil {
					errs <- err
					return
				}
				if len(got) != len(want) {
					errs <- assert.AnError
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
