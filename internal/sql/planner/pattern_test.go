package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchKind(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, greaterThan(a, 5))

	assert.True(t, MatchKind(KindFilter).Matches(filter, NoLookup()))
	assert.False(t, MatchKind(KindFilter).Matches(scan, NoLookup()))
	assert.True(t, Any().Matches(scan, NoLookup()))
}

func TestCaptureRecordsMatchedValue(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, greaterThan(a, 5))

	source := NewCapture("source")
	pattern := MatchKind(KindFilter).
		With(Source().Matching(MatchKind(KindTableScan).CapturedAs(source)))

	matched := false
	for match := range pattern.Match(filter, NoLookup()) {
		matched = true
		assert.Same(t, filter, match.Value)
		assert.Same(t, scan, Captured[*TableScanNode](match.Captures, source))
	}
	assert.True(t, matched)
}

func TestPatternResolvesChildrenThroughLookup(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, greaterThan(a, 5))

	memo, err := NewMemo(ids, filter)
	require.NoError(t, err)
	lookup := NewMemoLookup(memo)

	// In the memo the filter's child is a GroupReference; the pattern
	// still sees the scan behind it.
	pattern := MatchKind(KindFilter).
		With(Source().Matching(MatchKind(KindTableScan)))
	assert.True(t, pattern.Matches(memo.Node(memo.RootGroup()), lookup))
}

func TestConjunctsProduceMultipleMatches(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	predicate := Conjunction(greaterThan(a, 1), greaterThan(a, 2), greaterThan(a, 3))
	filter := NewFilterNode(ids.Next(), scan, predicate)

	conjunct := NewCapture("conjunct")
	pattern := MatchKind(KindFilter).
		With(FilterConjuncts().CapturedAs(conjunct))

	var seen []Expression
	for match := range pattern.Match(filter, NoLookup()) {
		seen = append(seen, Captured[Expression](match.Captures, conjunct))
	}
	require.Len(t, seen, 3)
	assert.True(t, seen[0].Equals(greaterThan(a, 1)))
	assert.True(t, seen[1].Equals(greaterThan(a, 2)))
	assert.True(t, seen[2].Equals(greaterThan(a, 3)))
}

func TestMatchSequenceIsRestartable(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, Conjunction(greaterThan(a, 1), greaterThan(a, 2)))

	conjunct := NewCapture("conjunct")
	pattern := MatchKind(KindFilter).With(FilterConjuncts().CapturedAs(conjunct))
	matches := pattern.Match(filter, NoLookup())

	count := func() int {
		n := 0
		for range matches {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestMatchSequenceStopsEarly(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, Conjunction(greaterThan(a, 1), greaterThan(a, 2)))

	conjunct := NewCapture("conjunct")
	pattern := MatchKind(KindFilter).With(FilterConjuncts().CapturedAs(conjunct))

	n := 0
	for range pattern.Match(filter, NoLookup()) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestPropertyAbsenceMeansNoMatch(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)

	// A scan has no children, so any child-shaped pattern fails.
	pattern := MatchKind(KindTableScan).With(Source().Matching(Any()))
	assert.False(t, pattern.Matches(scan, NoLookup()))
}

func TestCapturedPanicsOnMissingCapture(t *testing.T) {
	captures := EmptyCaptures()
	missing := NewCapture("missing")
	assert.Panics(t, func() {
		Captured[PlanNode](captures, missing)
	})
}

func TestFilterPredicateProperty(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "orders", a)
	filter := NewFilterNode(ids.Next(), scan, TrueLiteral())

	predicate := NewCapture("predicate")
	pattern := MatchKind(KindFilter).With(FilterPredicate().CapturedAs(predicate))

	for match := range pattern.Match(filter, NoLookup()) {
		expr := Captured[Expression](match.Captures, predicate)
		assert.True(t, IsTrue(expr))
		return
	}
	t.Fatal("pattern did not match")
}
