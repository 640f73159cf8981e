package planner_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascade/internal/feature"
	"github.com/cascadedb/cascade/internal/sql/planner"
	"github.com/cascadedb/cascade/internal/sql/planner/ruletest"
	"github.com/cascadedb/cascade/internal/sql/types"
)

func scanOf(ids *planner.PlanNodeIDAllocator, table string, columns ...planner.Symbol) *planner.TableScanNode {
	names := make(map[planner.Symbol]string, len(columns))
	for _, c := range columns {
		names[c] = c.Name()
	}
	return planner.NewTableScanNode(ids.Next(), table, columns, names)
}

func positive(symbol planner.Symbol) planner.Expression {
	return planner.NewCall("$gt", types.Boolean,
		planner.NewVariableReference(symbol, types.BigInt),
		planner.NewConstant(types.BigInt, types.NewValue(int64(0))))
}

func identityAssignments(symbols ...planner.Symbol) []planner.Assignment {
	out := make([]planner.Assignment, len(symbols))
	for i, s := range symbols {
		out[i] = planner.Assignment{Symbol: s, Expression: planner.NewVariableReference(s, types.BigInt)}
	}
	return out
}

func TestRemoveTrivialFilterTrue(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewRemoveTrivialFilter())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)

	result := ra.
		On(planner.NewFilterNode(ra.IDs().Next(), scan, planner.TrueLiteral())).
		Fires()

	assert.Equal(t, planner.KindTableScan, result.Kind())
	assert.Equal(t, []planner.Symbol{a}, result.OutputSymbols())
}

func TestRemoveTrivialFilterFalse(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewRemoveTrivialFilter())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)

	result := ra.
		On(planner.NewFilterNode(ra.IDs().Next(), scan, planner.FalseLiteral())).
		Fires()

	values, ok := result.(*planner.ValuesNode)
	require.True(t, ok)
	assert.Empty(t, values.Rows)
	assert.Equal(t, []planner.Symbol{a}, values.OutputSymbols())
}

func TestRemoveTrivialFilterKeepsRealPredicate(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewRemoveTrivialFilter())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)

	ra.
		On(planner.NewFilterNode(ra.IDs().Next(), scan, positive(a))).
		DoesNotFire()
}

func TestRemoveTrivialFilterRespectsFeatureFlag(t *testing.T) {
	rule := planner.NewRemoveTrivialFilter()
	session := planner.NewSession("test")
	session.Features.Disable(feature.FilterSimplification)
	assert.False(t, rule.IsEnabled(session))
}

func TestMergeFiltersKeepsInnerPredicateFirst(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewMergeFilters())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	scan := scanOf(ra.IDs(), "orders", a, b)
	inner := planner.NewFilterNode(ra.IDs().Next(), scan, positive(a))
	outer := planner.NewFilterNode(ra.IDs().Next(), inner, positive(b))

	result := ra.On(outer).Fires()

	merged, ok := result.(*planner.FilterNode)
	require.True(t, ok)
	assert.Equal(t, planner.KindTableScan, merged.Source.Kind())

	conjuncts := planner.ExtractConjuncts(merged.Predicate)
	require.Len(t, conjuncts, 2)
	assert.True(t, conjuncts[0].Equals(positive(a)), "inner predicate evaluates first")
	assert.True(t, conjuncts[1].Equals(positive(b)))
}

func TestMergeFiltersNeedsNestedFilters(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewMergeFilters())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)

	ra.
		On(planner.NewFilterNode(ra.IDs().Next(), scan, positive(a))).
		DoesNotFire()
}

func TestRemoveIdentityProject(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewRemoveIdentityProject())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	scan := scanOf(ra.IDs(), "orders", a, b)

	result := ra.
		On(planner.NewProjectNode(ra.IDs().Next(), scan, identityAssignments(a, b))).
		Fires()

	assert.Equal(t, planner.KindTableScan, result.Kind())
}

func TestRemoveIdentityProjectKeepsReordering(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewRemoveIdentityProject())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	scan := scanOf(ra.IDs(), "orders", a, b)

	ra.
		On(planner.NewProjectNode(ra.IDs().Next(), scan, identityAssignments(b, a))).
		DoesNotFire()
}

func TestMergeLimitsTakesSmallerCount(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewMergeLimits())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)
	inner := planner.NewLimitNode(ra.IDs().Next(), scan, 10)
	outer := planner.NewLimitNode(ra.IDs().Next(), inner, 100)

	result := ra.On(outer).Fires()

	limit, ok := result.(*planner.LimitNode)
	require.True(t, ok)
	assert.Equal(t, int64(10), limit.Count)
	assert.Equal(t, planner.KindTableScan, limit.Source.Kind())
}

func TestPushLimitThroughProject(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewPushLimitThroughProject())
	a := planner.NewSymbol("a")
	scan := scanOf(ra.IDs(), "orders", a)
	project := planner.NewProjectNode(ra.IDs().Next(), scan, identityAssignments(a))
	limit := planner.NewLimitNode(ra.IDs().Next(), project, 10)

	result := ra.On(limit).Fires()

	outer, ok := result.(*planner.ProjectNode)
	require.True(t, ok)
	pushed, ok := outer.Source.(*planner.LimitNode)
	require.True(t, ok)
	assert.Equal(t, int64(10), pushed.Count)
	assert.Equal(t, planner.KindTableScan, pushed.Source.Kind())
}

func TestSwapJoinInputsPutsSmallerSideOnBuild(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewSwapJoinInputs())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	small := scanOf(ra.IDs(), "dim", a)
	big := scanOf(ra.IDs(), "fact", b)
	join := planner.NewJoinNode(ra.IDs().Next(), planner.InnerJoin, small, big,
		[]planner.EquiJoinClause{{Left: a, Right: b}}, []planner.Symbol{a, b})

	rowsByTable := map[string]float64{"dim": 10, "fact": 100000}
	stats := func(node planner.PlanNode) planner.PlanNodeStatsEstimate {
		if scan, ok := node.(*planner.TableScanNode); ok {
			return planner.NewPlanNodeStats(rowsByTable[scan.Table])
		}
		return planner.UnknownPlanStats()
	}

	result := ra.WithStats(stats).On(join).Fires()

	swapped, ok := result.(*planner.JoinNode)
	require.True(t, ok)
	assert.Equal(t, "fact", swapped.Left.(*planner.TableScanNode).Table)
	assert.Equal(t, "dim", swapped.Right.(*planner.TableScanNode).Table)
	assert.Equal(t, []planner.EquiJoinClause{{Left: b, Right: a}}, swapped.Criteria)
	assert.Equal(t, []planner.Symbol{a, b}, swapped.OutputSymbols())
}

func TestSwapJoinInputsLeavesGoodOrderAlone(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewSwapJoinInputs())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	big := scanOf(ra.IDs(), "fact", a)
	small := scanOf(ra.IDs(), "dim", b)
	join := planner.NewJoinNode(ra.IDs().Next(), planner.InnerJoin, big, small,
		[]planner.EquiJoinClause{{Left: a, Right: b}}, []planner.Symbol{a, b})

	rowsByTable := map[string]float64{"dim": 10, "fact": 100000}
	stats := func(node planner.PlanNode) planner.PlanNodeStatsEstimate {
		if scan, ok := node.(*planner.TableScanNode); ok {
			return planner.NewPlanNodeStats(rowsByTable[scan.Table])
		}
		return planner.UnknownPlanStats()
	}

	ra.WithStats(stats).On(join).DoesNotFire()
}

func TestSwapJoinInputsNeedsKnownStats(t *testing.T) {
	ra := ruletest.Assert(t, planner.NewSwapJoinInputs())
	a := planner.NewSymbol("a")
	b := planner.NewSymbol("b")
	left := scanOf(ra.IDs(), "t1", a)
	right := scanOf(ra.IDs(), "t2", b)
	join := planner.NewJoinNode(ra.IDs().Next(), planner.InnerJoin, left, right,
		[]planner.EquiJoinClause{{Left: a, Right: b}}, []planner.Symbol{a, b})

	stats := func(planner.PlanNode) planner.PlanNodeStatsEstimate {
		return planner.NewPlanNodeStats(math.NaN())
	}

	ra.WithStats(stats).On(join).DoesNotFire()
}
