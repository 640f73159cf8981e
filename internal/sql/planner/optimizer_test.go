package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascade/internal/catalog"
	"github.com/cascadedb/cascade/internal/config"
	"github.com/cascadedb/cascade/internal/errors"
	"github.com/cascadedb/cascade/internal/feature"
	"github.com/cascadedb/cascade/internal/log"
	"github.com/cascadedb/cascade/internal/sql/types"
)

func newTestOptimizer(source catalog.StatsSource) *IterativeOptimizer {
	return NewIterativeOptimizer(
		DefaultRules(),
		NewStatsCalculator(source, config.DefaultOptimizerConfig()),
		NewCostCalculator(DefaultCostParams()),
		log.Discard(),
	)
}

func TestOptimizerSimplifiesLayeredPlan(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "src", a)
	project := NewProjectNode(ids.Next(), scan, []Assignment{
		{Symbol: a, Expression: NewVariableReference(a, types.BigInt)},
	})
	filtered := NewFilterNode(ids.Next(), project, TrueLiteral())
	inner := NewLimitNode(ids.Next(), filtered, 10)
	outer := NewLimitNode(ids.Next(), inner, 100)

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	result, err := optimizer.Optimize(context.Background(), session, outer, ids, NewSymbolAllocator())
	require.NoError(t, err)

	// Everything trivial collapses: Limit(10) directly over the scan.
	limit, ok := result.Plan.(*LimitNode)
	require.True(t, ok)
	assert.Equal(t, int64(10), limit.Count)
	assert.Equal(t, KindTableScan, limit.Source.Kind())
	assert.Equal(t, []Symbol{a}, result.Plan.OutputSymbols())
	assert.Greater(t, result.RuleFirings, 0)
	assert.Empty(t, session.Warnings.Warnings())
}

func TestOptimizerIsIdempotent(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	plan := NewLimitNode(ids.Next(), testScan(ids, "src", a), 10)

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	result, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RuleFirings)
	assert.Equal(t, planFingerprint(plan), planFingerprint(result.Plan))
}

func TestOptimizerSwapsJoinInputsByCost(t *testing.T) {
	source := statsFixture(t)
	require.NoError(t, source.SetTableStats("dim", &catalog.TableStats{RowCount: 10}))
	require.NoError(t, source.SetTableStats("fact", &catalog.TableStats{RowCount: 100000}))

	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	b := NewSymbol("b")
	join := NewJoinNode(ids.Next(), InnerJoin,
		testScan(ids, "dim", a), testScan(ids, "fact", b),
		[]EquiJoinClause{{Left: a, Right: b}}, []Symbol{a, b})

	optimizer := newTestOptimizer(source)
	session := NewSession("q1")
	result, err := optimizer.Optimize(context.Background(), session, join, ids, NewSymbolAllocator())
	require.NoError(t, err)

	swapped, ok := result.Plan.(*JoinNode)
	require.True(t, ok)
	assert.Equal(t, "fact", swapped.Left.(*TableScanNode).Table)
	assert.Equal(t, "dim", swapped.Right.(*TableScanNode).Table)
	assert.Equal(t, []Symbol{a, b}, swapped.OutputSymbols())
}

func TestOptimizerBudgetExhaustionWarnsAndReturnsBestPlan(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	plan := PlanNode(testScan(ids, "src", a))
	for count := int64(10); count >= 1; count-- {
		plan = NewLimitNode(ids.Next(), plan, count)
	}

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	session.Config.MaxRuleInvocations = 2

	result, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err, "budget exhaustion is not an error")

	warnings := session.Warnings.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.OptimizerGaveUp, warnings[0].Code)
	assert.Equal(t, []Symbol{a}, result.Plan.OutputSymbols())
}

func TestOptimizerTimeoutWarnsAndReturnsBestPlan(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	inner := NewLimitNode(ids.Next(), testScan(ids, "src", a), 10)
	plan := NewLimitNode(ids.Next(), inner, 100)

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	session.Config.Timeout = -time.Second

	result, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err, "timeout is not an error")

	warnings := session.Warnings.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.OptimizerGaveUp, warnings[0].Code)
	assert.Equal(t, 0, result.RuleFirings)
	assert.Equal(t, []Symbol{a}, result.Plan.OutputSymbols())
}

// schemaBreakingRule replaces any limit with a scan of unrelated symbols.
type schemaBreakingRule struct{}

func (schemaBreakingRule) Name() string            { return "SchemaBreaker" }
func (schemaBreakingRule) IsEnabled(*Session) bool { return true }
func (schemaBreakingRule) Pattern() *Pattern       { return MatchKind(KindLimit) }

func (schemaBreakingRule) Apply(_ PlanNode, _ *Captures, ctx *RuleContext) (Result, error) {
	other := NewSymbol("other")
	names := map[Symbol]string{other: "other"}
	return ResultOf(NewTableScanNode(ctx.IDAllocator.Next(), "elsewhere", []Symbol{other}, names)), nil
}

func TestOptimizerSchemaViolationIsFatal(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	plan := NewLimitNode(ids.Next(), testScan(ids, "src", a), 10)

	optimizer := NewIterativeOptimizer(
		[]Rule{schemaBreakingRule{}},
		NewStatsCalculator(statsFixture(t), config.DefaultOptimizerConfig()),
		NewCostCalculator(DefaultCostParams()),
		log.Discard(),
	)
	session := NewSession("q1")

	_, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestOptimizerDisabledByFeatureFlag(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	plan := NewFilterNode(ids.Next(), testScan(ids, "src", a), TrueLiteral())

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	session.Features.Disable(feature.IterativeOptimization)

	result, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RuleInvocations)
	assert.Equal(t, planFingerprint(plan), planFingerprint(result.Plan))
}

func TestOptimizerCollectsEstimatesForEveryNode(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	filter := NewFilterNode(ids.Next(), testScan(ids, "src", a), greaterThan(a, 0))
	plan := NewLimitNode(ids.Next(), filter, 10)

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	result, err := optimizer.Optimize(context.Background(), session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err)

	var walk func(node PlanNode)
	walk = func(node PlanNode) {
		stats, ok := result.Estimates.Stats[node.ID()]
		assert.True(t, ok, "missing stats for node %d", int(node.ID()))
		assert.False(t, stats.IsOutputRowCountUnknown(), "stats known for node %d", int(node.ID()))
		_, ok = result.Estimates.Costs[node.ID()]
		assert.True(t, ok, "missing cost for node %d", int(node.ID()))
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(result.Plan)
}

func TestOptimizerCancelledContextStopsEarly(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	inner := NewLimitNode(ids.Next(), testScan(ids, "src", a), 10)
	plan := NewLimitNode(ids.Next(), inner, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	optimizer := newTestOptimizer(statsFixture(t))
	session := NewSession("q1")
	result, err := optimizer.Optimize(ctx, session, plan, ids, NewSymbolAllocator())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RuleFirings)
	require.Len(t, session.Warnings.Warnings(), 1)
}
