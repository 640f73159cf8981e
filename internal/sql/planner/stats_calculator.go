package planner

import (
	"math"

	"github.com/cascadedb/cascade/internal/catalog"
	"github.com/cascadedb/cascade/internal/config"
	"github.com/cascadedb/cascade/internal/errors"
	"github.com/cascadedb/cascade/internal/sql/types"
)

// StatsCalculator derives a plan node's output estimate from base-table
// statistics and the estimates of its children. Children are requested
// through the statsOf callback so that a caching provider composes across
// the plan DAG.
type StatsCalculator struct {
	source catalog.StatsSource
	cfg    *config.OptimizerConfig
}

// NewStatsCalculator creates a calculator reading base statistics from the
// given source.
func NewStatsCalculator(source catalog.StatsSource, cfg *config.OptimizerConfig) *StatsCalculator {
	return &StatsCalculator{source: source, cfg: cfg}
}

// ComputeStats estimates the output of one node. lookup resolves group
// references in the node's children; statsOf returns a child's estimate.
func (c *StatsCalculator) ComputeStats(node PlanNode, lookup Lookup, statsOf func(PlanNode) (PlanNodeStatsEstimate, error), session *Session) (PlanNodeStatsEstimate, error) {
	switch n := node.(type) {
	case *TableScanNode:
		return c.scanStats(n, session)
	case *FilterNode:
		return c.filterStats(n, lookup, statsOf, session)
	case *ProjectNode:
		return c.projectStats(n, statsOf)
	case *JoinNode:
		return c.joinStats(n, statsOf)
	case *SemiJoinNode:
		return c.semiJoinStats(n, statsOf)
	case *AggregateNode:
		return c.aggregateStats(n, statsOf)
	case *LimitNode:
		return c.limitStats(n, statsOf)
	case *ValuesNode:
		return c.valuesStats(n), nil
	case *GroupReference:
		return statsOf(n)
	default:
		return UnknownPlanStats(), errors.Internalf("no stats calculator for node kind %s", node.Kind())
	}
}

func (c *StatsCalculator) scanStats(scan *TableScanNode, session *Session) (PlanNodeStatsEstimate, error) {
	tableStats, err := c.source.TableStatistics(scan.Table)
	if err != nil {
		return UnknownPlanStats(), err
	}
	if tableStats == nil {
		session.Warn(errors.StatisticsMissing, "no statistics for table "+scan.Table)
		result := NewPlanNodeStats(c.cfg.DefaultScanRowCount)
		for _, symbol := range scan.Columns {
			result = result.WithSymbolStats(symbol, UnknownSymbolStats())
		}
		return result, nil
	}

	result := NewPlanNodeStats(tableStats.RowCount)
	for _, symbol := range scan.Columns {
		columnStats, err := c.source.ColumnStatistics(scan.Table, scan.ColumnNames[symbol])
		if err != nil {
			return UnknownPlanStats(), err
		}
		if columnStats == nil {
			result = result.WithSymbolStats(symbol, UnknownSymbolStats())
			continue
		}
		result = result.WithSymbolStats(symbol, SymbolStatsEstimate{
			LowValue:            columnStats.LowValue,
			HighValue:           columnStats.HighValue,
			NullsFraction:       columnStats.NullsFraction,
			AverageRowSize:      columnStats.AvgWidth,
			DistinctValuesCount: columnStats.DistinctCount,
		})
	}
	return result, nil
}

func (c *StatsCalculator) filterStats(filter *FilterNode, lookup Lookup, statsOf func(PlanNode) (PlanNodeStatsEstimate, error), session *Session) (PlanNodeStatsEstimate, error) {
	if IsFalse(filter.Predicate) {
		input, err := statsOf(filter.Source)
		if err != nil {
			return UnknownPlanStats(), err
		}
		return input.WithOutputRowCount(0), nil
	}
	if IsTrue(filter.Predicate) {
		return statsOf(filter.Source)
	}

	if semiJoin, ok := lookup.Resolve(filter.Source).(*SemiJoinNode); ok {
		if estimate, handled, err := c.semiJoinFilterStats(filter.Predicate, semiJoin, statsOf); handled || err != nil {
			return estimate, err
		}
	}

	input, err := statsOf(filter.Source)
	if err != nil {
		return UnknownPlanStats(), err
	}
	selectivity := 1.0
	for range ExtractConjuncts(filter.Predicate) {
		selectivity *= c.cfg.UnknownFilterSelectivity
	}
	return input.MapOutputRowCount(func(rows float64) float64 {
		return rows * selectivity
	}), nil
}

// semiJoinFilterStats recognizes a filter that checks the semi-join's
// membership marker and estimates it with the dedicated semi-join or
// anti-join cardinality math instead of a generic selectivity guess.
func (c *StatsCalculator) semiJoinFilterStats(predicate Expression, semiJoin *SemiJoinNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, bool, error) {
	marker := semiJoin.SemiJoinOutput

	negated := false
	checked := predicate
	if form, ok := predicate.(*SpecialForm); ok && form.Form == FormNot && len(form.Args) == 1 {
		negated = true
		checked = form.Args[0]
	}
	ref, ok := checked.(*VariableReference)
	if !ok || ref.Symbol != marker {
		return PlanNodeStatsEstimate{}, false, nil
	}

	sourceStats, err := statsOf(semiJoin.Source)
	if err != nil {
		return UnknownPlanStats(), true, err
	}
	filteringStats, err := statsOf(semiJoin.FilteringSource)
	if err != nil {
		return UnknownPlanStats(), true, err
	}

	var estimate PlanNodeStatsEstimate
	if negated {
		estimate = ComputeAntiJoinStats(sourceStats, filteringStats, semiJoin.SourceJoinSymbol, semiJoin.FilteringSourceJoinSymbol)
	} else {
		estimate = ComputeSemiJoinStats(sourceStats, filteringStats, semiJoin.SourceJoinSymbol, semiJoin.FilteringSourceJoinSymbol)
	}
	return estimate, true, nil
}

func (c *StatsCalculator) projectStats(project *ProjectNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, error) {
	input, err := statsOf(project.Source)
	if err != nil {
		return UnknownPlanStats(), err
	}
	result := NewPlanNodeStats(input.OutputRowCount)
	for _, assignment := range project.Assignments {
		if ref, ok := assignment.Expression.(*VariableReference); ok {
			result = result.WithSymbolStats(assignment.Symbol, input.SymbolStats(ref.Symbol))
			continue
		}
		result = result.WithSymbolStats(assignment.Symbol, UnknownSymbolStats())
	}
	return result, nil
}

func (c *StatsCalculator) joinStats(join *JoinNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, error) {
	left, err := statsOf(join.Left)
	if err != nil {
		return UnknownPlanStats(), err
	}
	right, err := statsOf(join.Right)
	if err != nil {
		return UnknownPlanStats(), err
	}

	crossRows := left.OutputRowCount * right.OutputRowCount
	rows := crossRows
	for _, clause := range join.Criteria {
		leftNDV := left.SymbolStats(clause.Left).DistinctValuesCount
		rightNDV := right.SymbolStats(clause.Right).DistinctValuesCount
		maxNDV := math.Max(leftNDV, rightNDV)
		if math.IsNaN(maxNDV) || maxNDV == 0 {
			rows = math.NaN()
			break
		}
		rows /= maxNDV
	}

	switch join.JoinType {
	case LeftJoin:
		rows = math.Max(rows, left.OutputRowCount)
	case RightJoin:
		rows = math.Max(rows, right.OutputRowCount)
	case FullJoin:
		rows = math.Max(rows, math.Max(left.OutputRowCount, right.OutputRowCount))
	}

	result := NewPlanNodeStats(rows)
	for _, symbol := range join.Outputs {
		stats := left.SymbolStats(symbol)
		if stats.IsUnknown() {
			stats = right.SymbolStats(symbol)
		}
		result = result.WithSymbolStats(symbol, stats)
	}
	return result, nil
}

// semiJoinStats estimates the bare semi-join node, which emits every source
// row extended with the membership marker. The actual filtering happens in
// the parent filter and is estimated there.
func (c *StatsCalculator) semiJoinStats(semiJoin *SemiJoinNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, error) {
	input, err := statsOf(semiJoin.Source)
	if err != nil {
		return UnknownPlanStats(), err
	}
	marker := SymbolStatsEstimate{
		LowValue:            math.Inf(-1),
		HighValue:           math.Inf(1),
		NullsFraction:       0,
		AverageRowSize:      1,
		DistinctValuesCount: 2,
	}
	return input.WithSymbolStats(semiJoin.SemiJoinOutput, marker), nil
}

func (c *StatsCalculator) aggregateStats(aggregate *AggregateNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, error) {
	input, err := statsOf(aggregate.Source)
	if err != nil {
		return UnknownPlanStats(), err
	}
	var rows float64
	if len(aggregate.GroupingKeys) == 0 {
		rows = 1
	} else {
		rows = 1
		for _, key := range aggregate.GroupingKeys {
			rows *= input.SymbolStats(key).DistinctValuesCount
		}
		rows = math.Min(rows, input.OutputRowCount)
	}

	result := NewPlanNodeStats(rows)
	for _, key := range aggregate.GroupingKeys {
		result = result.WithSymbolStats(key, input.SymbolStats(key))
	}
	for _, agg := range aggregate.Aggregations {
		result = result.WithSymbolStats(agg.Output, UnknownSymbolStats())
	}
	return result, nil
}

func (c *StatsCalculator) limitStats(limit *LimitNode, statsOf func(PlanNode) (PlanNodeStatsEstimate, error)) (PlanNodeStatsEstimate, error) {
	input, err := statsOf(limit.Source)
	if err != nil {
		return UnknownPlanStats(), err
	}
	count := float64(limit.Count)
	return input.MapOutputRowCount(func(rows float64) float64 {
		if math.IsNaN(rows) {
			return count
		}
		return math.Min(rows, count)
	}), nil
}

// valuesStats derives exact statistics from an inline table whose cells
// are all constants; columns with computed cells fall back to unknown.
func (c *StatsCalculator) valuesStats(values *ValuesNode) PlanNodeStatsEstimate {
	result := NewPlanNodeStats(float64(len(values.Rows)))
	for col, symbol := range values.Outputs {
		stats, ok := constantColumnStats(values, col)
		if !ok {
			result = result.WithSymbolStats(symbol, UnknownSymbolStats())
			continue
		}
		result = result.WithSymbolStats(symbol, stats)
	}
	return result
}

func constantColumnStats(values *ValuesNode, col int) (SymbolStatsEstimate, bool) {
	if len(values.Rows) == 0 {
		return ZeroSymbolStats(), true
	}
	nulls := 0
	distinct := make(map[uint64]struct{})
	low := math.Inf(1)
	high := math.Inf(-1)
	numeric := true
	for _, row := range values.Rows {
		constant, ok := row[col].(*Constant)
		if !ok {
			return SymbolStatsEstimate{}, false
		}
		if constant.Value.IsNull() {
			nulls++
			continue
		}
		hasher := types.HasherFor(constant.Type)
		distinct[hasher(constant.Value)] = struct{}{}
		if f, err := constant.Value.AsFloat(); err == nil {
			low = math.Min(low, f)
			high = math.Max(high, f)
		} else {
			numeric = false
		}
	}
	if !numeric || len(distinct) == 0 {
		low = math.NaN()
		high = math.NaN()
	}
	total := float64(len(values.Rows))
	return SymbolStatsEstimate{
		LowValue:            low,
		HighValue:           high,
		NullsFraction:       float64(nulls) / total,
		AverageRowSize:      math.NaN(),
		DistinctValuesCount: float64(len(distinct)),
	}, true
}
