package planner

import "math"

// antiJoinDampingCoefficient keeps over-filtering anti-join estimates away
// from a hard zero. A literal-zero estimate cascades into degenerate plan
// choices downstream, so when the statistics claim everything is filtered
// out we keep half instead. The constant is policy, not analysis.
const antiJoinDampingCoefficient = 0.5

// ComputeSemiJoinStats estimates the output of filtering source rows to
// those whose join key appears in the filtering source.
//
// With both key distributions known, the surviving distinct values are
// min(sourceNDV, filterNDV), null keys are excluded by equality semantics,
// and the row count scales by filterNDV/sourceNDV when the filtering side
// has fewer distinct values. A zero distinct count on either side means an
// empty result. Unknown stats on either key degrade the key's distinct
// count to unknown with nullsFraction forced to 0 and an unknown row
// count; the source key's range is retained.
func ComputeSemiJoinStats(sourceStats, filteringStats PlanNodeStatsEstimate, sourceJoinSymbol, filteringSourceJoinSymbol Symbol) PlanNodeStatsEstimate {
	sourceKey := sourceStats.SymbolStats(sourceJoinSymbol)
	filteringKey := filteringStats.SymbolStats(filteringSourceJoinSymbol)

	if math.IsNaN(sourceKey.DistinctValuesCount) || math.IsNaN(filteringKey.DistinctValuesCount) {
		return unknownKeyFilterStats(sourceStats, sourceJoinSymbol)
	}

	sourceNDV := sourceKey.DistinctValuesCount
	filterNDV := filteringKey.DistinctValuesCount

	retainedNDV := math.Min(sourceNDV, filterNDV)
	overlapFactor := 1.0
	if filterNDV < sourceNDV {
		overlapFactor = filterNDV / sourceNDV
	}
	rowCount := sourceStats.OutputRowCount * sourceKey.ValuesFraction() * overlapFactor
	if sourceNDV == 0 || filterNDV == 0 {
		rowCount = 0
	}

	return sourceStats.
		WithOutputRowCount(rowCount).
		WithSymbolStats(sourceJoinSymbol, SymbolStatsEstimate{
			LowValue:            sourceKey.LowValue,
			HighValue:           sourceKey.HighValue,
			NullsFraction:       0,
			AverageRowSize:      sourceKey.AverageRowSize,
			DistinctValuesCount: retainedNDV,
		})
}

// ComputeAntiJoinStats estimates the output of filtering source rows to
// those whose join key does NOT appear in the filtering source.
//
// The surviving distinct values are sourceNDV - filterNDV and the row
// count scales by the complementary fraction. When the filtering side's
// distinct count meets or exceeds the source's, the estimate claims
// everything is filtered out; both the distinct count and the row count
// are damped to half of the source's instead, unless the source itself
// has zero distinct values, in which case the true zero is kept.
func ComputeAntiJoinStats(sourceStats, filteringStats PlanNodeStatsEstimate, sourceJoinSymbol, filteringSourceJoinSymbol Symbol) PlanNodeStatsEstimate {
	sourceKey := sourceStats.SymbolStats(sourceJoinSymbol)
	filteringKey := filteringStats.SymbolStats(filteringSourceJoinSymbol)

	if math.IsNaN(sourceKey.DistinctValuesCount) || math.IsNaN(filteringKey.DistinctValuesCount) {
		return unknownKeyFilterStats(sourceStats, sourceJoinSymbol)
	}

	sourceNDV := sourceKey.DistinctValuesCount
	filterNDV := filteringKey.DistinctValuesCount

	var retainedNDV, rowCount float64
	switch {
	case sourceNDV == 0:
		retainedNDV = 0
		rowCount = 0
	case filterNDV < sourceNDV:
		retainedNDV = sourceNDV - filterNDV
		rowCount = sourceStats.OutputRowCount * sourceKey.ValuesFraction() * (1 - filterNDV/sourceNDV)
	default:
		retainedNDV = sourceNDV * antiJoinDampingCoefficient
		rowCount = sourceStats.OutputRowCount * sourceKey.ValuesFraction() * antiJoinDampingCoefficient
	}

	return sourceStats.
		WithOutputRowCount(rowCount).
		WithSymbolStats(sourceJoinSymbol, SymbolStatsEstimate{
			LowValue:            sourceKey.LowValue,
			HighValue:           sourceKey.HighValue,
			NullsFraction:       0,
			AverageRowSize:      sourceKey.AverageRowSize,
			DistinctValuesCount: retainedNDV,
		})
}

// unknownKeyFilterStats is the shared unknown-input result: the join key's
// distinct count becomes unknown with nulls excluded, the row count is
// unknown, and the source key's range and row size are kept. An unknown
// source key therefore still yields an unbounded range.
func unknownKeyFilterStats(sourceStats PlanNodeStatsEstimate, sourceJoinSymbol Symbol) PlanNodeStatsEstimate {
	sourceKey := sourceStats.SymbolStats(sourceJoinSymbol)
	return sourceStats.
		WithOutputRowCount(math.NaN()).
		WithSymbolStats(sourceJoinSymbol, SymbolStatsEstimate{
			LowValue:            sourceKey.LowValue,
			HighValue:           sourceKey.HighValue,
			NullsFraction:       0,
			AverageRowSize:      sourceKey.AverageRowSize,
			DistinctValuesCount: math.NaN(),
		})
}
