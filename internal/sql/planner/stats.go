package planner

import (
	"fmt"
	"math"
	"strings"
)

// SymbolStatsEstimate describes the distribution of one output symbol.
// NaN in any field means the value is unknown; an infinite LowValue or
// HighValue means the range is open on that side. DistinctValuesCount is
// fractional: a scan estimated to produce a tenth of a row has a tenth of
// a distinct value.
type SymbolStatsEstimate struct {
	LowValue            float64
	HighValue           float64
	NullsFraction       float64
	AverageRowSize      float64
	DistinctValuesCount float64
}

// UnknownSymbolStats returns the all-unknown estimate with an open range.
func UnknownSymbolStats() SymbolStatsEstimate {
	return SymbolStatsEstimate{
		LowValue:            math.Inf(-1),
		HighValue:           math.Inf(1),
		NullsFraction:       math.NaN(),
		AverageRowSize:      math.NaN(),
		DistinctValuesCount: math.NaN(),
	}
}

// ZeroSymbolStats returns the estimate for a symbol with no values at all.
func ZeroSymbolStats() SymbolStatsEstimate {
	return SymbolStatsEstimate{
		LowValue:            math.NaN(),
		HighValue:           math.NaN(),
		NullsFraction:       1,
		AverageRowSize:      math.NaN(),
		DistinctValuesCount: 0,
	}
}

// IsUnknown reports whether nothing at all is known about the symbol.
func (s SymbolStatsEstimate) IsUnknown() bool {
	return math.IsNaN(s.NullsFraction) &&
		math.IsNaN(s.AverageRowSize) &&
		math.IsNaN(s.DistinctValuesCount) &&
		math.IsInf(s.LowValue, -1) &&
		math.IsInf(s.HighValue, 1)
}

// ValuesFraction is the fraction of rows with a non-null value. NaN
// propagates from an unknown NullsFraction.
func (s SymbolStatsEstimate) ValuesFraction() float64 {
	return 1.0 - s.NullsFraction
}

func (s SymbolStatsEstimate) String() string {
	return fmt.Sprintf("{range=[%v, %v], ndv=%v, nulls=%v, size=%v}",
		s.LowValue, s.HighValue, s.DistinctValuesCount, s.NullsFraction, s.AverageRowSize)
}

// PlanNodeStatsEstimate describes the estimated output of a plan node: a
// row count plus per-symbol distributions. NaN row count means unknown.
type PlanNodeStatsEstimate struct {
	OutputRowCount float64
	symbolStats    map[Symbol]SymbolStatsEstimate
}

// UnknownPlanStats returns the all-unknown node estimate.
func UnknownPlanStats() PlanNodeStatsEstimate {
	return PlanNodeStatsEstimate{OutputRowCount: math.NaN()}
}

// NewPlanNodeStats creates an estimate with the given row count.
func NewPlanNodeStats(outputRowCount float64) PlanNodeStatsEstimate {
	return PlanNodeStatsEstimate{OutputRowCount: outputRowCount}
}

// IsOutputRowCountUnknown reports whether the row count is NaN.
func (p PlanNodeStatsEstimate) IsOutputRowCountUnknown() bool {
	return math.IsNaN(p.OutputRowCount)
}

// SymbolStats returns the estimate for a symbol, unknown if absent.
func (p PlanNodeStatsEstimate) SymbolStats(symbol Symbol) SymbolStatsEstimate {
	if stats, ok := p.symbolStats[symbol]; ok {
		return stats
	}
	return UnknownSymbolStats()
}

// Symbols returns the symbols with recorded estimates, sorted by name.
func (p PlanNodeStatsEstimate) Symbols() []Symbol {
	out := make([]Symbol, 0, len(p.symbolStats))
	for s := range p.symbolStats {
		out = append(out, s)
	}
	sortSymbols(out)
	return out
}

// WithSymbolStats returns a copy with the symbol's estimate set.
func (p PlanNodeStatsEstimate) WithSymbolStats(symbol Symbol, stats SymbolStatsEstimate) PlanNodeStatsEstimate {
	out := p.cloneSymbolStats(1)
	out.symbolStats[symbol] = stats
	return out
}

// WithoutSymbolStats returns a copy with the symbol's estimate removed.
func (p PlanNodeStatsEstimate) WithoutSymbolStats(symbol Symbol) PlanNodeStatsEstimate {
	out := p.cloneSymbolStats(0)
	delete(out.symbolStats, symbol)
	return out
}

// WithOutputRowCount returns a copy with the row count replaced.
func (p PlanNodeStatsEstimate) WithOutputRowCount(rowCount float64) PlanNodeStatsEstimate {
	out := p
	out.OutputRowCount = rowCount
	return out
}

// MapOutputRowCount returns a copy with the row count transformed.
func (p PlanNodeStatsEstimate) MapOutputRowCount(f func(float64) float64) PlanNodeStatsEstimate {
	return p.WithOutputRowCount(f(p.OutputRowCount))
}

// MapSymbolStats returns a copy with one symbol's estimate transformed.
func (p PlanNodeStatsEstimate) MapSymbolStats(symbol Symbol, f func(SymbolStatsEstimate) SymbolStatsEstimate) PlanNodeStatsEstimate {
	return p.WithSymbolStats(symbol, f(p.SymbolStats(symbol)))
}

// OutputSizeInBytes estimates the total data size of the listed symbols
// over the node's output rows. Unknown symbol sizes contribute NaN.
func (p PlanNodeStatsEstimate) OutputSizeInBytes(symbols []Symbol) float64 {
	size := 0.0
	for _, s := range symbols {
		size += p.SymbolStats(s).AverageRowSize * p.OutputRowCount
	}
	return size
}

func (p PlanNodeStatsEstimate) cloneSymbolStats(extra int) PlanNodeStatsEstimate {
	out := PlanNodeStatsEstimate{
		OutputRowCount: p.OutputRowCount,
		symbolStats:    make(map[Symbol]SymbolStatsEstimate, len(p.symbolStats)+extra),
	}
	for s, st := range p.symbolStats {
		out.symbolStats[s] = st
	}
	return out
}

func (p PlanNodeStatsEstimate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{rows=%v", p.OutputRowCount)
	for _, s := range p.Symbols() {
		fmt.Fprintf(&b, ", %s=%s", s.Name(), p.symbolStats[s])
	}
	b.WriteString("}")
	return b.String()
}
