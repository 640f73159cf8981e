package planner

import (
	"fmt"
	"math"

	"github.com/cascadedb/cascade/internal/errors"
)

// CostEstimate is the estimated resource usage of executing a plan
// subtree: CPU work, peak memory, and data moved between nodes. NaN
// components mean unknown, which propagates through arithmetic.
type CostEstimate struct {
	CPUCost     float64
	MemoryCost  float64
	NetworkCost float64
}

// UnknownCost returns the all-unknown estimate.
func UnknownCost() CostEstimate {
	return CostEstimate{
		CPUCost:     math.NaN(),
		MemoryCost:  math.NaN(),
		NetworkCost: math.NaN(),
	}
}

// ZeroCost returns the zero estimate.
func ZeroCost() CostEstimate {
	return CostEstimate{}
}

// Add returns the component-wise sum.
func (c CostEstimate) Add(other CostEstimate) CostEstimate {
	return CostEstimate{
		CPUCost:     c.CPUCost + other.CPUCost,
		MemoryCost:  c.MemoryCost + other.MemoryCost,
		NetworkCost: c.NetworkCost + other.NetworkCost,
	}
}

// IsUnknown reports whether any component is NaN.
func (c CostEstimate) IsUnknown() bool {
	return math.IsNaN(c.CPUCost) || math.IsNaN(c.MemoryCost) || math.IsNaN(c.NetworkCost)
}

// Total collapses the components into one comparable number.
func (c CostEstimate) Total() float64 {
	return c.CPUCost + c.MemoryCost + c.NetworkCost
}

func (c CostEstimate) String() string {
	return fmt.Sprintf("{cpu=%v, memory=%v, network=%v}", c.CPUCost, c.MemoryCost, c.NetworkCost)
}

// CostParams holds the unit weights of the cost model.
type CostParams struct {
	CPUPerRow      float64
	MemoryPerRow   float64
	NetworkPerRow  float64
	HashBuildBoost float64
}

// DefaultCostParams returns the default cost model weights.
func DefaultCostParams() CostParams {
	return CostParams{
		CPUPerRow:      1.0,
		MemoryPerRow:   1.0,
		NetworkPerRow:  2.0,
		HashBuildBoost: 2.0,
	}
}

// CostCalculator derives the local cost of executing one plan node from
// its own and its children's output estimates. Costs of subtrees are
// accumulated by the cost provider.
type CostCalculator struct {
	params CostParams
}

// NewCostCalculator creates a calculator with the given weights.
func NewCostCalculator(params CostParams) *CostCalculator {
	return &CostCalculator{params: params}
}

// LocalCost computes the node's own contribution, excluding its children.
// nodeStats is the node's output estimate; childStats holds one estimate
// per child in order.
func (c *CostCalculator) LocalCost(node PlanNode, nodeStats PlanNodeStatsEstimate, childStats []PlanNodeStatsEstimate) (CostEstimate, error) {
	inputRows := 0.0
	for _, child := range childStats {
		inputRows += child.OutputRowCount
	}

	switch n := node.(type) {
	case *TableScanNode, *ValuesNode:
		return CostEstimate{CPUCost: nodeStats.OutputRowCount * c.params.CPUPerRow}, nil
	case *FilterNode, *ProjectNode, *LimitNode:
		return CostEstimate{CPUCost: inputRows * c.params.CPUPerRow}, nil
	case *JoinNode:
		if len(childStats) != 2 {
			return UnknownCost(), errors.Internalf("join with %d child estimates", len(childStats))
		}
		build := childStats[1].OutputRowCount
		return CostEstimate{
			CPUCost:     (inputRows + nodeStats.OutputRowCount + build*c.params.HashBuildBoost) * c.params.CPUPerRow,
			MemoryCost:  build * c.params.MemoryPerRow,
			NetworkCost: build * c.params.NetworkPerRow,
		}, nil
	case *SemiJoinNode:
		if len(childStats) != 2 {
			return UnknownCost(), errors.Internalf("semi join with %d child estimates", len(childStats))
		}
		build := childStats[1].OutputRowCount
		return CostEstimate{
			CPUCost:     (inputRows + build*c.params.HashBuildBoost) * c.params.CPUPerRow,
			MemoryCost:  build * c.params.MemoryPerRow,
			NetworkCost: build * c.params.NetworkPerRow,
		}, nil
	case *AggregateNode:
		return CostEstimate{
			CPUCost:    inputRows * c.params.CPUPerRow,
			MemoryCost: nodeStats.OutputRowCount * c.params.MemoryPerRow,
		}, nil
	case *GroupReference:
		return UnknownCost(), errors.Internalf("group reference %d has no local cost", int(n.Group))
	default:
		return UnknownCost(), errors.Internalf("no cost calculator for node kind %s", node.Kind())
	}
}
