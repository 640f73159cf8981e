package planner

import (
	"github.com/cascadedb/cascade/internal/errors"
)

// CostProvider returns cumulative cost estimates for memo groups.
type CostProvider interface {
	// GetCost returns the cost of the group's representative subtree.
	GetCost(gid GroupID) (CostEstimate, error)
}

// CachingCostProvider memoizes one cumulative cost per group: the
// representative's local cost plus the costs of its child groups.
type CachingCostProvider struct {
	memo       *Memo
	stats      *CachingStatsProvider
	calculator *CostCalculator
	cache      map[GroupID]CostEstimate
	inProgress map[GroupID]bool
}

// NewCachingCostProvider creates a provider over the memo, reading output
// estimates from the stats provider.
func NewCachingCostProvider(memo *Memo, stats *CachingStatsProvider, calculator *CostCalculator) *CachingCostProvider {
	return &CachingCostProvider{
		memo:       memo,
		stats:      stats,
		calculator: calculator,
		cache:      make(map[GroupID]CostEstimate),
		inProgress: make(map[GroupID]bool),
	}
}

// GetCost returns the cached cumulative cost of the group, computing it on
// demand. Re-entry signals a memo cycle and aborts.
func (p *CachingCostProvider) GetCost(gid GroupID) (CostEstimate, error) {
	if cost, ok := p.cache[gid]; ok {
		return cost, nil
	}
	if p.inProgress[gid] {
		return UnknownCost(), errors.Internalf("cycle detected while computing cost for group %d", int(gid))
	}
	p.inProgress[gid] = true
	defer delete(p.inProgress, gid)

	cost, err := p.NodeCost(p.memo.Node(gid))
	if err != nil {
		return UnknownCost(), err
	}
	p.cache[gid] = cost
	return cost, nil
}

// NodeCost computes the cumulative cost of an arbitrary node: group
// references go through the per-group cache, concrete nodes are computed
// directly.
func (p *CachingCostProvider) NodeCost(node PlanNode) (CostEstimate, error) {
	if ref, ok := node.(*GroupReference); ok {
		return p.GetCost(ref.Group)
	}

	nodeStats, err := p.stats.NodeStats(node)
	if err != nil {
		return UnknownCost(), err
	}
	children := node.Children()
	childStats := make([]PlanNodeStatsEstimate, len(children))
	total := ZeroCost()
	for i, child := range children {
		childStats[i], err = p.stats.NodeStats(child)
		if err != nil {
			return UnknownCost(), err
		}
		childCost, err := p.NodeCost(child)
		if err != nil {
			return UnknownCost(), err
		}
		total = total.Add(childCost)
	}

	local, err := p.calculator.LocalCost(node, nodeStats, childStats)
	if err != nil {
		return UnknownCost(), err
	}
	return total.Add(local), nil
}

// InvalidateGroup drops the cached cost of the group and of every group
// whose representative transitively references it.
func (p *CachingCostProvider) InvalidateGroup(gid GroupID) {
	seen := make(map[GroupID]bool)
	var drop func(gid GroupID)
	drop = func(gid GroupID) {
		if seen[gid] {
			return
		}
		seen[gid] = true
		delete(p.cache, gid)
		for _, parent := range p.memo.IncomingReferences(gid) {
			drop(parent)
		}
	}
	drop(gid)
}

// CachedGroups returns the number of groups with a cached cost.
func (p *CachingCostProvider) CachedGroups() int {
	return len(p.cache)
}
