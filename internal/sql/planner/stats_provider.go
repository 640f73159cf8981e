package planner

import (
	"github.com/cascadedb/cascade/internal/errors"
)

// StatsProvider returns output estimates for memo groups.
type StatsProvider interface {
	// GetStats returns the estimate for the group's representative.
	GetStats(gid GroupID) (PlanNodeStatsEstimate, error)
}

// CachingStatsProvider memoizes one estimate per group. Child estimates are
// requested through the provider itself, so caching composes across the
// plan DAG: shared subplans are estimated once.
type CachingStatsProvider struct {
	memo       *Memo
	lookup     Lookup
	calculator *StatsCalculator
	session    *Session
	cache      map[GroupID]PlanNodeStatsEstimate
	inProgress map[GroupID]bool
}

// NewCachingStatsProvider creates a provider over the memo.
func NewCachingStatsProvider(memo *Memo, calculator *StatsCalculator, session *Session) *CachingStatsProvider {
	return &CachingStatsProvider{
		memo:       memo,
		lookup:     NewMemoLookup(memo),
		calculator: calculator,
		session:    session,
		cache:      make(map[GroupID]PlanNodeStatsEstimate),
		inProgress: make(map[GroupID]bool),
	}
}

// GetStats returns the cached estimate for the group, computing it on
// demand. Re-entering a group already being computed means the memo holds
// a cycle, which is a corruption bug, not a legitimate unknown.
func (p *CachingStatsProvider) GetStats(gid GroupID) (PlanNodeStatsEstimate, error) {
	if estimate, ok := p.cache[gid]; ok {
		return estimate, nil
	}
	if p.inProgress[gid] {
		return UnknownPlanStats(), errors.Internalf("cycle detected while computing statistics for group %d", int(gid))
	}
	p.inProgress[gid] = true
	defer delete(p.inProgress, gid)

	estimate, err := p.calculator.ComputeStats(p.memo.Node(gid), p.lookup, p.NodeStats, p.session)
	if err != nil {
		return UnknownPlanStats(), err
	}
	p.cache[gid] = estimate
	return estimate, nil
}

// NodeStats estimates an arbitrary node: group references go through the
// per-group cache, concrete nodes are computed directly.
func (p *CachingStatsProvider) NodeStats(node PlanNode) (PlanNodeStatsEstimate, error) {
	if ref, ok := node.(*GroupReference); ok {
		return p.GetStats(ref.Group)
	}
	return p.calculator.ComputeStats(node, p.lookup, p.NodeStats, p.session)
}

// InvalidateGroup drops the cached estimate of the group and of every
// group whose representative transitively references it. Called after a
// shape-changing replace.
func (p *CachingStatsProvider) InvalidateGroup(gid GroupID) {
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

// CachedGroups returns the number of groups with a cached estimate.
func (p *CachingStatsProvider) CachedGroups() int {
	return len(p.cache)
}
