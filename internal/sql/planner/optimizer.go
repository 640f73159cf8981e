package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cascadedb/cascade/internal/errors"
	"github.com/cascadedb/cascade/internal/feature"
	"github.com/cascadedb/cascade/internal/log"
)

// StatsAndCosts maps every node of a final plan to its estimates, for plan
// printing and execution scheduling.
type StatsAndCosts struct {
	Stats map[PlanNodeID]PlanNodeStatsEstimate
	Costs map[PlanNodeID]CostEstimate
}

// OptimizeResult is the outcome of one optimization run.
type OptimizeResult struct {
	Plan            PlanNode
	Estimates       StatsAndCosts
	RuleInvocations int
	RuleFirings     int
	GroupCount      int
}

// IterativeOptimizer drives rule-based plan exploration to a fixpoint. It
// holds no per-query state and can be shared across queries; each Optimize
// call builds a private memo and private estimate caches.
type IterativeOptimizer struct {
	rules     []Rule
	statsCalc *StatsCalculator
	costCalc  *CostCalculator
	logger    log.Logger
}

// NewIterativeOptimizer creates an optimizer with the given rule set.
func NewIterativeOptimizer(rules []Rule, statsCalc *StatsCalculator, costCalc *CostCalculator, logger log.Logger) *IterativeOptimizer {
	return &IterativeOptimizer{
		rules:     rules,
		statsCalc: statsCalc,
		costCalc:  costCalc,
		logger:    logger,
	}
}

// Optimize explores rewrites of the plan until no enabled rule fires, the
// configured timeout expires, or the rule-invocation budget runs out.
// Exhaustion is a soft condition: the best plan found so far is returned
// together with a warning on the session. Rule failures and schema
// violations abort the run; the memo cannot be trusted after either.
//
// The returned plan produces exactly the same output symbols as the input.
func (o *IterativeOptimizer) Optimize(ctx context.Context, session *Session, plan PlanNode, ids *PlanNodeIDAllocator, symbols *SymbolAllocator) (*OptimizeResult, error) {
	memo, err := NewMemo(ids, plan)
	if err != nil {
		return nil, err
	}
	lookup := NewMemoLookup(memo)
	statsProvider := NewCachingStatsProvider(memo, o.statsCalc, session)
	costProvider := NewCachingCostProvider(memo, statsProvider, o.costCalc)

	run := &optimizationRun{
		optimizer:     o,
		session:       session,
		memo:          memo,
		lookup:        lookup,
		statsProvider: statsProvider,
		costProvider:  costProvider,
		deadline:      time.Now().Add(session.Config.Timeout),
		budget:        session.Config.MaxRuleInvocations,
		dirty:         make(map[GroupID]bool),
	}
	run.ruleCtx = &RuleContext{
		Lookup:      lookup,
		IDAllocator: ids,
		Symbols:     symbols,
		Session:     session,
		StatsOf: func(node PlanNode) PlanNodeStatsEstimate {
			estimate, err := statsProvider.NodeStats(node)
			if err != nil {
				return UnknownPlanStats()
			}
			return estimate
		},
		CheckTimeout: func() { run.checkExhaustion(ctx) },
	}

	if session.Features.IsEnabled(feature.IterativeOptimization) {
		if err := run.exploreToFixpoint(ctx); err != nil {
			return nil, err
		}
	}

	optimized := memo.ExtractGroup(memo.RootGroup())
	estimates, err := run.collectEstimates(optimized)
	if err != nil {
		return nil, err
	}
	return &OptimizeResult{
		Plan:            optimized,
		Estimates:       estimates,
		RuleInvocations: run.invocations,
		RuleFirings:     run.firings,
		GroupCount:      memo.GroupCount(),
	}, nil
}

// optimizationRun holds the mutable state of one Optimize call.
type optimizationRun struct {
	optimizer     *IterativeOptimizer
	session       *Session
	memo          *Memo
	lookup        *MemoLookup
	statsProvider *CachingStatsProvider
	costProvider  *CachingCostProvider
	ruleCtx       *RuleContext

	deadline    time.Time
	budget      int
	invocations int
	firings     int
	exhausted   bool
	dirty       map[GroupID]bool
}

// exploreToFixpoint repeatedly explores dirty groups, in ascending group
// id order, until none remain or the run is exhausted.
func (r *optimizationRun) exploreToFixpoint(ctx context.Context) error {
	for _, gid := range r.memo.Groups() {
		r.dirty[gid] = true
	}

	for len(r.dirty) > 0 && !r.exhausted {
		gid := r.popDirty()
		if err := r.exploreGroup(ctx, gid); err != nil {
			return err
		}
	}
	return nil
}

// exploreGroup runs every enabled rule against the group's representative.
// A firing that changes the group's shape invalidates the estimate caches
// of the group and of everything above it, re-dirties the affected groups,
// and restarts the rule list on the new representative.
func (r *optimizationRun) exploreGroup(ctx context.Context, gid GroupID) error {
restart:
	for _, rule := range r.optimizer.rules {
		if !rule.IsEnabled(r.session) {
			continue
		}
		node := r.memo.Node(gid)
		if _, ok := node.(*GroupReference); ok {
			// The group defers entirely to another one; nothing to match.
			return nil
		}
		for match := range rule.Pattern().Match(node, r.lookup) {
			if r.checkExhaustion(ctx); r.exhausted {
				return nil
			}
			r.invocations++

			result, err := rule.Apply(match.Value.(PlanNode), match.Captures, r.ruleCtx)
			if err != nil {
				return errors.Internalf("rule %s failed on group %d: %v", rule.Name(), int(gid), err)
			}
			if result.IsEmpty() {
				continue
			}

			before := r.memo.GroupCount()
			changed, err := r.memo.Replace(gid, result.Plan(), rule.Name())
			if err != nil {
				return err
			}
			r.firings++
			if r.session.Features.IsEnabled(feature.DebugLogging) {
				r.optimizer.logger.Debug("optimizer rule fired",
					"query_id", r.session.QueryID,
					"rule", rule.Name(),
					"group", int(gid),
					"shape_changed", changed)
			}
			if changed {
				r.statsProvider.InvalidateGroup(gid)
				r.costProvider.InvalidateGroup(gid)
				for _, parent := range r.memo.IncomingReferences(gid) {
					r.dirty[parent] = true
				}
				for _, other := range r.memo.Groups() {
					if int(other) >= before {
						r.dirty[other] = true
					}
				}
				goto restart
			}
		}
	}
	return nil
}

// checkExhaustion polls the cooperative stop conditions: context
// cancellation, wall-clock deadline, and the rule-invocation budget. The
// first hit records a warning; the run then winds down and returns the
// best plan found so far.
func (r *optimizationRun) checkExhaustion(ctx context.Context) {
	if r.exhausted {
		return
	}
	var cause string
	switch {
	case ctx.Err() != nil:
		cause = "canceled"
	case time.Now().After(r.deadline):
		cause = fmt.Sprintf("timeout of %s exceeded", r.session.Config.Timeout)
	case r.invocations >= r.budget:
		cause = fmt.Sprintf("rule invocation budget of %d exhausted", r.budget)
	default:
		return
	}
	r.exhausted = true
	r.session.Warn(errors.OptimizerGaveUp,
		fmt.Sprintf("plan optimization stopped early (%s) after %d rule invocations; returning best plan found", cause, r.invocations))
	r.optimizer.logger.Warn("plan optimization stopped early",
		"query_id", r.session.QueryID,
		"cause", cause,
		"rule_invocations", r.invocations)
}

// popDirty removes and returns the lowest dirty group id.
func (r *optimizationRun) popDirty() GroupID {
	ids := make([]GroupID, 0, len(r.dirty))
	for gid := range r.dirty {
		ids = append(ids, gid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	gid := ids[0]
	delete(r.dirty, gid)
	return gid
}

// collectEstimates computes stats and cost for every node of the final
// extracted plan.
func (r *optimizationRun) collectEstimates(plan PlanNode) (StatsAndCosts, error) {
	out := StatsAndCosts{
		Stats: make(map[PlanNodeID]PlanNodeStatsEstimate),
		Costs: make(map[PlanNodeID]CostEstimate),
	}
	var walk func(node PlanNode) error
	walk = func(node PlanNode) error {
		stats, err := r.statsProvider.NodeStats(node)
		if err != nil {
			return err
		}
		cost, err := r.costProvider.NodeCost(node)
		if err != nil {
			return err
		}
		out.Stats[node.ID()] = stats
		out.Costs[node.ID()] = cost
		for _, child := range node.Children() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(plan); err != nil {
		return StatsAndCosts{}, err
	}
	return out, nil
}
