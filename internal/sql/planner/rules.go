package planner

import (
	"math"

	"github.com/cascadedb/cascade/internal/feature"
)

// DefaultRules returns the standard rule set in application order.
func DefaultRules() []Rule {
	return []Rule{
		NewRemoveTrivialFilter(),
		NewMergeFilters(),
		NewRemoveIdentityProject(),
		NewMergeLimits(),
		NewPushLimitThroughProject(),
		NewSwapJoinInputs(),
	}
}

// RemoveTrivialFilter eliminates filters whose predicate is the constant
// TRUE (keep everything) or FALSE (keep nothing).
type RemoveTrivialFilter struct {
	pattern *Pattern
}

func NewRemoveTrivialFilter() *RemoveTrivialFilter {
	return &RemoveTrivialFilter{pattern: MatchKind(KindFilter)}
}

func (r *RemoveTrivialFilter) Name() string { return "RemoveTrivialFilter" }

func (r *RemoveTrivialFilter) IsEnabled(session *Session) bool {
	return session.IsFeatureEnabled(feature.FilterSimplification)
}

func (r *RemoveTrivialFilter) Pattern() *Pattern { return r.pattern }

func (r *RemoveTrivialFilter) Apply(node PlanNode, _ *Captures, ctx *RuleContext) (Result, error) {
	filter := node.(*FilterNode)
	if IsTrue(filter.Predicate) {
		return ResultOf(filter.Source), nil
	}
	if IsFalse(filter.Predicate) {
		return ResultOf(NewValuesNode(ctx.IDAllocator.Next(), filter.OutputSymbols(), nil)), nil
	}
	return EmptyResult(), nil
}

// MergeFilters collapses a filter directly over another filter into a
// single conjunction, with the inner predicate evaluated first.
type MergeFilters struct {
	pattern *Pattern
	child   *Capture
}

func NewMergeFilters() *MergeFilters {
	child := NewCapture("child")
	return &MergeFilters{
		pattern: MatchKind(KindFilter).
			With(Source().Matching(MatchKind(KindFilter).CapturedAs(child))),
		child: child,
	}
}

func (r *MergeFilters) Name() string { return "MergeFilters" }

func (r *MergeFilters) IsEnabled(session *Session) bool {
	return session.IsFeatureEnabled(feature.FilterSimplification)
}

func (r *MergeFilters) Pattern() *Pattern { return r.pattern }

func (r *MergeFilters) Apply(node PlanNode, captures *Captures, ctx *RuleContext) (Result, error) {
	parent := node.(*FilterNode)
	child := Captured[*FilterNode](captures, r.child)

	terms := append(ExtractConjuncts(child.Predicate), ExtractConjuncts(parent.Predicate)...)
	merged := NewFilterNode(ctx.IDAllocator.Next(), child.Source, Conjunction(terms...))
	return ResultOf(merged), nil
}

// RemoveIdentityProject eliminates projections that forward every source
// symbol unchanged.
type RemoveIdentityProject struct {
	pattern *Pattern
}

func NewRemoveIdentityProject() *RemoveIdentityProject {
	return &RemoveIdentityProject{pattern: MatchKind(KindProject)}
}

func (r *RemoveIdentityProject) Name() string { return "RemoveIdentityProject" }

func (r *RemoveIdentityProject) IsEnabled(session *Session) bool {
	return session.IsFeatureEnabled(feature.ProjectionPruning)
}

func (r *RemoveIdentityProject) Pattern() *Pattern { return r.pattern }

func (r *RemoveIdentityProject) Apply(node PlanNode, _ *Captures, _ *RuleContext) (Result, error) {
	project := node.(*ProjectNode)
	if !project.IsIdentity() {
		return EmptyResult(), nil
	}
	return ResultOf(project.Source), nil
}

// MergeLimits collapses a limit directly over another limit into one with
// the smaller count.
type MergeLimits struct {
	pattern *Pattern
	child   *Capture
}

func NewMergeLimits() *MergeLimits {
	child := NewCapture("child")
	return &MergeLimits{
		pattern: MatchKind(KindLimit).
			With(Source().Matching(MatchKind(KindLimit).CapturedAs(child))),
		child: child,
	}
}

func (r *MergeLimits) Name() string { return "MergeLimits" }

func (r *MergeLimits) IsEnabled(session *Session) bool {
	return session.IsFeatureEnabled(feature.LimitPushdown)
}

func (r *MergeLimits) Pattern() *Pattern { return r.pattern }

func (r *MergeLimits) Apply(node PlanNode, captures *Captures, ctx *RuleContext) (Result, error) {
	parent := node.(*LimitNode)
	child := Captured[*LimitNode](captures, r.child)

	count := min(parent.Count, child.Count)
	return ResultOf(NewLimitNode(ctx.IDAllocator.Next(), child.Source, count)), nil
}

// PushLimitThroughProject moves a limit below a projection, shrinking the
// projection's input.
type PushLimitThroughProject struct {
	pattern *Pattern
	project *Capture
}

func NewPushLimitThroughProject() *PushLimitThroughProject {
	project := NewCapture("project")
	return &PushLimitThroughProject{
		pattern: MatchKind(KindLimit).
			With(Source().Matching(MatchKind(KindProject).CapturedAs(project))),
		project: project,
	}
}

func (r *PushLimitThroughProject) Name() string { return "PushLimitThroughProject" }

func (r *PushLimitThroughProject) IsEnabled(session *Session) bool {
	return session.IsFeatureEnabled(feature.LimitPushdown)
}

func (r *PushLimitThroughProject) Pattern() *Pattern { return r.pattern }

func (r *PushLimitThroughProject) Apply(node PlanNode, captures *Captures, ctx *RuleContext) (Result, error) {
	limit := node.(*LimitNode)
	project := Captured[*ProjectNode](captures, r.project)

	pushed := NewLimitNode(ctx.IDAllocator.Next(), project.Source, limit.Count)
	return ResultOf(NewProjectNode(ctx.IDAllocator.Next(), pushed, project.Assignments)), nil
}

// SwapJoinInputs puts the smaller estimated input of an inner join on the
// build side. It fires only when the swap strictly shrinks the build side,
// so a swapped join never matches again.
type SwapJoinInputs struct {
	pattern *Pattern
}

func NewSwapJoinInputs() *SwapJoinInputs {
	return &SwapJoinInputs{pattern: MatchKind(KindJoin)}
}

func (r *SwapJoinInputs) Name() string { return "SwapJoinInputs" }

func (r *SwapJoinInputs) IsEnabled(session *Session) bool {
	return session.Config.EnableCostBasedOptimization &&
		session.IsFeatureEnabled(feature.CostBasedOptimization) &&
		session.IsFeatureEnabled(feature.ExperimentalJoinSwap)
}

func (r *SwapJoinInputs) Pattern() *Pattern { return r.pattern }

func (r *SwapJoinInputs) Apply(node PlanNode, _ *Captures, ctx *RuleContext) (Result, error) {
	join := node.(*JoinNode)
	if join.JoinType != InnerJoin || ctx.StatsOf == nil {
		return EmptyResult(), nil
	}

	leftRows := ctx.StatsOf(join.Left).OutputRowCount
	rightRows := ctx.StatsOf(join.Right).OutputRowCount
	if math.IsNaN(leftRows) || math.IsNaN(rightRows) || rightRows <= leftRows {
		return EmptyResult(), nil
	}

	swapped := make([]EquiJoinClause, len(join.Criteria))
	for i, clause := range join.Criteria {
		swapped[i] = EquiJoinClause{Left: clause.Right, Right: clause.Left}
	}
	return ResultOf(NewJoinNode(ctx.IDAllocator.Next(), InnerJoin, join.Right, join.Left, swapped, join.Outputs)), nil
}
