// Package ruletest provides a harness for exercising a single optimizer
// rule against a hand-built plan, asserting whether it fires and what it
// produces.
package ruletest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascade/internal/config"
	"github.com/cascadedb/cascade/internal/sql/planner"
)

// RuleAssert applies one rule to one plan inside a fresh memo.
type RuleAssert struct {
	t       *testing.T
	rule    planner.Rule
	session *planner.Session
	ids     *planner.PlanNodeIDAllocator
	symbols *planner.SymbolAllocator
	statsOf func(planner.PlanNode) planner.PlanNodeStatsEstimate
	plan    planner.PlanNode
}

// Assert starts an assertion for the rule.
func Assert(t *testing.T, rule planner.Rule) *RuleAssert {
	t.Helper()
	return &RuleAssert{
		t:       t,
		rule:    rule,
		session: planner.NewSession("ruletest"),
		ids:     planner.NewPlanNodeIDAllocator(),
		symbols: planner.NewSymbolAllocator(),
	}
}

// IDs returns the allocator used for replacement nodes; plans under test
// should be built with it so ids stay unique.
func (ra *RuleAssert) IDs() *planner.PlanNodeIDAllocator {
	return ra.ids
}

// WithSession replaces the default session.
func (ra *RuleAssert) WithSession(session *planner.Session) *RuleAssert {
	ra.session = session
	return ra
}

// WithConfig replaces the session's optimizer configuration.
func (ra *RuleAssert) WithConfig(cfg *config.OptimizerConfig) *RuleAssert {
	ra.session.Config = cfg
	return ra
}

// WithStats supplies the estimates cost-based rules read.
func (ra *RuleAssert) WithStats(statsOf func(planner.PlanNode) planner.PlanNodeStatsEstimate) *RuleAssert {
	ra.statsOf = statsOf
	return ra
}

// On sets the plan under test.
func (ra *RuleAssert) On(plan planner.PlanNode) *RuleAssert {
	ra.plan = plan
	return ra
}

// DoesNotFire asserts that the rule produces no transformation anywhere in
// the plan.
func (ra *RuleAssert) DoesNotFire() {
	ra.t.Helper()
	result, fired := ra.apply()
	if fired {
		ra.t.Fatalf("rule %s fired unexpectedly, produced:\n%s", ra.rule.Name(), result.String())
	}
}

// Fires asserts that the rule transforms the plan and returns the fully
// extracted result, schema-checked against the input.
func (ra *RuleAssert) Fires() planner.PlanNode {
	ra.t.Helper()
	result, fired := ra.apply()
	require.True(ra.t, fired, "rule %s did not fire", ra.rule.Name())
	return result
}

// apply walks the memo groups in ascending order and applies the rule to
// the first match that yields a transformation.
func (ra *RuleAssert) apply() (planner.PlanNode, bool) {
	ra.t.Helper()
	require.NotNil(ra.t, ra.plan, "no plan under test; call On first")
	require.True(ra.t, ra.rule.IsEnabled(ra.session), "rule %s is disabled for the session", ra.rule.Name())

	memo, err := planner.NewMemo(ra.ids, ra.plan)
	require.NoError(ra.t, err)
	lookup := planner.NewMemoLookup(memo)

	statsOf := ra.statsOf
	if statsOf != nil {
		// Rules see memo indirection; the supplied estimates are keyed by
		// the concrete nodes the test built.
		user := statsOf
		statsOf = func(node planner.PlanNode) planner.PlanNodeStatsEstimate {
			return user(lookup.Resolve(node))
		}
	}

	ctx := &planner.RuleContext{
		Lookup:       lookup,
		IDAllocator:  ra.ids,
		Symbols:      ra.symbols,
		Session:      ra.session,
		StatsOf:      statsOf,
		CheckTimeout: func() {},
	}

	for _, gid := range memo.Groups() {
		node := memo.Node(gid)
		if _, ok := node.(*planner.GroupReference); ok {
			continue
		}
		for match := range ra.rule.Pattern().Match(node, lookup) {
			result, err := ra.rule.Apply(match.Value.(planner.PlanNode), match.Captures, ctx)
			require.NoError(ra.t, err)
			if result.IsEmpty() {
				continue
			}
			_, err = memo.Replace(gid, result.Plan(), ra.rule.Name())
			require.NoError(ra.t, err, "rule %s violated the group schema", ra.rule.Name())
			return memo.ExtractGroup(memo.RootGroup()), true
		}
	}
	return nil, false
}
