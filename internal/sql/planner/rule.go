package planner

// Result is the outcome of applying a rule: either no change, or a single
// replacement plan for the matched node.
type Result struct {
	plan    PlanNode
	present bool
}

// EmptyResult reports that the rule chose not to transform the match.
func EmptyResult() Result {
	return Result{}
}

// ResultOf wraps a replacement plan.
func ResultOf(plan PlanNode) Result {
	return Result{plan: plan, present: true}
}

// IsEmpty reports whether the rule produced no transformation.
func (r Result) IsEmpty() bool { return !r.present }

// Plan returns the replacement plan. Only valid when not empty.
func (r Result) Plan() PlanNode { return r.plan }

// RuleContext gives rules access to the services they need while staying
// independent of the memo's representation.
type RuleContext struct {
	Lookup       Lookup
	IDAllocator  *PlanNodeIDAllocator
	Symbols      *SymbolAllocator
	Session      *Session
	StatsOf      func(node PlanNode) PlanNodeStatsEstimate
	CheckTimeout func()
}

// Rule transforms plans matching a pattern. Apply must be a pure function
// of its inputs and must return a plan producing exactly the same output
// symbol set as the matched node, so that alternatives stay interchangeable
// inside a memo group.
type Rule interface {
	// Name identifies the rule in logs and counters.
	Name() string
	// IsEnabled reports whether the rule should run for the session. The
	// driver checks this before attempting any match.
	IsEnabled(session *Session) bool
	// Pattern returns the shape of nodes this rule applies to.
	Pattern() *Pattern
	// Apply attempts the transformation on one match. Returning an empty
	// Result means the rule declined; the driver moves on to the next
	// match or rule.
	Apply(node PlanNode, captures *Captures, ctx *RuleContext) (Result, error)
}
