package planner

import (
	"fmt"
)

// PlanNodeID uniquely identifies a plan node within one optimization run.
type PlanNodeID int

// PlanNodeIDAllocator hands out monotonically increasing plan node ids.
type PlanNodeIDAllocator struct {
	next PlanNodeID
}

// NewPlanNodeIDAllocator creates an allocator starting at zero.
func NewPlanNodeIDAllocator() *PlanNodeIDAllocator {
	return &PlanNodeIDAllocator{}
}

// Next returns a fresh id.
func (a *PlanNodeIDAllocator) Next() PlanNodeID {
	id := a.next
	a.next++
	return id
}

// NodeKind identifies the relational operator of a plan node.
type NodeKind int

const (
	KindTableScan NodeKind = iota
	KindFilter
	KindProject
	KindJoin
	KindSemiJoin
	KindAggregate
	KindLimit
	KindValues
	KindGroupReference
)

func (k NodeKind) String() string {
	switch k {
	case KindTableScan:
		return "TableScan"
	case KindFilter:
		return "Filter"
	case KindProject:
		return "Project"
	case KindJoin:
		return "Join"
	case KindSemiJoin:
		return "SemiJoin"
	case KindAggregate:
		return "Aggregate"
	case KindLimit:
		return "Limit"
	case KindValues:
		return "Values"
	case KindGroupReference:
		return "GroupReference"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// PlanNode represents an immutable node in a logical query plan. Children of
// nodes stored inside a Memo are GroupReference stand-ins; children of a
// fully extracted plan are concrete nodes.
type PlanNode interface {
	// ID returns the node's id.
	ID() PlanNodeID
	// Kind returns the relational operator kind.
	Kind() NodeKind
	// OutputSymbols returns the symbols this node produces.
	OutputSymbols() []Symbol
	// Children returns the child plans.
	Children() []PlanNode
	// ReplaceChildren returns a copy of the node with new children. The
	// number of children must match; the node id is preserved.
	ReplaceChildren(children []PlanNode) PlanNode
	// String returns a one-line representation for debugging.
	String() string
}

// JoinType represents the type of join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

func (j JoinType) String() string {
	switch j {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	case CrossJoin:
		return "CROSS"
	default:
		return fmt.Sprintf("Unknown(%d)", int(j))
	}
}
