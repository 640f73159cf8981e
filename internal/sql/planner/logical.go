package planner

import (
	"fmt"
	"strings"
)

// TableScanNode reads a base table, producing one symbol per column.
type TableScanNode struct {
	id          PlanNodeID
	Table       string
	Columns     []Symbol
	ColumnNames map[Symbol]string // symbol -> catalog column name
}

// NewTableScanNode creates a table scan.
func NewTableScanNode(id PlanNodeID, table string, columns []Symbol, columnNames map[Symbol]string) *TableScanNode {
	return &TableScanNode{id: id, Table: table, Columns: columns, ColumnNames: columnNames}
}

func (n *TableScanNode) ID() PlanNodeID          { return n.id }
func (n *TableScanNode) Kind() NodeKind          { return KindTableScan }
func (n *TableScanNode) OutputSymbols() []Symbol { return n.Columns }
func (n *TableScanNode) Children() []PlanNode    { return nil }

func (n *TableScanNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 0 {
		panic(fmt.Sprintf("TableScan has no children, got %d", len(children)))
	}
	return n
}

func (n *TableScanNode) String() string {
	names := make([]string, len(n.Columns))
	for i, s := range n.Columns {
		names[i] = s.Name()
	}
	return fmt.Sprintf("Scan(%s: %s)", n.Table, strings.Join(names, ", "))
}

// FilterNode keeps the source rows satisfying a boolean predicate.
type FilterNode struct {
	id        PlanNodeID
	Source    PlanNode
	Predicate Expression
}

// NewFilterNode creates a filter.
func NewFilterNode(id PlanNodeID, source PlanNode, predicate Expression) *FilterNode {
	return &FilterNode{id: id, Source: source, Predicate: predicate}
}

func (n *FilterNode) ID() PlanNodeID          { return n.id }
func (n *FilterNode) Kind() NodeKind          { return KindFilter }
func (n *FilterNode) OutputSymbols() []Symbol { return n.Source.OutputSymbols() }
func (n *FilterNode) Children() []PlanNode    { return []PlanNode{n.Source} }

func (n *FilterNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 1 {
		panic(fmt.Sprintf("Filter needs 1 child, got %d", len(children)))
	}
	return &FilterNode{id: n.id, Source: children[0], Predicate: n.Predicate}
}

func (n *FilterNode) String() string {
	return fmt.Sprintf("Filter(%s)", n.Predicate.String())
}

// Assignment binds an output symbol to the expression producing it.
type Assignment struct {
	Symbol     Symbol
	Expression Expression
}

// ProjectNode computes a new set of output symbols from its input.
type ProjectNode struct {
	id          PlanNodeID
	Source      PlanNode
	Assignments []Assignment
}

// NewProjectNode creates a projection.
func NewProjectNode(id PlanNodeID, source PlanNode, assignments []Assignment) *ProjectNode {
	return &ProjectNode{id: id, Source: source, Assignments: assignments}
}

func (n *ProjectNode) ID() PlanNodeID { return n.id }
func (n *ProjectNode) Kind() NodeKind { return KindProject }

func (n *ProjectNode) OutputSymbols() []Symbol {
	out := make([]Symbol, len(n.Assignments))
	for i, a := range n.Assignments {
		out[i] = a.Symbol
	}
	return out
}

func (n *ProjectNode) Children() []PlanNode { return []PlanNode{n.Source} }

func (n *ProjectNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 1 {
		panic(fmt.Sprintf("Project needs 1 child, got %d", len(children)))
	}
	return &ProjectNode{id: n.id, Source: children[0], Assignments: n.Assignments}
}

// IsIdentity reports whether every assignment merely forwards a source
// symbol under its own name, in source order.
func (n *ProjectNode) IsIdentity() bool {
	source := n.Source.OutputSymbols()
	if len(n.Assignments) != len(source) {
		return false
	}
	for i, a := range n.Assignments {
		ref, ok := a.Expression.(*VariableReference)
		if !ok || ref.Symbol != a.Symbol || source[i] != a.Symbol {
			return false
		}
	}
	return true
}

func (n *ProjectNode) String() string {
	parts := make([]string, len(n.Assignments))
	for i, a := range n.Assignments {
		parts[i] = fmt.Sprintf("%s := %s", a.Symbol.Name(), a.Expression.String())
	}
	return fmt.Sprintf("Project(%s)", strings.Join(parts, ", "))
}

// EquiJoinClause is one equality conjunct of a join criterion.
type EquiJoinClause struct {
	Left  Symbol
	Right Symbol
}

func (c EquiJoinClause) String() string {
	return fmt.Sprintf("%s = %s", c.Left.Name(), c.Right.Name())
}

// JoinNode joins two inputs on equality criteria.
type JoinNode struct {
	id       PlanNodeID
	JoinType JoinType
	Left     PlanNode
	Right    PlanNode
	Criteria []EquiJoinClause
	Outputs  []Symbol
}

// NewJoinNode creates a join. Outputs fixes the output symbol order
// independently of input order, so that swapping inputs preserves schema.
func NewJoinNode(id PlanNodeID, joinType JoinType, left, right PlanNode, criteria []EquiJoinClause, outputs []Symbol) *JoinNode {
	return &JoinNode{id: id, JoinType: joinType, Left: left, Right: right, Criteria: criteria, Outputs: outputs}
}

func (n *JoinNode) ID() PlanNodeID          { return n.id }
func (n *JoinNode) Kind() NodeKind          { return KindJoin }
func (n *JoinNode) OutputSymbols() []Symbol { return n.Outputs }
func (n *JoinNode) Children() []PlanNode    { return []PlanNode{n.Left, n.Right} }

func (n *JoinNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 2 {
		panic(fmt.Sprintf("Join needs 2 children, got %d", len(children)))
	}
	return &JoinNode{id: n.id, JoinType: n.JoinType, Left: children[0], Right: children[1], Criteria: n.Criteria, Outputs: n.Outputs}
}

func (n *JoinNode) String() string {
	clauses := make([]string, len(n.Criteria))
	for i, c := range n.Criteria {
		clauses[i] = c.String()
	}
	return fmt.Sprintf("Join(%s, %s)", n.JoinType, strings.Join(clauses, " AND "))
}

// SemiJoinNode marks each source row with whether its join symbol has a
// match in the filtering source. It filters nothing itself; a downstream
// filter on the marker symbol applies semi-join or anti-join semantics.
type SemiJoinNode struct {
	id                        PlanNodeID
	Source                    PlanNode
	FilteringSource           PlanNode
	SourceJoinSymbol          Symbol
	FilteringSourceJoinSymbol Symbol
	SemiJoinOutput            Symbol
}

// NewSemiJoinNode creates a semi-join.
func NewSemiJoinNode(id PlanNodeID, source, filteringSource PlanNode, sourceJoinSymbol, filteringSourceJoinSymbol, semiJoinOutput Symbol) *SemiJoinNode {
	return &SemiJoinNode{
		id:                        id,
		Source:                    source,
		FilteringSource:           filteringSource,
		SourceJoinSymbol:          sourceJoinSymbol,
		FilteringSourceJoinSymbol: filteringSourceJoinSymbol,
		SemiJoinOutput:            semiJoinOutput,
	}
}

func (n *SemiJoinNode) ID() PlanNodeID { return n.id }
func (n *SemiJoinNode) Kind() NodeKind { return KindSemiJoin }

func (n *SemiJoinNode) OutputSymbols() []Symbol {
	source := n.Source.OutputSymbols()
	out := make([]Symbol, 0, len(source)+1)
	out = append(out, source...)
	out = append(out, n.SemiJoinOutput)
	return out
}

func (n *SemiJoinNode) Children() []PlanNode {
	return []PlanNode{n.Source, n.FilteringSource}
}

func (n *SemiJoinNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 2 {
		panic(fmt.Sprintf("SemiJoin needs 2 children, got %d", len(children)))
	}
	return &SemiJoinNode{
		id:                        n.id,
		Source:                    children[0],
		FilteringSource:           children[1],
		SourceJoinSymbol:          n.SourceJoinSymbol,
		FilteringSourceJoinSymbol: n.FilteringSourceJoinSymbol,
		SemiJoinOutput:            n.SemiJoinOutput,
	}
}

func (n *SemiJoinNode) String() string {
	return fmt.Sprintf("SemiJoin(%s = %s -> %s)", n.SourceJoinSymbol.Name(), n.FilteringSourceJoinSymbol.Name(), n.SemiJoinOutput.Name())
}

// Aggregation is one aggregate function computed by an AggregateNode.
type Aggregation struct {
	Output   Symbol
	Function string
	Args     []Expression
}

// AggregateNode groups its input and computes aggregate functions.
type AggregateNode struct {
	id           PlanNodeID
	Source       PlanNode
	GroupingKeys []Symbol
	Aggregations []Aggregation
}

// NewAggregateNode creates an aggregation.
func NewAggregateNode(id PlanNodeID, source PlanNode, groupingKeys []Symbol, aggregations []Aggregation) *AggregateNode {
	return &AggregateNode{id: id, Source: source, GroupingKeys: groupingKeys, Aggregations: aggregations}
}

func (n *AggregateNode) ID() PlanNodeID { return n.id }
func (n *AggregateNode) Kind() NodeKind { return KindAggregate }

func (n *AggregateNode) OutputSymbols() []Symbol {
	out := make([]Symbol, 0, len(n.GroupingKeys)+len(n.Aggregations))
	out = append(out, n.GroupingKeys...)
	for _, a := range n.Aggregations {
		out = append(out, a.Output)
	}
	return out
}

func (n *AggregateNode) Children() []PlanNode { return []PlanNode{n.Source} }

func (n *AggregateNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 1 {
		panic(fmt.Sprintf("Aggregate needs 1 child, got %d", len(children)))
	}
	return &AggregateNode{id: n.id, Source: children[0], GroupingKeys: n.GroupingKeys, Aggregations: n.Aggregations}
}

func (n *AggregateNode) String() string {
	keys := make([]string, len(n.GroupingKeys))
	for i, k := range n.GroupingKeys {
		keys[i] = k.Name()
	}
	aggs := make([]string, len(n.Aggregations))
	for i, a := range n.Aggregations {
		aggs[i] = fmt.Sprintf("%s := %s", a.Output.Name(), a.Function)
	}
	return fmt.Sprintf("Aggregate([%s], %s)", strings.Join(keys, ", "), strings.Join(aggs, ", "))
}

// LimitNode caps the number of rows.
type LimitNode struct {
	id     PlanNodeID
	Source PlanNode
	Count  int64
}

// NewLimitNode creates a limit.
func NewLimitNode(id PlanNodeID, source PlanNode, count int64) *LimitNode {
	return &LimitNode{id: id, Source: source, Count: count}
}

func (n *LimitNode) ID() PlanNodeID          { return n.id }
func (n *LimitNode) Kind() NodeKind          { return KindLimit }
func (n *LimitNode) OutputSymbols() []Symbol { return n.Source.OutputSymbols() }
func (n *LimitNode) Children() []PlanNode    { return []PlanNode{n.Source} }

func (n *LimitNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 1 {
		panic(fmt.Sprintf("Limit needs 1 child, got %d", len(children)))
	}
	return &LimitNode{id: n.id, Source: children[0], Count: n.Count}
}

func (n *LimitNode) String() string {
	return fmt.Sprintf("Limit(%d)", n.Count)
}

// ValuesNode produces a constant relation.
type ValuesNode struct {
	id      PlanNodeID
	Outputs []Symbol
	Rows    [][]Expression
}

// NewValuesNode creates a constant relation. An empty row list is the
// canonical empty relation with the given schema.
func NewValuesNode(id PlanNodeID, outputs []Symbol, rows [][]Expression) *ValuesNode {
	return &ValuesNode{id: id, Outputs: outputs, Rows: rows}
}

func (n *ValuesNode) ID() PlanNodeID          { return n.id }
func (n *ValuesNode) Kind() NodeKind          { return KindValues }
func (n *ValuesNode) OutputSymbols() []Symbol { return n.Outputs }
func (n *ValuesNode) Children() []PlanNode    { return nil }

func (n *ValuesNode) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 0 {
		panic(fmt.Sprintf("Values has no children, got %d", len(children)))
	}
	return n
}

func (n *ValuesNode) String() string {
	return fmt.Sprintf("Values(%d rows)", len(n.Rows))
}

// GroupReference stands in for a child subplan inside a Memo. It names a
// group and carries the group's output symbols, nothing else.
type GroupReference struct {
	id      PlanNodeID
	Group   GroupID
	Outputs []Symbol
}

// NewGroupReference creates a group reference.
func NewGroupReference(id PlanNodeID, group GroupID, outputs []Symbol) *GroupReference {
	return &GroupReference{id: id, Group: group, Outputs: outputs}
}

func (n *GroupReference) ID() PlanNodeID          { return n.id }
func (n *GroupReference) Kind() NodeKind          { return KindGroupReference }
func (n *GroupReference) OutputSymbols() []Symbol { return n.Outputs }
func (n *GroupReference) Children() []PlanNode    { return nil }

func (n *GroupReference) ReplaceChildren(children []PlanNode) PlanNode {
	if len(children) != 0 {
		panic(fmt.Sprintf("GroupReference has no children, got %d", len(children)))
	}
	return n
}

func (n *GroupReference) String() string {
	return fmt.Sprintf("GroupRef(%d)", int(n.Group))
}
