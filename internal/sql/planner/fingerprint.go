package planner

import (
	"fmt"
	"strings"

	"github.com/cascadedb/cascade/internal/sql/types"
)

// planFingerprint produces a deterministic structural signature of a plan
// node. Two nodes with equal fingerprints are structurally equal. Children
// that are GroupReferences contribute only their group id, so fingerprints
// of memo-resident nodes identify (operator, child groups) shapes.
func planFingerprint(node PlanNode) string {
	var b strings.Builder
	writePlanFingerprint(&b, node)
	return b.String()
}

func writePlanFingerprint(b *strings.Builder, node PlanNode) {
	switch n := node.(type) {
	case *GroupReference:
		fmt.Fprintf(b, "$%d", int(n.Group))
		return
	case *TableScanNode:
		fmt.Fprintf(b, "Scan(%s", n.Table)
		for _, s := range n.Columns {
			fmt.Fprintf(b, ";%s=%s", s.Name(), n.ColumnNames[s])
		}
		b.WriteString(")")
	case *FilterNode:
		b.WriteString("Filter(")
		writeExprFingerprint(b, n.Predicate)
		b.WriteString(")")
	case *ProjectNode:
		b.WriteString("Project(")
		for i, a := range n.Assignments {
			if i > 0 {
				b.WriteString(";")
			}
			fmt.Fprintf(b, "%s:=", a.Symbol.Name())
			writeExprFingerprint(b, a.Expression)
		}
		b.WriteString(")")
	case *JoinNode:
		fmt.Fprintf(b, "Join(%s", n.JoinType)
		for _, c := range n.Criteria {
			fmt.Fprintf(b, ";%s=%s", c.Left.Name(), c.Right.Name())
		}
		b.WriteString(";out")
		for _, s := range n.Outputs {
			fmt.Fprintf(b, ",%s", s.Name())
		}
		b.WriteString(")")
	case *SemiJoinNode:
		fmt.Fprintf(b, "SemiJoin(%s;%s;%s)", n.SourceJoinSymbol.Name(), n.FilteringSourceJoinSymbol.Name(), n.SemiJoinOutput.Name())
	case *AggregateNode:
		b.WriteString("Aggregate(")
		for _, k := range n.GroupingKeys {
			fmt.Fprintf(b, "%s,", k.Name())
		}
		for _, a := range n.Aggregations {
			fmt.Fprintf(b, ";%s:=%s(", a.Output.Name(), a.Function)
			for i, arg := range a.Args {
				if i > 0 {
					b.WriteString(",")
				}
				writeExprFingerprint(b, arg)
			}
			b.WriteString(")")
		}
		b.WriteString(")")
	case *LimitNode:
		fmt.Fprintf(b, "Limit(%d)", n.Count)
	case *ValuesNode:
		b.WriteString("Values(")
		for _, s := range n.Outputs {
			fmt.Fprintf(b, "%s,", s.Name())
		}
		for _, row := range n.Rows {
			b.WriteString(";")
			for i, e := range row {
				if i > 0 {
					b.WriteString(",")
				}
				writeExprFingerprint(b, e)
			}
		}
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "%s(%s)", node.Kind(), node.String())
	}

	children := node.Children()
	if len(children) > 0 {
		b.WriteString("[")
		for i, child := range children {
			if i > 0 {
				b.WriteString(",")
			}
			writePlanFingerprint(b, child)
		}
		b.WriteString("]")
	}
}

// writeExprFingerprint appends a deterministic structural signature of an
// expression. Constant values are folded through the type-keyed value
// hasher so that equal values of one type always agree; the rendered value
// rides along so a hash collision cannot merge distinct constants.
func writeExprFingerprint(b *strings.Builder, e Expression) {
	switch x := e.(type) {
	case *Constant:
		hasher := types.HasherFor(x.Type)
		fmt.Fprintf(b, "%s#%016x:%s", x.Type.Name(), hasher(x.Value), x.Value.String())
	case *Call:
		fmt.Fprintf(b, "%s<%s>(", x.Function, x.Type.Name())
		for i, a := range x.Args {
			if i > 0 {
				b.WriteString(",")
			}
			writeExprFingerprint(b, a)
		}
		b.WriteString(")")
	case *InputReference:
		fmt.Fprintf(b, "#%d<%s>", x.Field, x.Type.Name())
	case *LambdaDefinition:
		b.WriteString("lambda(")
		for i, p := range x.Parameters {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(b, "%s<%s>", p.Name, p.Type.Name())
		}
		b.WriteString("->")
		writeExprFingerprint(b, x.Body)
		b.WriteString(")")
	case *SpecialForm:
		fmt.Fprintf(b, "%s<%s>(", x.Form, x.Type.Name())
		for i, a := range x.Args {
			if i > 0 {
				b.WriteString(",")
			}
			writeExprFingerprint(b, a)
		}
		b.WriteString(")")
	case *VariableReference:
		fmt.Fprintf(b, "%s<%s>", x.Symbol.Name(), x.Type.Name())
	default:
		b.WriteString(e.String())
	}
}
