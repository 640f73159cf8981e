package planner

// Lookup resolves GroupReference stand-ins to concrete plan nodes so that
// patterns and rules can inspect the children of memo-resident nodes
// without knowing about the memo.
type Lookup interface {
	// Resolve returns the concrete node behind a GroupReference, following
	// chains of references. Concrete nodes are returned unchanged.
	Resolve(node PlanNode) PlanNode
}

// MemoLookup resolves references against a memo's current representatives.
type MemoLookup struct {
	memo *Memo
}

// NewMemoLookup creates a lookup backed by the given memo.
func NewMemoLookup(memo *Memo) *MemoLookup {
	return &MemoLookup{memo: memo}
}

// Resolve follows GroupReferences until a concrete node is reached. The
// memo is acyclic, so the chain is finite.
func (l *MemoLookup) Resolve(node PlanNode) PlanNode {
	for {
		ref, ok := node.(*GroupReference)
		if !ok {
			return node
		}
		node = l.memo.Node(ref.Group)
	}
}

// noLookup is used when matching against plain plan trees that contain no
// GroupReferences. Hitting a reference means the caller wired a memo plan
// into a context that cannot resolve it.
type noLookup struct{}

// NoLookup returns a Lookup for plans outside a memo.
func NoLookup() Lookup {
	return noLookup{}
}

func (noLookup) Resolve(node PlanNode) PlanNode {
	if _, ok := node.(*GroupReference); ok {
		panic("group reference outside a memo; use a memo-backed lookup")
	}
	return node
}
