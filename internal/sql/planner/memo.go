package planner

import (
	"sort"

	"github.com/cascadedb/cascade/internal/errors"
)

// GroupID identifies an equivalence class of plan alternatives in a Memo.
type GroupID int

// group owns the alternatives explored for one equivalence class. Members
// only grow; the representative points at the current best-known member.
type group struct {
	id             GroupID
	members        []PlanNode
	memberPrints   map[string]struct{}
	representative PlanNode
}

// Memo stores a query plan as a DAG of groups. Every node held by a group
// has children that are GroupReferences into the same memo, which makes
// sharing of identical subplans explicit and keeps the structure acyclic.
// A memo belongs to a single optimization run and is not safe for
// concurrent mutation.
type Memo struct {
	ids           *PlanNodeIDAllocator
	groups        map[GroupID]*group
	nextGroupID   GroupID
	root          GroupID
	byFingerprint map[string]GroupID
	parents       map[GroupID]map[GroupID]struct{}
}

// NewMemo creates a memo holding the given plan.
func NewMemo(ids *PlanNodeIDAllocator, root PlanNode) (*Memo, error) {
	m := &Memo{
		ids:           ids,
		groups:        make(map[GroupID]*group),
		byFingerprint: make(map[string]GroupID),
		parents:       make(map[GroupID]map[GroupID]struct{}),
	}
	rootGroup, err := m.Insert(root)
	if err != nil {
		return nil, err
	}
	m.root = rootGroup
	return m, nil
}

// RootGroup returns the group holding the plan root.
func (m *Memo) RootGroup() GroupID {
	return m.root
}

// Insert adds a plan to the memo, recursively inserting its children, and
// returns its group. A plan structurally equal to an existing alternative
// reuses that alternative's group without growing it.
func (m *Memo) Insert(node PlanNode) (GroupID, error) {
	if ref, ok := node.(*GroupReference); ok {
		if _, exists := m.groups[ref.Group]; !exists {
			return 0, errors.Internalf("group reference to unknown group %d", int(ref.Group))
		}
		return ref.Group, nil
	}

	rewritten, err := m.insertChildrenAndRewrite(node)
	if err != nil {
		return 0, err
	}

	print := planFingerprint(rewritten)
	if gid, ok := m.byFingerprint[print]; ok {
		return gid, nil
	}

	gid := m.nextGroupID
	m.nextGroupID++
	m.groups[gid] = &group{
		id:             gid,
		members:        []PlanNode{rewritten},
		memberPrints:   map[string]struct{}{print: {}},
		representative: rewritten,
	}
	m.byFingerprint[print] = gid
	for _, child := range childGroups(rewritten) {
		m.addParentEdge(child, gid)
	}
	return gid, nil
}

// Node returns the group's current representative. Its children are still
// GroupReferences; use Extract for a fully resolved tree.
func (m *Memo) Node(gid GroupID) PlanNode {
	return m.groups[gid].representative
}

// Replace installs node as a new alternative and representative of the
// group and reports whether the representative's shape actually changed.
// The node must produce exactly the same output symbol set as the group;
// violating that is an internal error because downstream plans depend on
// the group's schema. Existing alternatives are never removed.
func (m *Memo) Replace(gid GroupID, node PlanNode, reason string) (bool, error) {
	grp, ok := m.groups[gid]
	if !ok {
		return false, errors.Internalf("replace of unknown group %d", int(gid))
	}
	old := grp.representative

	var rewritten PlanNode
	if ref, isRef := node.(*GroupReference); isRef {
		if _, exists := m.groups[ref.Group]; !exists {
			return false, errors.Internalf("%s: group reference to unknown group %d", reason, int(ref.Group))
		}
		rewritten = ref
	} else {
		var err error
		rewritten, err = m.insertChildrenAndRewrite(node)
		if err != nil {
			return false, err
		}
	}

	if !symbolSetsEqual(old.OutputSymbols(), rewritten.OutputSymbols()) {
		return false, errors.Internalf(
			"%s: transformed plan changed output symbols of group %d: %v -> %v",
			reason, int(gid), old.OutputSymbols(), rewritten.OutputSymbols())
	}

	for _, child := range childGroups(rewritten) {
		if child == gid || m.dependsOn(child, gid) {
			return false, errors.Internalf("%s: replacement would create a cycle through group %d", reason, int(gid))
		}
	}

	print := planFingerprint(rewritten)
	changed := print != planFingerprint(old)

	if _, dup := grp.memberPrints[print]; !dup {
		grp.members = append(grp.members, rewritten)
		grp.memberPrints[print] = struct{}{}
		if _, taken := m.byFingerprint[print]; !taken {
			m.byFingerprint[print] = gid
		}
	}

	for _, child := range childGroups(old) {
		m.removeParentEdge(child, gid)
	}
	grp.representative = rewritten
	for _, child := range childGroups(rewritten) {
		m.addParentEdge(child, gid)
	}
	return changed, nil
}

// Extract resolves GroupReferences recursively, returning a plan tree free
// of memo indirection.
func (m *Memo) Extract(node PlanNode) PlanNode {
	if ref, ok := node.(*GroupReference); ok {
		return m.Extract(m.groups[ref.Group].representative)
	}
	children := node.Children()
	if len(children) == 0 {
		return node
	}
	resolved := make([]PlanNode, len(children))
	for i, child := range children {
		resolved[i] = m.Extract(child)
	}
	return node.ReplaceChildren(resolved)
}

// ExtractGroup extracts the fully resolved plan of a group.
func (m *Memo) ExtractGroup(gid GroupID) PlanNode {
	return m.Extract(m.groups[gid].representative)
}

// Groups returns all group ids in ascending order.
func (m *Memo) Groups() []GroupID {
	ids := make([]GroupID, 0, len(m.groups))
	for gid := range m.groups {
		ids = append(ids, gid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GroupCount returns the number of groups.
func (m *Memo) GroupCount() int {
	return len(m.groups)
}

// AlternativeCount returns the number of explored alternatives in a group.
func (m *Memo) AlternativeCount(gid GroupID) int {
	return len(m.groups[gid].members)
}

// IncomingReferences returns the groups whose representative references the
// given group, in ascending order.
func (m *Memo) IncomingReferences(gid GroupID) []GroupID {
	set := m.parents[gid]
	out := make([]GroupID, 0, len(set))
	for parent := range set {
		out = append(out, parent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// insertChildrenAndRewrite inserts the node's children and replaces them
// with GroupReferences. Children that already are references into this
// memo are kept.
func (m *Memo) insertChildrenAndRewrite(node PlanNode) (PlanNode, error) {
	children := node.Children()
	if len(children) == 0 {
		return node, nil
	}
	rewritten := make([]PlanNode, len(children))
	for i, child := range children {
		if ref, ok := child.(*GroupReference); ok {
			if _, exists := m.groups[ref.Group]; !exists {
				return nil, errors.Internalf("child references unknown group %d", int(ref.Group))
			}
			rewritten[i] = ref
			continue
		}
		gid, err := m.Insert(child)
		if err != nil {
			return nil, err
		}
		rewritten[i] = NewGroupReference(m.ids.Next(), gid, child.OutputSymbols())
	}
	return node.ReplaceChildren(rewritten), nil
}

// dependsOn reports whether the representative subtree rooted at from
// transitively references target.
func (m *Memo) dependsOn(from, target GroupID) bool {
	seen := make(map[GroupID]bool)
	var walk func(gid GroupID) bool
	walk = func(gid GroupID) bool {
		if gid == target {
			return true
		}
		if seen[gid] {
			return false
		}
		seen[gid] = true
		for _, child := range childGroups(m.groups[gid].representative) {
			if walk(child) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

func (m *Memo) addParentEdge(child, parent GroupID) {
	set, ok := m.parents[child]
	if !ok {
		set = make(map[GroupID]struct{})
		m.parents[child] = set
	}
	set[parent] = struct{}{}
}

func (m *Memo) removeParentEdge(child, parent GroupID) {
	if set, ok := m.parents[child]; ok {
		delete(set, parent)
	}
}

// childGroups returns the groups directly referenced by a memo-resident
// node. A representative that is itself a GroupReference contributes its
// target group.
func childGroups(node PlanNode) []GroupID {
	if ref, ok := node.(*GroupReference); ok {
		return []GroupID{ref.Group}
	}
	var out []GroupID
	for _, child := range node.Children() {
		if ref, ok := child.(*GroupReference); ok {
			out = append(out, ref.Group)
		}
	}
	return out
}
