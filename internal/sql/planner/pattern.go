package planner

import (
	"fmt"
	"iter"
)

// Capture names a position in a pattern whose matched value a rule wants
// back. Identity of the pointer is what matters; the name is for debugging.
type Capture struct {
	name string
}

// NewCapture creates a capture with a debug name.
func NewCapture(name string) *Capture {
	return &Capture{name: name}
}

func (c *Capture) String() string { return c.name }

// Captures is an immutable set of captured values, shared structurally
// between the matches of one pattern application.
type Captures struct {
	parent  *Captures
	capture *Capture
	value   any
}

var emptyCaptures = &Captures{}

// EmptyCaptures returns the empty capture set.
func EmptyCaptures() *Captures { return emptyCaptures }

// Add returns a new set extending this one with capture=value.
func (c *Captures) Add(capture *Capture, value any) *Captures {
	return &Captures{parent: c, capture: capture, value: value}
}

// Get returns the value recorded for the capture.
func (c *Captures) Get(capture *Capture) (any, bool) {
	for cur := c; cur != nil && cur != emptyCaptures; cur = cur.parent {
		if cur.capture == capture {
			return cur.value, true
		}
	}
	return nil, false
}

// Captured returns the typed value recorded for a capture. The capture must
// be present and of the requested type; patterns guarantee both when the
// capture was part of the matched pattern.
func Captured[T any](c *Captures, capture *Capture) T {
	v, ok := c.Get(capture)
	if !ok {
		panic(fmt.Sprintf("capture %s not present in match", capture))
	}
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("capture %s holds %T, not the requested type", capture, v))
	}
	return typed
}

// Match is one way a pattern fits a value.
type Match struct {
	Value    any
	Captures *Captures
}

// Pattern describes the shape of plan (sub)trees a rule applies to.
// Patterns are built from a base matcher refined by CapturedAs and With
// steps, and produce a lazy, restartable sequence of matches. Child
// navigation goes through a Lookup so patterns see through memo
// indirection.
type Pattern struct {
	previous *Pattern
	step     func(value any, captures *Captures, lookup Lookup, yield func(Match) bool) bool
}

// Any matches every value.
func Any() *Pattern {
	return &Pattern{
		step: func(value any, captures *Captures, _ Lookup, yield func(Match) bool) bool {
			return yield(Match{Value: value, Captures: captures})
		},
	}
}

// MatchKind matches plan nodes of the given operator kind.
func MatchKind(kind NodeKind) *Pattern {
	return &Pattern{
		step: func(value any, captures *Captures, _ Lookup, yield func(Match) bool) bool {
			node, ok := value.(PlanNode)
			if !ok || node.Kind() != kind {
				return true
			}
			return yield(Match{Value: value, Captures: captures})
		},
	}
}

// CapturedAs records the currently matched value under the capture.
func (p *Pattern) CapturedAs(capture *Capture) *Pattern {
	return &Pattern{
		previous: p,
		step: func(value any, captures *Captures, _ Lookup, yield func(Match) bool) bool {
			return yield(Match{Value: value, Captures: captures.Add(capture, value)})
		},
	}
}

// With refines the pattern with a condition on one of the matched value's
// properties. A multi-valued property yields one match per property value
// that fits, so a single pattern application can produce several matches.
func (p *Pattern) With(pp PropertyPattern) *Pattern {
	return &Pattern{
		previous: p,
		step: func(value any, captures *Captures, lookup Lookup, yield func(Match) bool) bool {
			for _, extracted := range pp.property.extract(value, lookup) {
				cont := true
				pp.pattern.match(extracted, captures, lookup, func(m Match) bool {
					cont = yield(Match{Value: value, Captures: m.Captures})
					return cont
				})
				if !cont {
					return false
				}
			}
			return true
		},
	}
}

// Match lazily produces every way the pattern fits the value. The sequence
// can be ranged over more than once; each range restarts matching.
func (p *Pattern) Match(value any, lookup Lookup) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		p.match(value, emptyCaptures, lookup, yield)
	}
}

// Matches reports whether the pattern fits the value at all.
func (p *Pattern) Matches(value any, lookup Lookup) bool {
	for range p.Match(value, lookup) {
		return true
	}
	return false
}

func (p *Pattern) match(value any, captures *Captures, lookup Lookup, yield func(Match) bool) bool {
	if p.previous != nil {
		return p.previous.match(value, captures, lookup, func(m Match) bool {
			return p.step(m.Value, m.Captures, lookup, yield)
		})
	}
	return p.step(value, captures, lookup, yield)
}

// Property extracts zero or more values from a matched value for a With
// refinement to inspect.
type Property struct {
	name    string
	extract func(value any, lookup Lookup) []any
}

// NewProperty creates a single-valued property. A property that does not
// apply to a value returns ok=false and the pattern simply fails to match.
func NewProperty(name string, get func(value any, lookup Lookup) (any, bool)) Property {
	return Property{
		name: name,
		extract: func(value any, lookup Lookup) []any {
			v, ok := get(value, lookup)
			if !ok {
				return nil
			}
			return []any{v}
		},
	}
}

// NewMultiProperty creates a property producing any number of values, each
// matched independently.
func NewMultiProperty(name string, get func(value any, lookup Lookup) []any) Property {
	return Property{name: name, extract: get}
}

// Matching pairs the property with a pattern over its values.
func (p Property) Matching(pattern *Pattern) PropertyPattern {
	return PropertyPattern{property: p, pattern: pattern}
}

// CapturedAs is shorthand for Matching(Any().CapturedAs(capture)).
func (p Property) CapturedAs(capture *Capture) PropertyPattern {
	return p.Matching(Any().CapturedAs(capture))
}

// PropertyPattern is a property together with the pattern its values must
// satisfy.
type PropertyPattern struct {
	property Property
	pattern  *Pattern
}

// Source is the first child of a plan node, resolved through the lookup.
func Source() Property {
	return ChildAt(0)
}

// ChildAt is the i-th child of a plan node, resolved through the lookup.
func ChildAt(i int) Property {
	return NewProperty(fmt.Sprintf("child(%d)", i), func(value any, lookup Lookup) (any, bool) {
		node, ok := value.(PlanNode)
		if !ok {
			return nil, false
		}
		children := node.Children()
		if i >= len(children) {
			return nil, false
		}
		return lookup.Resolve(children[i]), true
	})
}

// FilterPredicate is the predicate of a FilterNode.
func FilterPredicate() Property {
	return NewProperty("predicate", func(value any, _ Lookup) (any, bool) {
		filter, ok := value.(*FilterNode)
		if !ok {
			return nil, false
		}
		return filter.Predicate, true
	})
}

// FilterConjuncts are the top-level AND terms of a FilterNode's predicate,
// one match per conjunct.
func FilterConjuncts() Property {
	return NewMultiProperty("conjuncts", func(value any, _ Lookup) []any {
		filter, ok := value.(*FilterNode)
		if !ok {
			return nil
		}
		conjuncts := ExtractConjuncts(filter.Predicate)
		out := make([]any, len(conjuncts))
		for i, c := range conjuncts {
			out[i] = c
		}
		return out
	})
}
