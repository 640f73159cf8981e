package planner

import (
	"fmt"
	"sort"

	"github.com/cascadedb/cascade/internal/sql/types"
)

// Symbol is a named reference to a column-like value flowing through the
// plan. Symbols are immutable and compared by name.
type Symbol struct {
	name string
}

// NewSymbol creates a symbol with the given name.
func NewSymbol(name string) Symbol {
	return Symbol{name: name}
}

// Name returns the symbol's name.
func (s Symbol) Name() string {
	return s.name
}

func (s Symbol) String() string {
	return s.name
}

// sortSymbols returns the symbols in name order. Used wherever deterministic
// iteration over a symbol set is required.
func sortSymbols(symbols []Symbol) []Symbol {
	sorted := make([]Symbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	return sorted
}

// symbolSetsEqual compares two symbol lists as sets.
func symbolSetsEqual(a, b []Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[Symbol]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// SymbolAllocator hands out fresh, collision-free symbols and remembers
// their types.
type SymbolAllocator struct {
	symbolTypes map[Symbol]types.DataType
	nextSuffix  map[string]int
}

// NewSymbolAllocator creates an empty allocator.
func NewSymbolAllocator() *SymbolAllocator {
	return &SymbolAllocator{
		symbolTypes: make(map[Symbol]types.DataType),
		nextSuffix:  make(map[string]int),
	}
}

// Register records an existing symbol and its type, e.g. when adopting the
// symbols of an incoming plan. Registering the same symbol twice is fine as
// long as the type does not change.
func (a *SymbolAllocator) Register(s Symbol, dataType types.DataType) {
	a.symbolTypes[s] = dataType
}

// NewSymbol allocates a fresh symbol based on nameHint. The returned name is
// unique within this allocator: "x", then "x_1", "x_2", and so on.
func (a *SymbolAllocator) NewSymbol(nameHint string, dataType types.DataType) Symbol {
	candidate := NewSymbol(nameHint)
	for {
		if _, taken := a.symbolTypes[candidate]; !taken {
			break
		}
		a.nextSuffix[nameHint]++
		candidate = NewSymbol(fmt.Sprintf("%s_%d", nameHint, a.nextSuffix[nameHint]))
	}
	a.symbolTypes[candidate] = dataType
	return candidate
}

// Type returns the recorded type for a symbol, or types.Unknown when the
// symbol was never registered.
func (a *SymbolAllocator) Type(s Symbol) types.DataType {
	if t, ok := a.symbolTypes[s]; ok {
		return t
	}
	return types.Unknown
}

// Types returns a copy of the symbol-to-type mapping.
func (a *SymbolAllocator) Types() map[Symbol]types.DataType {
	out := make(map[Symbol]types.DataType, len(a.symbolTypes))
	for s, t := range a.symbolTypes {
		out[s] = t
	}
	return out
}
