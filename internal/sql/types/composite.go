package types

import (
	"fmt"
	"strings"
)

// ArrayType is an ordered collection of elements of one type. Array values
// are represented as []Value.
type ArrayType struct {
	Elem DataType
}

// Array returns the array type with the given element type.
func Array(elem DataType) DataType {
	return ArrayType{Elem: elem}
}

func (t ArrayType) Name() string { return fmt.Sprintf("ARRAY(%s)", t.Elem.Name()) }
func (t ArrayType) Size() int    { return -1 }
func (t ArrayType) Zero() Value  { return NewValue([]Value{}) }

func (t ArrayType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	elems, ok := v.Data.([]Value)
	if !ok {
		return false
	}
	for _, e := range elems {
		if !t.Elem.IsValid(e) {
			return false
		}
	}
	return true
}

func (t ArrayType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	av := a.Data.([]Value)
	bv := b.Data.([]Value)
	for i := 0; i < len(av) && i < len(bv); i++ {
		if c := t.Elem.Compare(av[i], bv[i]); c != 0 {
			return c
		}
	}
	return compareOrdered(int64(len(av)), int64(len(bv)))
}

// RowType is a fixed sequence of fields, each with its own type. Row values
// are represented as []Value with one entry per field.
type RowType struct {
	Fields []DataType
}

// Row returns the row type with the given field types.
func Row(fields ...DataType) DataType {
	return RowType{Fields: fields}
}

func (t RowType) Name() string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name()
	}
	return fmt.Sprintf("ROW(%s)", strings.Join(names, ", "))
}

func (t RowType) Size() int { return -1 }

func (t RowType) Zero() Value {
	fields := make([]Value, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Zero()
	}
	return NewValue(fields)
}

func (t RowType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	fields, ok := v.Data.([]Value)
	if !ok || len(fields) != len(t.Fields) {
		return false
	}
	for i, f := range fields {
		if !t.Fields[i].IsValid(f) {
			return false
		}
	}
	return true
}

func (t RowType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	av := a.Data.([]Value)
	bv := b.Data.([]Value)
	for i := range t.Fields {
		if c := t.Fields[i].Compare(av[i], bv[i]); c != 0 {
			return c
		}
	}
	return 0
}
