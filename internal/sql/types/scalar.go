package types

import (
	"strings"
	"time"
)

// Scalar type singletons.
var (
	Boolean   DataType = booleanType{}
	Integer   DataType = integerType{}
	BigInt    DataType = bigintType{}
	Double    DataType = doubleType{}
	Text      DataType = textType{}
	Timestamp DataType = timestampType{}
	Unknown   DataType = unknownType{}
)

type booleanType struct{}

func (booleanType) Name() string { return "BOOLEAN" }
func (booleanType) Size() int    { return 1 }
func (booleanType) Zero() Value  { return NewValue(false) }

func (booleanType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(bool)
	return ok
}

func (booleanType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	av := a.Data.(bool)
	bv := b.Data.(bool)
	switch {
	case av == bv:
		return 0
	case !av:
		return -1
	default:
		return 1
	}
}

type integerType struct{}

func (integerType) Name() string { return "INTEGER" }
func (integerType) Size() int    { return 4 }
func (integerType) Zero() Value  { return NewValue(int32(0)) }

func (integerType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(int32)
	return ok
}

func (integerType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	return compareOrdered(a.Data.(int32), b.Data.(int32))
}

type bigintType struct{}

func (bigintType) Name() string { return "BIGINT" }
func (bigintType) Size() int    { return 8 }
func (bigintType) Zero() Value  { return NewValue(int64(0)) }

func (bigintType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(int64)
	return ok
}

func (bigintType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	return compareOrdered(a.Data.(int64), b.Data.(int64))
}

type doubleType struct{}

func (doubleType) Name() string { return "DOUBLE" }
func (doubleType) Size() int    { return 8 }
func (doubleType) Zero() Value  { return NewValue(float64(0)) }

func (doubleType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(float64)
	return ok
}

func (doubleType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	return compareOrdered(a.Data.(float64), b.Data.(float64))
}

type textType struct{}

func (textType) Name() string { return "TEXT" }
func (textType) Size() int    { return -1 }
func (textType) Zero() Value  { return NewValue("") }

func (textType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(string)
	return ok
}

func (textType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	return strings.Compare(a.Data.(string), b.Data.(string))
}

type timestampType struct{}

func (timestampType) Name() string { return "TIMESTAMP" }
func (timestampType) Size() int    { return 8 }
func (timestampType) Zero() Value  { return NewValue(time.Unix(0, 0).UTC()) }

func (timestampType) IsValid(v Value) bool {
	if v.Null {
		return true
	}
	_, ok := v.Data.(time.Time)
	return ok
}

func (timestampType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	av := a.Data.(time.Time)
	bv := b.Data.(time.Time)
	switch {
	case av.Equal(bv):
		return 0
	case av.Before(bv):
		return -1
	default:
		return 1
	}
}

// unknownType stands in where the type of an expression is not yet resolved.
type unknownType struct{}

func (unknownType) Name() string         { return "UNKNOWN" }
func (unknownType) Size() int            { return -1 }
func (unknownType) Zero() Value          { return NewNullValue() }
func (unknownType) IsValid(v Value) bool { return v.Null }

func (unknownType) Compare(a, b Value) int {
	if c, done := compareNulls(a, b); done {
		return c
	}
	return 0
}

func compareOrdered[T int32 | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
