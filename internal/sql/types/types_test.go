package types

import (
	"testing"
	"time"
)

func TestScalarCompare(t *testing.T) {
	tests := []struct {
		name string
		typ  DataType
		a, b Value
		want int
	}{
		{"int less", Integer, NewValue(int32(1)), NewValue(int32(2)), -1},
		{"int equal", Integer, NewValue(int32(7)), NewValue(int32(7)), 0},
		{"bigint greater", BigInt, NewValue(int64(10)), NewValue(int64(3)), 1},
		{"double less", Double, NewValue(1.5), NewValue(2.5), -1},
		{"text order", Text, NewValue("abc"), NewValue("abd"), -1},
		{"bool order", Boolean, NewValue(false), NewValue(true), -1},
		{"null sorts first", Integer, NewNullValue(), NewValue(int32(0)), -1},
		{"null equals null", Text, NewNullValue(), NewNullValue(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !Integer.IsValid(NewValue(int32(1))) {
		t.Error("int32 should be valid for INTEGER")
	}
	if Integer.IsValid(NewValue("oops")) {
		t.Error("string should not be valid for INTEGER")
	}
	if !Integer.IsValid(NewNullValue()) {
		t.Error("NULL should be valid for any type")
	}
	if !Timestamp.IsValid(NewValue(time.Now())) {
		t.Error("time.Time should be valid for TIMESTAMP")
	}
}

func TestCompositeCompare(t *testing.T) {
	arr := Array(Integer)
	a := NewValue([]Value{NewValue(int32(1)), NewValue(int32(2))})
	b := NewValue([]Value{NewValue(int32(1)), NewValue(int32(3))})
	if got := arr.Compare(a, b); got != -1 {
		t.Errorf("array compare = %d, want -1", got)
	}

	shorter := NewValue([]Value{NewValue(int32(1))})
	if got := arr.Compare(shorter, a); got != -1 {
		t.Errorf("prefix array should sort first, got %d", got)
	}

	row := Row(Integer, Text)
	r1 := NewValue([]Value{NewValue(int32(1)), NewValue("x")})
	r2 := NewValue([]Value{NewValue(int32(1)), NewValue("y")})
	if got := row.Compare(r1, r2); got != -1 {
		t.Errorf("row compare = %d, want -1", got)
	}
}

func TestHasherAgreesWithEquality(t *testing.T) {
	tests := []struct {
		name string
		typ  DataType
		a, b Value
	}{
		{"bigint", BigInt, NewValue(int64(42)), NewValue(int64(42))},
		{"text", Text, NewValue("hello"), NewValue("hello")},
		{"negative zero double", Double, NewValue(0.0), NewValue(-0.0)},
		{"array", Array(Integer),
			NewValue([]Value{NewValue(int32(1)), NewValue(int32(2))}),
			NewValue([]Value{NewValue(int32(1)), NewValue(int32(2))})},
		{"row", Row(Integer, Text),
			NewValue([]Value{NewValue(int32(1)), NewValue("a")}),
			NewValue([]Value{NewValue(int32(1)), NewValue("a")})},
		{"null", Integer, NewNullValue(), NewNullValue()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HasherFor(tt.typ)
			if h(tt.a) != h(tt.b) {
				t.Errorf("equal values must hash equally")
			}
		})
	}
}

func TestHasherDistinguishes(t *testing.T) {
	h := HasherFor(Text)
	if h(NewValue("a")) == h(NewValue("b")) {
		t.Error("distinct strings should hash differently")
	}
	if h(NewValue("a")) == h(NewNullValue()) {
		t.Error("NULL should hash differently from values")
	}
}

func TestHasherReused(t *testing.T) {
	// Same type name must resolve to one cached hasher.
	h1 := HasherFor(Array(Integer))
	h2 := HasherFor(Array(Integer))
	v := NewValue([]Value{NewValue(int32(9))})
	if h1(v) != h2(v) {
		t.Error("hashers for the same type must agree")
	}
}
