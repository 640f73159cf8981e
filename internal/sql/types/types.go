package types

import (
	"fmt"
)

// DataType represents a SQL data type.
type DataType interface {
	// Name returns the SQL name of the type (e.g., "INTEGER", "DOUBLE").
	// Names are unique and identify the type.
	Name() string

	// Size returns the storage size in bytes (-1 for variable size).
	Size() int

	// Compare compares two values of this type.
	// Returns: -1 if a < b, 0 if a == b, 1 if a > b. NULL sorts first.
	Compare(a, b Value) int

	// IsValid checks if a value is valid for this type.
	IsValid(v Value) bool

	// Zero returns the zero value for this type.
	Zero() Value
}

// Value represents a SQL value that can be NULL.
type Value struct {
	Data interface{}
	Null bool
}

// NewValue creates a non-null value.
func NewValue(data interface{}) Value {
	return Value{Data: data, Null: false}
}

// NewNullValue creates a null value.
func NewNullValue() Value {
	return Value{Data: nil, Null: true}
}

// IsNull returns true if the value is NULL.
func (v Value) IsNull() bool {
	return v.Null
}

// String returns a string representation of the value.
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Data)
}

// AsBool returns the value as a boolean.
func (v Value) AsBool() (bool, error) {
	if v.Null {
		return false, fmt.Errorf("cannot convert NULL to bool")
	}
	if b, ok := v.Data.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("cannot convert %T to bool", v.Data)
}

// AsFloat returns the value as a float64, converting integer types.
func (v Value) AsFloat() (float64, error) {
	if v.Null {
		return 0, fmt.Errorf("cannot convert NULL to float")
	}
	switch val := v.Data.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	}
	return 0, fmt.Errorf("cannot convert %T to float", v.Data)
}

// IsNumeric reports whether the value holds a numeric Go representation.
func (v Value) IsNumeric() bool {
	if v.Null {
		return false
	}
	switch v.Data.(type) {
	case int32, int64, float64:
		return true
	}
	return false
}

// compareNulls handles NULL ordering shared by all types. The bool result
// reports whether the comparison was decided.
func compareNulls(a, b Value) (int, bool) {
	switch {
	case a.Null && b.Null:
		return 0, true
	case a.Null:
		return -1, true
	case b.Null:
		return 1, true
	}
	return 0, false
}
