package testutil

import (
	"math"
	"reflect"
	"testing"
)

// AssertEqual checks if two values are equal.
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertNoError checks that error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError checks that error is not nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertTrue checks that condition is true.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse checks that condition is false.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// FloatsEqual reports whether two floats are equal, treating NaN as equal to
// NaN. Infinities compare by sign. Statistics use NaN to encode "unknown",
// so plain == comparison does not work in estimator tests.
func FloatsEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// AssertFloatEqual checks exact float equality with NaN treated as a value.
func AssertFloatEqual(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	if !FloatsEqual(expected, actual) {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertFloatNear checks float equality within an absolute tolerance.
// NaN expected matches only NaN actual.
func AssertFloatNear(t *testing.T, expected, actual, tolerance float64, msg string) {
	t.Helper()
	if math.IsNaN(expected) || math.IsNaN(actual) {
		if !FloatsEqual(expected, actual) {
			t.Errorf("%s: expected %v, got %v", msg, expected, actual)
		}
		return
	}
	if math.Abs(expected-actual) > tolerance {
		t.Errorf("%s: expected %v, got %v (tolerance %v)", msg, expected, actual, tolerance)
	}
}
