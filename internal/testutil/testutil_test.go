package testutil

import (
	"math"
	"testing"
)

func TestFloatsEqual(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{1.0, 1.0, true},
		{1.0, 2.0, false},
		{math.NaN(), math.NaN(), true},
		{math.NaN(), 1.0, false},
		{math.Inf(1), math.Inf(1), true},
		{math.Inf(1), math.Inf(-1), false},
		{0.0, math.Copysign(0, -1), true},
	}
	for _, tt := range tests {
		if got := FloatsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("FloatsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
