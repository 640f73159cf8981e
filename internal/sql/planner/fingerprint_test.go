package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanFingerprintDistinguishesConstants(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	scan := testScan(ids, "src", a)

	five := planFingerprint(NewFilterNode(ids.Next(), scan, greaterThan(a, 5)))
	six := planFingerprint(NewFilterNode(ids.Next(), scan, greaterThan(a, 6)))
	assert.NotEqual(t, five, six)
}

func TestPlanFingerprintIgnoresNodeIDs(t *testing.T) {
	ids := NewPlanNodeIDAllocator()
	a := NewSymbol("a")
	first := NewFilterNode(ids.Next(), testScan(ids, "src", a), greaterThan(a, 5))
	second := NewFilterNode(ids.Next(), testScan(ids, "src", a), greaterThan(a, 5))

	assert.Equal(t, planFingerprint(first), planFingerprint(second))
}
