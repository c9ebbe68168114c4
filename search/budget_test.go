package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLuby(t *testing.T) {
	vals := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, 1, 1, 2, 1, 1, 2, 4}
	for i, val := range vals {
		if luby(i+1) != val {
			t.Errorf("invalid luby term luby(%d): expected %d, got %d", i+1, val, luby(i+1))
		}
	}
}

func TestLubyPowersOfTwo(t *testing.T) {
	for k := 1; k < 20; k++ {
		i := (1 << k) - 1
		assert.Equal(t, 1<<(k-1), luby(i), "luby(%d)", i)
	}
}

func limits(b Budget, n int) []int {
	res := make([]int, n)
	for i := range res {
		b.NewLimit()
		res[i] = b.Limit()
	}
	return res
}

func TestGeometricLimits(t *testing.T) {
	g := NewGeometric(2.0, 10)
	assert.Equal(t, 10, g.Limit())
	if diff := cmp.Diff([]int{20, 40, 80, 160}, limits(g, 4)); diff != "" {
		t.Errorf("unexpected ceilings (-want +got):\n%s", diff)
	}
}

func TestLubyLimits(t *testing.T) {
	l := NewLuby(100)
	assert.Equal(t, 100, l.Limit())
	if diff := cmp.Diff([]int{100, 200, 100, 100, 200, 400, 100}, limits(l, 7)); diff != "" {
		t.Errorf("unexpected ceilings (-want +got):\n%s", diff)
	}
}

func TestBudgetClamping(t *testing.T) {
	assert.Equal(t, 1, NewLuby(0).Limit())
	g := NewGeometric(0.5, -3)
	assert.Equal(t, 1, g.Limit())
	g.NewLimit()
	assert.Equal(t, 1, g.Limit())
}

func TestBudgetCountsFails(t *testing.T) {
	g := NewGeometric(2, 3)
	assert.True(t, g.AfterConsistency(true))
	assert.True(t, g.AfterConsistency(false))
	assert.True(t, g.AfterConsistency(false))
	assert.False(t, g.Exhausted())
	assert.False(t, g.AfterConsistency(false))
	assert.True(t, g.Exhausted())
	assert.Equal(t, 3, g.Fails())
	assert.False(t, g.AfterConsistency(true), "an exhausted budget keeps asking to stop")

	g.NewLimit()
	assert.Equal(t, 0, g.Fails())
	assert.Equal(t, 6, g.Limit())
	assert.False(t, g.Exhausted())
}
