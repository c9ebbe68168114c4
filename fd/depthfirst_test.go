package fd

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gophercp/search"
)

// queens returns a store with the n-queens problem.
func queens(n int) (*Store, []*IntVar) {
	s := NewStore()
	qs := make([]*IntVar, n)
	for i := range qs {
		qs[i] = s.IntVar("", 0, n-1)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s.Impose(NotEqual(qs[i], qs[j]))
			s.Impose(&diagonal{x: qs[i], y: qs[j], d: i - j})
			s.Impose(&diagonal{x: qs[i], y: qs[j], d: j - i})
		}
	}
	return s, qs
}

// diagonal is the constraint x-y != d.
type diagonal struct {
	x, y *IntVar
	d    int
}

func (c *diagonal) Propagate() bool {
	if c.x.Singleton() && !c.y.Remove(c.x.Min()-c.d) {
		return false
	}
	if c.y.Singleton() && !c.x.Remove(c.y.Min()+c.d) {
		return false
	}
	return true
}

func checkQueens(t *testing.T, qs []*IntVar) {
	t.Helper()
	for i := range qs {
		require.True(t, qs[i].Singleton(), "queen %d not placed", i)
		for j := i + 1; j < len(qs); j++ {
			vi, vj := qs[i].Value(), qs[j].Value()
			assert.NotEqual(t, vi, vj)
			assert.NotEqual(t, vi-vj, i-j)
			assert.NotEqual(t, vi-vj, j-i)
		}
	}
}

func TestQueens(t *testing.T) {
	s, qs := queens(6)
	d := NewDepthFirst(s)
	assert.True(t, d.Labeling(NewSelector(qs, FirstFail, IndomainMin)))
	assert.Equal(t, 0, s.Level())
	checkQueens(t, qs)
	assert.Equal(t, 1, d.Solutions().Count())
}

func TestQueensNoSolution(t *testing.T) {
	s, qs := queens(3)
	d := NewDepthFirst(s)
	assert.False(t, d.Labeling(NewSelector(qs, InputOrder, IndomainMin)))
	assert.Equal(t, 0, s.Level())
	assert.Greater(t, d.Stats.NbFails, 0)
	assert.Nil(t, d.Solution())
}

// weighted returns a, b, c in 1..3, all different, and the cost 3a+2b+c.
func weighted() (*Store, []*IntVar, *IntVar) {
	s := NewStore()
	a, b, c := s.IntVar("a", 1, 3), s.IntVar("b", 1, 3), s.IntVar("c", 1, 3)
	cost := s.IntVar("cost", 0, 30)
	s.Impose(AllDifferent(a, b, c))
	s.Impose(Sum([]*IntVar{a, b, c}, []int{3, 2, 1}, cost))
	return s, []*IntVar{a, b, c}, cost
}

func TestBranchAndBound(t *testing.T) {
	s, vars, cost := weighted()
	d := NewDepthFirst(s)
	var costs []int
	d.Solutions().OnSolution(func() { costs = append(costs, cost.Value()) })
	assert.True(t, d.LabelingCost(NewSelector(vars, InputOrder, IndomainMax), search.IntCost(cost)))
	require.NotEmpty(t, costs)
	assert.Equal(t, 14, costs[0])
	assert.Equal(t, 10, costs[len(costs)-1])
	for i := 1; i < len(costs); i++ {
		assert.Less(t, costs[i], costs[i-1])
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, d.Solution())
	assert.Equal(t, 10, cost.Value(), "last solution assigned back")
}

func TestNoAssignSolution(t *testing.T) {
	s, vars, _ := weighted()
	d := NewDepthFirst(s)
	d.SetAssignSolution(false)
	assert.True(t, d.Labeling(NewSelector(vars, InputOrder, IndomainMin)))
	for _, v := range vars {
		assert.Equal(t, 3, v.Size())
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, d.Solution())
}

type stopAfter struct {
	fails int
	limit int
}

func (l *stopAfter) AfterConsistency(ok bool) bool {
	if !ok {
		l.fails++
	}
	return l.fails < l.limit
}

type jumps struct{ from, to []int }

func (j *jumps) Backjump(oldLevel, newLevel int) {
	j.from = append(j.from, oldLevel)
	j.to = append(j.to, newLevel)
}
func (j *jumps) Restart(int) {}

func TestAbortOnListener(t *testing.T) {
	s, qs := queens(3)
	d := NewDepthFirst(s)
	l := &stopAfter{limit: 1}
	d.AddConsistencyListener(l)
	j := &jumps{}
	d.AddBackjumpListener(j)
	assert.False(t, d.Labeling(NewSelector(qs, InputOrder, IndomainMin)))
	assert.Equal(t, 1, l.fails)
	assert.Equal(t, 0, s.Level())
	require.Len(t, j.from, 1)
	assert.Greater(t, j.from[0], 1)
	assert.Equal(t, 0, j.to[0])
}

func TestChildSearch(t *testing.T) {
	s := NewStore()
	x := s.IntVar("x", 0, 3)
	y := s.IntVar("y", 0, 3)
	s.Impose(LessThan(y, x))
	parent := NewDepthFirst(s)
	kid := NewDepthFirst(s)
	parent.AddChild(kid, NewSelector([]*IntVar{y}, InputOrder, IndomainMax))
	assert.Equal(t, []search.Handle{kid}, parent.Children())
	assert.True(t, parent.Labeling(NewSelector([]*IntVar{x}, InputOrder, IndomainMin)))
	assert.Equal(t, map[string]int{"x": 1, "y": 0}, parent.Solution())
	assert.Greater(t, kid.Stats.NbNodes, 0)
}

func TestSolutionLimitStopsBranchAndBound(t *testing.T) {
	s, vars, cost := weighted()
	d := NewDepthFirst(s)
	d.Solutions().SetLimit(1)
	assert.True(t, d.LabelingCost(NewSelector(vars, InputOrder, IndomainMax), search.IntCost(cost)))
	assert.Equal(t, 1, d.Solutions().Count())
	assert.Equal(t, 14, cost.Value())
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRestartOverQueens(t *testing.T) {
	s, qs := queens(8)
	d := NewDepthFirst(s)
	sel := NewSelector(qs, InputOrder, IndomainRandom)
	c := search.New[*Selector](s, d, sel, search.NewLuby(1), search.WithLogger(quietLogger()))
	assert.True(t, c.Labeling(context.Background()))
	assert.Equal(t, 0, s.Level())
	assert.Equal(t, 1, c.Stats.NbSolutions)
	sol := d.Solution()
	require.Len(t, sol, 8)
}

func TestRestartOptimization(t *testing.T) {
	s := NewStore()
	xs := make([]*IntVar, 5)
	for i := range xs {
		xs[i] = s.IntVar("", 1, 8)
	}
	s.Impose(AllDifferent(xs...))
	for i := 0; i+1 < len(xs); i++ {
		s.Impose(NotEqual(xs[i], xs[i+1]))
	}
	cost := s.IntVar("cost", 0, 100)
	s.Impose(Sum(xs, []int{5, 4, 3, 2, 1}, cost))
	d := NewDepthFirst(s)
	var costs []int
	relax := make([]search.Relaxable, len(xs))
	for i, x := range xs {
		relax[i] = x
	}
	c := search.New[*Selector](s, d, NewSelector(xs, InputOrder, IndomainMax), search.NewGeometric(1.5, 3),
		search.WithCost(search.IntCost(cost)),
		search.WithRelax(relax, 30),
		search.WithSeed(3),
		search.WithRestartLimit(500),
		search.WithReport(func() { costs = append(costs, cost.Value()) }),
		search.WithLogger(quietLogger()))
	c.Labeling(context.Background())
	assert.Equal(t, 0, s.Level())
	require.NotEmpty(t, costs)
	for i := 1; i < len(costs); i++ {
		assert.Less(t, costs[i], costs[i-1])
	}
	assert.Equal(t, costs[len(costs)-1], c.Best().BestInt())
	// 5*1+4*2+3*3+2*4+1*5 is optimal. A relaxed attempt may stop on a
	// solution that is only optimal in its neighbourhood.
	assert.GreaterOrEqual(t, c.Best().BestInt(), 35)
}

func TestRestartRealCost(t *testing.T) {
	s := NewStore()
	x := s.IntVar("x", 0, 4)
	y := s.IntVar("y", 0, 4)
	s.Impose(Linear([]*IntVar{x, y}, []int{1, 1}, Geq, 3))
	f := s.FloatVar("f", -100, 100)
	s.Impose(Scale([]*IntVar{x, y}, []float64{0.7, 0.3}, f))
	d := NewDepthFirst(s)
	c := search.New[*Selector](s, d, NewSelector([]*IntVar{x, y}, InputOrder, IndomainMax), search.NewLuby(10),
		search.WithCost(search.RealCost(f)), search.WithLogger(quietLogger()))
	assert.True(t, c.Labeling(context.Background()))
	assert.InDelta(t, 0.9, c.Best().BestReal(), 1e-9)
}
