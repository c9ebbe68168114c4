package sat

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gophercp/search"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// satisfies returns true if model satisfies every constraint of pb.
func satisfies(pb *Problem, model []bool) bool {
	val := func(l int) bool { return model[abs(l)-1] == (l > 0) }
	for _, c := range pb.Clauses {
		ok := false
		for _, l := range c {
			ok = ok || val(l)
		}
		if !ok {
			return false
		}
	}
	for _, c := range pb.Constrs {
		sum := 0
		for i, l := range c.Lits {
			if val(l) {
				sum += c.weight(i)
			}
		}
		if sum < c.AtLeast {
			return false
		}
	}
	return true
}

func TestEngineLevels(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}})
	e := New(pb, WithLogger(quietLogger()))
	assert.True(t, e.Consistency())

	e.PushLevel()
	e.Assign(1)
	assert.True(t, e.Consistency())
	assert.True(t, e.Var(2).Assigned())
	assert.Equal(t, 1, e.Var(2).Value())
	e.PopLevel()
	assert.False(t, e.Var(2).Assigned())

	e.PushLevel()
	e.Var(2).Force(0)
	e.PushLevel()
	assert.Equal(t, 2, e.Level())
	assert.False(t, e.Consistency())
	e.PopLevel()
	assert.False(t, e.Consistency())
	e.PopLevel()
	assert.Equal(t, 0, e.Level())
	assert.True(t, e.Consistency())

	e.Assign(-2)
	assert.False(t, e.Consistency(), "unit clause at level 0 is permanent")
}

func TestEnginePopWithoutPush(t *testing.T) {
	e := New(ParseSlice([][]int{{1}}), WithLogger(quietLogger()))
	assert.Panics(t, func() { e.PopLevel() })
}

func TestPropClause(t *testing.T) {
	pb := ParsePBConstrs([]PBConstr{
		PropClause(1, 2, 3),
		PropClause(-1, -2),
		PropClause(-2, -3),
		PropClause(-1, -3),
		PropClause(2),
	})
	s := NewSearch(New(pb, WithLogger(quietLogger())))
	require.True(t, s.Labeling(InputOrder(pb)))
	assert.Equal(t, []bool{false, true, false}, s.Model())
}

func TestAtMostAtLeast(t *testing.T) {
	pb := ParsePBConstrs([]PBConstr{
		PropClause(1, 2, 3),
		AtMost([]int{1, 2, 3}, 1),
		{Lits: []int{-1, -3}, AtLeast: 2},
	})
	s := NewSearch(New(pb, WithLogger(quietLogger())))
	require.True(t, s.Labeling(InputOrder(pb)))
	assert.Equal(t, []bool{false, true, false}, s.Model())
}

// pigeons returns the problem of putting n pigeons in n-1 holes.
func pigeons(n int) *Problem {
	v := func(p, h int) int { return p*(n-1) + h + 1 }
	var constrs []PBConstr
	for p := 0; p < n; p++ {
		lits := make([]int, n-1)
		for h := range lits {
			lits[h] = v(p, h)
		}
		constrs = append(constrs, PropClause(lits...))
	}
	for h := 0; h < n-1; h++ {
		lits := make([]int, n)
		for p := range lits {
			lits[p] = v(p, h)
		}
		constrs = append(constrs, AtMost(lits, 1))
	}
	return ParsePBConstrs(constrs)
}

func TestPigeons(t *testing.T) {
	pb := pigeons(4)
	e := New(pb, WithLogger(quietLogger()))
	s := NewSearch(e)
	assert.False(t, s.Labeling(InputOrder(pb)))
	assert.Greater(t, s.Stats.NbFails, 0)
	assert.Nil(t, s.Model())
	assert.Equal(t, 0, e.Level())
}

func TestUnsatAfterRefutedBranch(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {1, -2}, {-1, 2}, {-1, -2}})
	e := New(pb, WithLogger(quietLogger()))
	assert.True(t, e.Consistency())

	e.PushLevel()
	e.Assign(-1)
	assert.False(t, e.Consistency())
	e.PopLevel()
	e.PushLevel()
	e.Assign(1)
	assert.False(t, e.Consistency())
	e.PopLevel()

	s := NewSearch(e)
	assert.False(t, s.Labeling(InputOrder(pb)))
	assert.Nil(t, s.Model())
	assert.Equal(t, 2, s.Stats.NbFails)
	assert.Equal(t, 0, e.Level())
}

func TestPermanentConflict(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}})
	e := New(pb, WithLogger(quietLogger()))
	e.Assign(-2)
	assert.False(t, e.Consistency())
	e.PushLevel()
	e.Assign(1)
	assert.False(t, e.Consistency())
	e.PopLevel()
	assert.False(t, NewSearch(e).Labeling(InputOrder(pb)))
}

func TestTrivialUnsat(t *testing.T) {
	pb := ParseSlice([][]int{{1}, {}})
	s := NewSearch(New(pb, WithLogger(quietLogger())))
	assert.False(t, s.Labeling(InputOrder(pb)))
}

// weighted returns a problem whose optimal cost is 1, with model 1 = true.
func weighted() *Problem {
	pb := ParseSlice([][]int{{1, 2, 3}})
	pb.SetCostFunc([]int{1, 2, 3}, []int{1, 2, 3})
	return pb
}

type clauseLog struct {
	added   map[int][]int
	removed []int
	model   []bool
}

func (l *clauseLog) ClauseAdded(lits []int, id int, model bool) {
	if l.added == nil {
		l.added = make(map[int][]int)
	}
	l.added[id] = lits
	l.model = append(l.model, model)
}

func (l *clauseLog) ClauseRemoved(id int) { l.removed = append(l.removed, id) }

func TestBranchAndBound(t *testing.T) {
	pb := weighted()
	l := &clauseLog{}
	e := New(pb, WithLogger(quietLogger()), WithClauseListener(l))
	require.NotNil(t, e.Cost())
	s := NewSearch(e)
	var costs []int
	s.Solutions().OnSolution(func() { costs = append(costs, e.Cost().Value()) })
	require.True(t, s.LabelingCost(CostFirst(pb), search.IntCost(e.Cost())))
	require.NotEmpty(t, costs)
	for i := 1; i < len(costs); i++ {
		assert.Less(t, costs[i], costs[i-1])
	}
	assert.Equal(t, 1, costs[len(costs)-1])
	assert.Equal(t, []bool{true, false, false}, s.Model())
	assert.Equal(t, 0, e.Level())

	assert.Equal(t, []int{1, 2, 3}, l.added[1], "problem clause first")
	for _, id := range l.removed {
		require.Contains(t, l.added, id)
		for _, lit := range l.added[id] {
			assert.Greater(t, abs(lit), pb.NbVars, "bounds are expressed on encoding vars")
		}
	}
	for _, m := range l.model {
		assert.True(t, m)
	}
}

func TestCostFirstOrder(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2, 3, 4}})
	pb.SetCostFunc([]int{3, -1}, []int{2, -5})
	assert.Equal(t, Order{-3, -1, -2, -4}, CostFirst(pb))
	assert.Equal(t, Order{-1, -2, -3, -4}, InputOrder(pb))
}

func TestCostBoundAtLevel0IsPermanent(t *testing.T) {
	pb := weighted()
	l := &clauseLog{}
	e := New(pb, WithLogger(quietLogger()))
	e.AddClauseListener(l)
	e.Cost().PostLess(2)
	assert.Len(t, l.added, 1)
	assert.Empty(t, l.removed)
	s := NewSearch(e)
	require.True(t, s.Labeling(InputOrder(pb)))
	assert.Equal(t, []bool{true, false, false}, s.Model())
	e.Cost().PostLess(1)
	assert.False(t, NewSearch(e).Labeling(InputOrder(pb)))
}

func TestAssignSolutionAboveLevel0(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, -2}})
	e := New(pb, WithLogger(quietLogger()))
	s := NewSearch(e)
	e.PushLevel()
	require.True(t, s.Labeling(InputOrder(pb)))
	assert.Equal(t, 1, e.Level())
	assert.True(t, e.Var(1).Assigned())
	assert.True(t, e.Var(2).Assigned())
	e.PopLevel()
	assert.False(t, e.Var(1).Assigned())
}

type stopAfter struct{ fails, limit int }

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
	pb := pigeons(4)
	e := New(pb, WithLogger(quietLogger()))
	s := NewSearch(e)
	l := &stopAfter{limit: 1}
	s.AddConsistencyListener(l)
	j := &jumps{}
	s.AddBackjumpListener(j)
	assert.False(t, s.Labeling(InputOrder(pb)))
	assert.Equal(t, 1, l.fails)
	assert.Equal(t, 0, e.Level())
	require.Len(t, j.from, 1)
	assert.Greater(t, j.from[0], 1)
	assert.Equal(t, 0, j.to[0])
}

func TestRestartOverEngine(t *testing.T) {
	pb := weighted()
	e := New(pb, WithLogger(quietLogger()))
	s := NewSearch(e)
	c := search.New[Order](e, s, InputOrder(pb), search.NewLuby(1),
		search.WithCost(search.IntCost(e.Cost())),
		search.WithLogger(quietLogger()))
	assert.True(t, c.Labeling(context.Background()))
	assert.Equal(t, 1, c.Best().BestInt())
	assert.Equal(t, 0, e.Level())
	assert.Greater(t, c.Stats.NbAttempts, 0)
}

func TestRestartWithRelax(t *testing.T) {
	pb := pigeons(3)
	pb.Clauses = nil // Pigeons may stay out of the holes
	pb.SetCostFunc(InputOrder(pb), nil)
	e := New(pb, WithLogger(quietLogger()))
	s := NewSearch(e)
	c := search.New[Order](e, s, CostFirst(pb), search.NewGeometric(1.5, 2),
		search.WithCost(search.IntCost(e.Cost())),
		search.WithRelax(e.Vars(), 50),
		search.WithRestartLimit(50),
		search.WithLogger(quietLogger()))
	c.Labeling(context.Background())
	require.True(t, c.Best().Found())
	assert.Equal(t, len(pb.MinLits)-2, c.Best().BestInt(), "two pigeons are placed")
	assert.Equal(t, 0, e.Level())
	require.NotNil(t, s.Model())
	assert.True(t, satisfies(pb, s.Model()))
}
