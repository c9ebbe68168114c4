package maxsat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gophercp/search"
)

func quiet(pb *Problem) *Problem {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	pb.SetLogger(l)
	return pb
}

func TestHardSoft(t *testing.T) {
	x := Var("x")
	hard := HardClause(x)
	soft := SoftClause(x.Negation())

	model, cost := quiet(New(hard, soft)).Solve()
	require.NotNil(t, model)
	assert.Equal(t, Model{"x": true}, model)
	assert.Equal(t, 1, cost)
}

func TestUnsat(t *testing.T) {
	pb := quiet(New(
		HardClause(Var("a"), Var("b"), Var("c")),
		HardClause(Var("a"), Var("b"), Not("c")),
		HardClause(Var("a"), Not("b"), Var("c")),
		HardClause(Var("a"), Not("b"), Not("c")),
		HardClause(Not("a"), Var("b"), Var("c")),
		HardClause(Not("a"), Var("b"), Not("c")),
		HardClause(Not("a"), Not("b"), Var("c")),
		HardClause(Not("a"), Not("b"), Not("c")),
	))
	model, cost := pb.Solve()
	assert.Nil(t, model)
	assert.Equal(t, -1, cost)
}

func TestSat(t *testing.T) {
	pb := quiet(New(
		HardClause(Var("a"), Var("b"), Var("c")),
		HardClause(Var("a"), Var("b"), Not("c")),
		HardClause(Var("a"), Not("b"), Var("c")),
		HardClause(Var("a"), Not("b"), Not("c")),
		HardClause(Not("a"), Var("b"), Var("c")),
		HardClause(Not("a"), Var("b"), Not("c")),
		HardClause(Not("a"), Not("b"), Not("c")),
	))
	model, cost := pb.Solve()
	require.NotNil(t, model)
	assert.Equal(t, Model{"a": true, "b": true, "c": false}, model)
	assert.Equal(t, 0, cost)
}

func optimProblem() *Problem {
	return quiet(New(
		HardClause(Var("a"), Var("b"), Var("c")),
		HardPBConstr([]Lit{Not("a"), Not("b"), Not("c")}, []int{1, 1, 1}, 2),
		SoftPBConstr([]Lit{Var("a"), Var("b"), Var("c")}, []int{1, 1, 1}, 2),
		WeightedClause([]Lit{Not("a"), Var("d")}, 2),
		WeightedPBConstr([]Lit{Var("b"), Var("c"), Var("d")}, []int{1, 1, 1}, 2, 3),
		SoftClause(Not("c"), Not("d")),
	))
}

func TestOptim(t *testing.T) {
	pb := optimProblem()
	assert.Equal(t, 7, pb.MaxCost())
	model, cost := pb.Solve()
	require.NotNil(t, model)
	assert.Equal(t, Model{"a": false, "b": true, "c": false, "d": true}, model)
	assert.Equal(t, 1, cost)
}

func TestVerboseReportsCosts(t *testing.T) {
	pb := optimProblem()
	l, hook := test.NewNullLogger()
	pb.SetLogger(l)
	pb.SetVerbose(true)
	_, cost, optimal := pb.SolveContext(context.Background())
	assert.True(t, optimal)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "new best cost", entry.Message)
	assert.Equal(t, cost, entry.Data["cost"])
}

func TestSoftCardinality(t *testing.T) {
	// At least two of a, b, c, but a and b are incompatible and c is forbidden.
	pb := quiet(New(
		WeightedPBConstr([]Lit{Var("a"), Var("b"), Var("c")}, nil, 2, 5),
		HardClause(Not("a"), Not("b")),
		HardClause(Not("c")),
		SoftClause(Not("a")),
	))
	model, cost := pb.Solve()
	require.NotNil(t, model)
	assert.Equal(t, 5, cost)
	assert.False(t, model["a"])
}

func TestSolveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pb := optimProblem()
	model, cost, optimal := pb.SolveContext(ctx, search.WithRestartLimit(-1), search.WithTimeout(time.Hour))
	assert.False(t, optimal)
	if model != nil {
		assert.GreaterOrEqual(t, cost, 1)
	}
}

// A coord is the coordinates for a city in a TSP problem.
type coord struct {
	line int
	col  int
}

// generateTSP generates a representation for the TSP problem, starting from city 0.
func generateTSP(coords []coord) []Constr {
	var constrs []Constr
	nbCities := len(coords)
	distTo := make([][]int, nbCities)
	for i := range distTo {
		distTo[i] = make([]int, nbCities)
		for j := 0; j < nbCities; j++ {
			if j != i {
				distLine := coords[i].line - coords[j].line
				if distLine < 0 {
					distLine = -distLine
				}
				distCol := coords[i].col - coords[j].col
				if distCol < 0 {
					distCol = -distCol
				}
				distTo[i][j] = distLine + distCol // Manhattan distance
			}
		}
	}
	format := "city-%d-step-%d"
	for i := range coords {
		lits := make([]Lit, nbCities)
		negs := make([]Lit, nbCities)
		for j := range coords {
			lits[j] = Var(fmt.Sprintf(format, i, j))
			negs[j] = Not(fmt.Sprintf(format, j, i))
		}
		constrs = append(constrs, HardClause(lits...))                 // Each city is visited at least once
		constrs = append(constrs, HardPBConstr(negs, nil, nbCities-1)) // At each step, at most one city is visited
	}
	for i := 0; i < nbCities-1; i++ {
		for j := i + 1; j < nbCities; j++ {
			for step := 0; step < nbCities-1; step++ {
				// at any step, going from i to j or from j to i has a cost equal to the distance
				constrs = append(constrs, WeightedClause([]Lit{Not(fmt.Sprintf(format, i, step)), Not(fmt.Sprintf(format, j, step+1))}, distTo[i][j]))
				constrs = append(constrs, WeightedClause([]Lit{Not(fmt.Sprintf(format, i, step+1)), Not(fmt.Sprintf(format, j, step))}, distTo[i][j]))
			}
		}
	}
	constrs = append(constrs, HardClause(Var(fmt.Sprintf(format, 0, 0))))
	return constrs
}

func TestTSP(t *testing.T) {
	coords := []coord{{0, 0}, {0, 2}, {0, 1}, {0, 3}}
	model, cost := quiet(New(generateTSP(coords)...)).Solve()
	require.NotNil(t, model)
	assert.Equal(t, 3, cost)
	for _, step := range []struct{ city, step int }{{0, 0}, {2, 1}, {1, 2}, {3, 3}} {
		assert.True(t, model[fmt.Sprintf("city-%d-step-%d", step.city, step.step)])
	}
}

func BenchmarkTSP(b *testing.B) {
	coords := []coord{{0, 0}, {1, 2}, {3, 1}, {2, 3}, {4, 0}}
	for i := 0; i < b.N; i++ {
		New(generateTSP(coords)...).Solve()
	}
}
