package maxsat

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/crillab/gophercp/sat"
	"github.com/crillab/gophercp/search"
)

// A Model associates variable names with a binding.
type Model map[string]bool

// lubyScale is the fail budget unit of the restart schedule.
const lubyScale = 100

// A Problem is a set of constraints.
type Problem struct {
	pb        *sat.Problem
	intVars   map[string]int // for each var, its integer counterpart
	varInts   []string       // for each int value, the associated variable
	maxWeight int            // sum of the weights of all soft constraints
	verbose   bool
	log       logrus.FieldLogger
}

// New returns a new problem associated with the given constraints.
func New(constrs ...Constr) *Problem {
	pb := &Problem{intVars: make(map[string]int), log: logrus.StandardLogger()}
	clauses := make([]sat.PBConstr, len(constrs))
	var (
		optLits    []int
		optWeights []int
	)
	for i, constr := range constrs {
		lits := make([]int, len(constr.Lits))
		for j, lit := range constr.Lits {
			v := lit.Var
			if _, ok := pb.intVars[v]; !ok {
				pb.varInts = append(pb.varInts, v)
				pb.intVars[v] = len(pb.varInts)
			}
			lits[j] = pb.intVars[v]
			if lit.Negated {
				lits[j] = -lits[j]
			}
		}
		coeffs := constr.coeffs()
		if constr.Soft() { // Soft constraint: add blocking literal
			pb.varInts = append(pb.varInts, "") // Create new blocking lit
			bl := len(pb.varInts)
			pb.maxWeight += constr.Weight
			optLits = append(optLits, bl)
			optWeights = append(optWeights, constr.Weight)
			lits = append(lits, bl)
			if coeffs != nil { // If this is a clause, there is no explicit coeff
				coeffs = append(coeffs, blockCoeff(coeffs, constr.AtLeast))
			}
		}
		clauses[i] = sat.GtEq(lits, coeffs, constr.AtLeast)
	}
	pb.pb = sat.ParsePBConstrs(clauses)
	if pb.pb.NbVars < len(pb.varInts) {
		pb.pb.NbVars = len(pb.varInts)
	}
	if len(optLits) != 0 {
		pb.pb.SetCostFunc(optLits, optWeights)
	}
	return pb
}

// blockCoeff returns a coefficient big enough for a blocking literal to
// satisfy a constraint on its own, once negative coefficients are normalized.
func blockCoeff(coeffs []int, atLeast int) int {
	res := atLeast
	for _, c := range coeffs {
		if c < 0 {
			res -= c
		}
	}
	if res < 1 {
		return 1
	}
	return res
}

// MaxCost returns the cost of a model violating every soft constraint.
func (pb *Problem) MaxCost() int {
	return pb.maxWeight
}

// SetVerbose makes the problem log every improving model, or not.
func (pb *Problem) SetVerbose(verbose bool) {
	pb.verbose = verbose
}

// SetLogger sets the logger used by the solver.
func (pb *Problem) SetLogger(l logrus.FieldLogger) {
	pb.log = l
}

// Problem gives access to the sat.Problem the MAXSAT problem was translated to.
// Unless you have specific needs, you will usually not need to call this method,
// and rather want to call pb.Solve() instead.
func (pb *Problem) Problem() *sat.Problem {
	return pb.pb
}

// String returns the problem in the OPB format.
func (pb *Problem) String() string {
	return pb.pb.String()
}

// Solve returns an optimal Model for the problem and the associated cost.
// If the model is nil, the problem was not satisfiable (i.e hard clauses could not be satisfied).
func (pb *Problem) Solve() (Model, int) {
	model, cost, _ := pb.SolveContext(context.Background())
	return model, cost
}

// SolveContext is like Solve, but stops when ctx is done or when one of the
// limits set by opts is reached. It also returns whether the model is known
// to be optimal. The cost is -1 if no model was found.
func (pb *Problem) SolveContext(ctx context.Context, opts ...search.Option) (Model, int, bool) {
	e := sat.New(pb.pb, sat.WithLogger(pb.log))
	s := sat.NewSearch(e)
	base := []search.Option{search.WithLogger(pb.log)}
	if pb.pb.Optim() {
		cost := e.Cost()
		base = append(base, search.WithCost(search.IntCost(cost)))
		if pb.verbose {
			base = append(base, search.WithReport(func() {
				pb.log.WithField("cost", cost.Value()).Info("new best cost")
			}))
		}
	}
	c := search.New[sat.Order](e, s, sat.CostFirst(pb.pb), search.NewLuby(lubyScale), append(base, opts...)...)
	optimal := c.Labeling(ctx)
	if s.Model() == nil {
		return nil, -1, false
	}
	res := make(Model)
	for i, binding := range s.Model() {
		if i >= len(pb.varInts) {
			break
		}
		name := pb.varInts[i]
		if name != "" { // Ignore blocking lits
			res[name] = binding
		}
	}
	if !pb.pb.Optim() {
		return res, 0, optimal
	}
	return res, c.Best().BestInt(), optimal
}
