package sat

import (
	"fmt"
	"strings"

	"github.com/crillab/gophercp/search"
)

// A Problem is a list of clauses and pseudo-boolean constraints over
// variables numbered from 1 to NbVars, with an optional cost function to
// minimize. Literals are DIMACS integers.
type Problem struct {
	NbVars     int           // Total nb of vars
	NbOrig     int           // Vars above NbOrig are relax vars added by ParseWCNF; 0 if there are none
	Clauses    [][]int       // List of propositional clauses
	Constrs    []PBConstr    // List of PB constraints that are not clauses
	Status     search.Status // Unsat if the problem is trivially UNSAT, Indet otherwise
	MinLits    []int         // For an optimization problem, list of lits to minimize
	MinWeights []int         // For an optimization problem, weight of each MinLit
}

// ParseSlice parse a slice of slice of lits and returns the equivalent problem.
// The argument is supposed to be a well-formed CNF.
func ParseSlice(cnf [][]int) *Problem {
	var pb Problem
	for _, line := range cnf {
		if len(line) == 0 {
			pb.Status = search.Unsat
			return &pb
		}
		lits := make([]int, len(line))
		for i, val := range line {
			if val == 0 {
				panic("null literal in clause")
			}
			lits[i] = val
		}
		pb.add(PropClause(lits...))
	}
	return &pb
}

// ParsePBConstrs parses and returns a PB problem from PBConstr values.
func ParsePBConstrs(constrs []PBConstr) *Problem {
	var pb Problem
	for _, constr := range constrs {
		pb.add(constr)
	}
	return &pb
}

// add appends a constraint to pb, updating NbVars and the status.
func (pb *Problem) add(c PBConstr) {
	for _, l := range c.Lits {
		if l == 0 {
			panic("literal 0 found in constraint")
		}
		if v := abs(l); v > pb.NbVars {
			pb.NbVars = v
		}
	}
	if c.AtLeast <= 0 { // Constraint is trivially SAT, ignore
		return
	}
	if c.WeightSum() < c.AtLeast { // Constraint cannot be satisfied
		pb.Status = search.Unsat
		return
	}
	if c.isClause() {
		pb.Clauses = append(pb.Clauses, c.Lits)
	} else {
		pb.Constrs = append(pb.Constrs, c)
	}
}

// SetCostFunc sets the function to minimize: the sum of the weights of the true lits.
// If weights is nil, all weights are 1.
func (pb *Problem) SetCostFunc(lits []int, weights []int) {
	if weights != nil && len(lits) != len(weights) {
		panic("not as many lits as weights")
	}
	pb.MinLits = lits
	pb.MinWeights = weights
	for _, l := range lits {
		if v := abs(l); v > pb.NbVars {
			pb.NbVars = v
		}
	}
}

// Optim returns true iff pb is an optimization problem, ie a problem
// for which we not only want to find a model, but also the best possible model
// according to an optimization constraint.
func (pb *Problem) Optim() bool {
	return pb.MinLits != nil
}

func (pb *Problem) minWeight(i int) int {
	if pb.MinWeights == nil {
		return 1
	}
	return pb.MinWeights[i]
}

// Cost returns the value of the cost function for the given model.
// model[i] is the binding of var i+1.
func (pb *Problem) Cost(model []bool) int {
	res := 0
	for i, l := range pb.MinLits {
		if model[abs(l)-1] == (l > 0) {
			res += pb.minWeight(i)
		}
	}
	return res
}

// String returns a representation of the problem in the OPB format.
func (pb *Problem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "* #variable= %d #constraint= %d\n", pb.NbVars, len(pb.Clauses)+len(pb.Constrs))
	if pb.Optim() {
		b.WriteString("min:")
		for i, l := range pb.MinLits {
			fmt.Fprintf(&b, " %+d %s", pb.minWeight(i), opbLit(l))
		}
		b.WriteString(" ;\n")
	}
	for _, c := range pb.Clauses {
		for _, l := range c {
			fmt.Fprintf(&b, "+1 %s ", opbLit(l))
		}
		b.WriteString(">= 1 ;\n")
	}
	for _, c := range pb.Constrs {
		for i, l := range c.Lits {
			fmt.Fprintf(&b, "%+d %s ", c.weight(i), opbLit(l))
		}
		fmt.Fprintf(&b, ">= %d ;\n", c.AtLeast)
	}
	return b.String()
}

func opbLit(l int) string {
	if l < 0 {
		return fmt.Sprintf("~x%d", -l)
	}
	return fmt.Sprintf("x%d", l)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
