package fd

import "github.com/pkg/errors"

// An Op is the relation of a linear constraint.
type Op int

const (
	// Eq means the sum must equal the right-hand side.
	Eq Op = iota
	// Leq means the sum must be at most the right-hand side.
	Leq
	// Geq means the sum must be at least the right-hand side.
	Geq
)

// ParseOp returns the Op for "=", "==", "<=" or ">=".
func ParseOp(s string) (Op, error) {
	switch s {
	case "=", "==":
		return Eq, nil
	case "<=":
		return Leq, nil
	case ">=":
		return Geq, nil
	default:
		return 0, errors.Errorf("invalid operator %q: expected \"=\", \"<=\" or \">=\"", s)
	}
}

type notEqual struct{ x, y *IntVar }

// NotEqual returns the constraint x != y.
func NotEqual(x, y *IntVar) Constraint { return &notEqual{x, y} }

func (c *notEqual) Propagate() bool {
	if c.x.Singleton() && !c.y.Remove(c.x.Min()) {
		return false
	}
	if c.y.Singleton() && !c.x.Remove(c.y.Min()) {
		return false
	}
	return true
}

type lessThan struct{ x, y *IntVar }

// LessThan returns the constraint x < y.
func LessThan(x, y *IntVar) Constraint { return &lessThan{x, y} }

func (c *lessThan) Propagate() bool {
	return c.x.SetMax(c.y.Max()-1) && c.y.SetMin(c.x.Min()+1)
}

type allDifferent struct{ xs []*IntVar }

// AllDifferent returns the constraint stating all xs take different values.
func AllDifferent(xs ...*IntVar) Constraint { return &allDifferent{xs} }

func (c *allDifferent) Propagate() bool {
	for i, x := range c.xs {
		if !x.Singleton() {
			continue
		}
		for j, y := range c.xs {
			if i != j && !y.Remove(x.Min()) {
				return false
			}
		}
	}
	union := make(map[int]struct{})
	for _, x := range c.xs {
		for _, val := range x.Values() {
			union[val] = struct{}{}
		}
	}
	return len(union) >= len(c.xs)
}

type linear struct {
	xs     []*IntVar
	coeffs []int
	op     Op
	rhs    int
}

// Linear returns the constraint sum(coeffs[i]*xs[i]) op rhs.
// It panics if xs and coeffs do not have the same length.
func Linear(xs []*IntVar, coeffs []int, op Op, rhs int) Constraint {
	if len(xs) != len(coeffs) {
		panic("not as many coeffs as vars")
	}
	return &linear{xs: xs, coeffs: coeffs, op: op, rhs: rhs}
}

// Sum returns the constraint sum(coeffs[i]*xs[i]) = total.
func Sum(xs []*IntVar, coeffs []int, total *IntVar) Constraint {
	vars := append(append([]*IntVar(nil), xs...), total)
	cs := append(append([]int(nil), coeffs...), -1)
	return Linear(vars, cs, Eq, 0)
}

func (c *linear) Propagate() bool {
	if c.op != Geq && !c.leq(1, c.rhs) {
		return false
	}
	if c.op != Leq && !c.leq(-1, -c.rhs) {
		return false
	}
	return true
}

// leq enforces sum(sign*coeffs[i]*xs[i]) <= rhs by bounds reasoning.
func (c *linear) leq(sign, rhs int) bool {
	minSum := 0
	for i, x := range c.xs {
		minSum += termMin(sign*c.coeffs[i], x)
	}
	if minSum > rhs {
		return false
	}
	for i, x := range c.xs {
		a := sign * c.coeffs[i]
		if a == 0 {
			continue
		}
		slack := rhs - (minSum - termMin(a, x))
		if a > 0 {
			if !x.SetMax(floorDiv(slack, a)) {
				return false
			}
		} else if !x.SetMin(ceilDiv(slack, a)) {
			return false
		}
	}
	return true
}

func termMin(a int, x *IntVar) int {
	if a >= 0 {
		return a * x.Min()
	}
	return a * x.Max()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

type scale struct {
	xs     []*IntVar
	coeffs []float64
	total  *FloatVar
}

// Scale returns the constraint sum(coeffs[i]*xs[i]) = total, total being real-valued.
// Only the bounds of total are pruned.
func Scale(xs []*IntVar, coeffs []float64, total *FloatVar) Constraint {
	if len(xs) != len(coeffs) {
		panic("not as many coeffs as vars")
	}
	return &scale{xs: xs, coeffs: coeffs, total: total}
}

func (c *scale) Propagate() bool {
	lo, hi := 0.0, 0.0
	for i, x := range c.xs {
		a := c.coeffs[i]
		if a >= 0 {
			lo += a * float64(x.Min())
			hi += a * float64(x.Max())
		} else {
			lo += a * float64(x.Max())
			hi += a * float64(x.Min())
		}
	}
	return c.total.SetMin(lo) && c.total.SetMax(hi)
}

type xLessC struct {
	x *IntVar
	c int
}

func (c *xLessC) Propagate() bool { return c.x.SetMax(c.c - 1) }

type fLessEqC struct {
	x *FloatVar
	c float64
}

func (c *fLessEqC) Propagate() bool { return c.x.SetMax(c.c) }
