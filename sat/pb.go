package sat

// A PBConstr states that the weighted sum of its true lits is at least
// AtLeast. Lits are DIMACS literals. A nil Weights means every weight is 1.
type PBConstr struct {
	Lits    []int
	Weights []int
	AtLeast int
}

func (c PBConstr) weight(i int) int {
	if c.Weights == nil {
		return 1
	}
	return c.Weights[i]
}

// WeightSum returns the greatest value the sum of c can take.
func (c PBConstr) WeightSum() int {
	res := 0
	for i := range c.Lits {
		res += c.weight(i)
	}
	return res
}

// isClause is true if any true lit satisfies c.
func (c PBConstr) isClause() bool {
	if c.AtLeast != 1 {
		return false
	}
	for i := range c.Lits {
		if c.weight(i) < 1 {
			return false
		}
	}
	return true
}

// PropClause returns the constraint stating that one of lits at least is true.
func PropClause(lits ...int) PBConstr {
	return PBConstr{Lits: lits, AtLeast: 1}
}

// AtMost returns the constraint stating that n of lits at most are true.
// lits is negated in place.
func AtMost(lits []int, n int) PBConstr {
	for i := range lits {
		lits[i] = -lits[i]
	}
	return PBConstr{Lits: lits, AtLeast: len(lits) - n}
}

// GtEq returns the constraint sum(weights[i].lits[i]) >= n, with positive
// weights only: a term w.l with w < 0 becomes -w.~l and -w is added to n.
// lits and weights are modified in place. GtEq panics if weights is not nil
// and does not have as many items as lits.
func GtEq(lits []int, weights []int, n int) PBConstr {
	if weights != nil && len(lits) != len(weights) {
		panic("not as many lits as weights")
	}
	for i, w := range weights {
		if w < 0 {
			weights[i] = -w
			lits[i] = -lits[i]
			n -= w
		}
	}
	return PBConstr{Lits: lits, Weights: weights, AtLeast: n}
}

// LtEq returns the constraint sum(weights[i].lits[i]) <= n, written as
// sum(-weights[i].lits[i]) >= -n. lits is modified in place.
func LtEq(lits []int, weights []int, n int) PBConstr {
	neg := make([]int, len(lits))
	for i := range neg {
		neg[i] = -1
		if weights != nil {
			neg[i] = -weights[i]
		}
	}
	return GtEq(lits, neg, -n)
}
