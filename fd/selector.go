package fd

import (
	"math/rand"

	"github.com/pkg/errors"
)

// A VarOrder tells which unassigned variable is branched on first.
type VarOrder int

const (
	// InputOrder picks the first unassigned variable.
	InputOrder VarOrder = iota
	// FirstFail picks the unassigned variable with the smallest domain.
	FirstFail
)

// A ValueOrder tells in which order the values of a variable are tried.
type ValueOrder int

const (
	// IndomainMin tries values in increasing order.
	IndomainMin ValueOrder = iota
	// IndomainMax tries values in decreasing order.
	IndomainMax
	// IndomainRandom tries values in a random order.
	IndomainRandom
)

// ParseVarOrder parses "input" or "first-fail".
func ParseVarOrder(s string) (VarOrder, error) {
	switch s {
	case "", "input":
		return InputOrder, nil
	case "first-fail", "firstfail":
		return FirstFail, nil
	default:
		return 0, errors.Errorf("invalid variable order %q", s)
	}
}

// ParseValueOrder parses "min", "max" or "random".
func ParseValueOrder(s string) (ValueOrder, error) {
	switch s {
	case "", "min":
		return IndomainMin, nil
	case "max":
		return IndomainMax, nil
	case "random":
		return IndomainRandom, nil
	default:
		return 0, errors.Errorf("invalid value order %q", s)
	}
}

// A Selector picks the choice points of a depth-first search.
type Selector struct {
	vars     []*IntVar
	varOrder VarOrder
	valOrder ValueOrder
	rng      *rand.Rand
}

// NewSelector returns a selector over vars.
func NewSelector(vars []*IntVar, varOrder VarOrder, valOrder ValueOrder) *Selector {
	return &Selector{vars: vars, varOrder: varOrder, valOrder: valOrder, rng: rand.New(rand.NewSource(1))}
}

// SetSeed seeds the generator used by IndomainRandom.
func (s *Selector) SetSeed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Vars returns the variables of the selector.
func (s *Selector) Vars() []*IntVar { return s.vars }

// next returns the variable to branch on, or nil if all are assigned.
func (s *Selector) next() *IntVar {
	var best *IntVar
	for _, v := range s.vars {
		if v.Singleton() {
			continue
		}
		if s.varOrder == InputOrder {
			return v
		}
		if best == nil || v.Size() < best.Size() {
			best = v
		}
	}
	return best
}

// values returns the values of v in the order they must be tried.
func (s *Selector) values(v *IntVar) []int {
	vals := append([]int(nil), v.Values()...)
	switch s.valOrder {
	case IndomainMax:
		for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
			vals[i], vals[j] = vals[j], vals[i]
		}
	case IndomainRandom:
		s.rng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	}
	return vals
}
