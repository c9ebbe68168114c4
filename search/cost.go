package search

import (
	"fmt"
	"math"
)

// An IntVar is an integer cost variable.
type IntVar interface {
	// Value returns the current value of the variable. It is only
	// meaningful when the variable is assigned, i.e. on a solution.
	Value() int
	// PostLess constrains the variable to be strictly less than bound.
	PostLess(bound int)
}

// A RealVar is a real-valued cost variable.
type RealVar interface {
	Value() float64
	// PostLessEq constrains the variable to be at most bound.
	PostLessEq(bound float64)
}

// A Cost is the variable to minimize: either an IntVar or a RealVar.
// The zero Cost is invalid.
type Cost struct {
	intVar  IntVar
	realVar RealVar
}

// IntCost returns an integer cost.
func IntCost(v IntVar) Cost { return Cost{intVar: v} }

// RealCost returns a real-valued cost.
func RealCost(v RealVar) Cost { return Cost{realVar: v} }

// Valid is true if c wraps a variable.
func (c Cost) Valid() bool { return c.intVar != nil || c.realVar != nil }

// IsReal is true if c is a real-valued cost.
func (c Cost) IsReal() bool { return c.realVar != nil }

// Int returns the integer variable, or nil.
func (c Cost) Int() IntVar { return c.intVar }

// Real returns the real-valued variable, or nil.
func (c Cost) Real() RealVar { return c.realVar }

// A CostBound holds the best value of a cost seen so far.
type CostBound struct {
	cost     Cost
	found    bool
	bestInt  int
	bestReal float64
}

// NewCostBound returns a bound over c with no value recorded yet.
func NewCostBound(c Cost) *CostBound {
	return &CostBound{cost: c}
}

// Record reads the current value of the cost and keeps it if it is the
// first one or if it is strictly better than the best one.
// It returns true if the value was kept.
func (b *CostBound) Record() bool {
	if b.cost.IsReal() {
		v := b.cost.realVar.Value()
		if b.found && v >= b.bestReal {
			return false
		}
		b.bestReal = v
	} else {
		v := b.cost.intVar.Value()
		if b.found && v >= b.bestInt {
			return false
		}
		b.bestInt = v
	}
	b.found = true
	return true
}

// Post constrains the cost to be strictly better than the best value.
// For real costs the bound is the next representable value below the best
// one. Post does nothing if no value was recorded.
func (b *CostBound) Post() {
	if !b.found {
		return
	}
	if b.cost.IsReal() {
		b.cost.realVar.PostLessEq(math.Nextafter(b.bestReal, math.Inf(-1)))
		return
	}
	b.cost.intVar.PostLess(b.bestInt)
}

// Found is true once a value was recorded.
func (b *CostBound) Found() bool { return b.found }

// BestInt returns the best integer cost.
func (b *CostBound) BestInt() int { return b.bestInt }

// BestReal returns the best real-valued cost.
func (b *CostBound) BestReal() float64 { return b.bestReal }

func (b *CostBound) String() string {
	switch {
	case !b.found:
		return "none"
	case b.cost.IsReal():
		return fmt.Sprintf("%g", b.bestReal)
	default:
		return fmt.Sprintf("%d", b.bestInt)
	}
}
