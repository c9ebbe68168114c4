package search

import "math/rand"

// A Relaxable is a decision variable that can be re-fixed to the value it
// had in a previous solution.
type Relaxable interface {
	Value() int
	// Force assigns v to the variable at the current store level.
	Force(v int)
}

type relaxState struct {
	vars        []Relaxable
	probability int
	values      []int
	valid       bool
	rng         *rand.Rand
}

func newRelaxState(vars []Relaxable, probability int, seed int64) *relaxState {
	switch {
	case probability < 0:
		probability = 0
	case probability > 100:
		probability = 100
	}
	return &relaxState{
		vars:        vars,
		probability: probability,
		values:      make([]int, len(vars)),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// snapshot saves the current value of every variable.
func (r *relaxState) snapshot() {
	for i, v := range r.vars {
		r.values[i] = v.Value()
	}
	r.valid = true
}

// apply forces each variable to its saved value with the configured
// probability and returns how many were forced. Nothing is forced before
// the first snapshot.
func (r *relaxState) apply() int {
	if r == nil || !r.valid {
		return 0
	}
	forced := 0
	for i, v := range r.vars {
		if r.rng.Intn(100) < r.probability {
			v.Force(r.values[i])
			forced++
		}
	}
	return forced
}
