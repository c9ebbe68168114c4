package fd

import "fmt"

// A Constraint restricts the domains of some variables.
type Constraint interface {
	// Propagate removes values that cannot be part of a solution.
	// It returns false if the constraint cannot be satisfied anymore.
	Propagate() bool
}

// The state of the store when a level was pushed.
type mark struct {
	trail   int
	constrs int
	failed  bool
	epoch   int
}

// A saved domain, restored when its level is popped.
type saved struct {
	iv    *IntVar
	fv    *FloatVar
	dom   []int
	lo    float64
	hi    float64
	stamp int
}

// A Store holds variables and constraints, with backtracking levels.
// Domain changes and constraints made after PushLevel are undone by PopLevel;
// those made at level 0 are permanent.
//
// A Store is not safe for concurrent use.
type Store struct {
	vars    []*IntVar
	fvars   []*FloatVar
	names   map[string]*IntVar
	constrs []Constraint
	trail   []saved
	marks   []mark
	failed  bool
	changes int // incremented on every domain change
	epoch   int // identifies the current level incarnation
	epochs  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{names: make(map[string]*IntVar)}
}

// Level returns the current level. The initial level is 0.
func (s *Store) Level() int { return len(s.marks) }

// PushLevel opens a new level.
func (s *Store) PushLevel() {
	s.marks = append(s.marks, mark{trail: len(s.trail), constrs: len(s.constrs), failed: s.failed, epoch: s.epoch})
	s.epochs++
	s.epoch = s.epochs
}

// PopLevel undoes every change made since the matching PushLevel.
func (s *Store) PopLevel() {
	if len(s.marks) == 0 {
		panic("PopLevel without PushLevel")
	}
	m := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	for i := len(s.trail) - 1; i >= m.trail; i-- {
		t := s.trail[i]
		if t.iv != nil {
			t.iv.dom = t.dom
			t.iv.stamp = t.stamp
		} else {
			t.fv.lo, t.fv.hi = t.lo, t.hi
			t.fv.stamp = t.stamp
		}
	}
	s.trail = s.trail[:m.trail]
	for i := m.constrs; i < len(s.constrs); i++ {
		s.constrs[i] = nil
	}
	s.constrs = s.constrs[:m.constrs]
	s.failed = m.failed
	s.epoch = m.epoch
}

// Impose adds c to the store at the current level.
func (s *Store) Impose(c Constraint) {
	s.constrs = append(s.constrs, c)
}

// Consistency propagates all constraints until a fixpoint is reached.
// It returns false if a domain became empty or a constraint failed.
func (s *Store) Consistency() bool {
	for !s.failed {
		before := s.changes
		for _, c := range s.constrs {
			if !c.Propagate() {
				s.failed = true
				return false
			}
			if s.failed {
				return false
			}
		}
		if s.changes == before {
			return true
		}
	}
	return false
}

// IntVar creates a variable whose domain is [min, max].
func (s *Store) IntVar(name string, min, max int) *IntVar {
	var dom []int
	for i := min; i <= max; i++ {
		dom = append(dom, i)
	}
	return s.newIntVar(name, dom)
}

// IntVarValues creates a variable whose domain is the given set of values.
func (s *Store) IntVarValues(name string, values ...int) *IntVar {
	return s.newIntVar(name, normalize(values))
}

func (s *Store) newIntVar(name string, dom []int) *IntVar {
	if name == "" {
		name = fmt.Sprintf("_x%d", len(s.vars))
	}
	v := &IntVar{store: s, name: name, id: len(s.vars), dom: dom}
	s.vars = append(s.vars, v)
	s.names[name] = v
	if len(dom) == 0 {
		s.failed = true
	}
	return v
}

// FloatVar creates a real-valued variable whose domain is [lo, hi].
func (s *Store) FloatVar(name string, lo, hi float64) *FloatVar {
	v := &FloatVar{store: s, name: name, lo: lo, hi: hi}
	s.fvars = append(s.fvars, v)
	if lo > hi {
		s.failed = true
	}
	return v
}

// Vars returns the integer variables, in creation order.
func (s *Store) Vars() []*IntVar { return s.vars }

// Lookup returns the integer variable with the given name, or nil.
func (s *Store) Lookup(name string) *IntVar { return s.names[name] }

// Failed is true if the store is known to be inconsistent at the current level.
func (s *Store) Failed() bool { return s.failed }

func (s *Store) saveInt(v *IntVar) {
	if v.stamp != s.epoch && len(s.marks) != 0 {
		s.trail = append(s.trail, saved{iv: v, dom: v.dom, stamp: v.stamp})
		v.stamp = s.epoch
	}
}

func (s *Store) saveFloat(v *FloatVar) {
	if v.stamp != s.epoch && len(s.marks) != 0 {
		s.trail = append(s.trail, saved{fv: v, lo: v.lo, hi: v.hi, stamp: v.stamp})
		v.stamp = s.epoch
	}
}
