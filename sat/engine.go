package sat

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"

	"github.com/crillab/gophercp/search"
)

// An Engine holds the CNF of a Problem and exposes it as a backtracking
// store. Assumptions made at a level are propagated right away and
// forgotten when the level is popped.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	pb      *Problem
	p       *propagator
	c       *logic.C
	lits    []z.Lit // lits[i] is the positive literal of var i+1
	cost    *CostVar
	frames  []frame
	failed  bool // Whether unit propagation failed at the current level
	clauses search.Clauses
	nextID  int
	log     logrus.FieldLogger
}

type frame struct {
	mark    int   // Length of the trail when the level was pushed
	failed  bool  // Value of failed when the level was pushed
	clauses []int // Ids of the clauses posted at this level
}

// An Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger of the engine.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClauseListener registers a listener before the problem is loaded,
// so that it is told about the clauses of the problem itself.
func WithClauseListener(l search.ClauseListener) Option {
	return func(e *Engine) { e.clauses = append(e.clauses, l) }
}

// New loads pb in a new engine.
// Pseudo-boolean constraints and the cost function are encoded with
// sorting networks; a term of weight w is counted w times.
func New(pb *Problem, opts ...Option) *Engine {
	e := &Engine{pb: pb, p: &propagator{}, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	e.c = logic.NewCCap(pb.NbVars + 1)
	e.lits = make([]z.Lit, pb.NbVars)
	for i := range e.lits {
		e.lits[i] = e.c.Lit()
	}
	var roots []z.Lit
	for _, constr := range pb.Constrs {
		var ms []z.Lit
		for i, l := range constr.Lits {
			for j := 0; j < constr.weight(i); j++ {
				ms = append(ms, e.lit(l))
			}
		}
		roots = append(roots, e.c.CardSort(ms).Geq(constr.AtLeast))
	}
	if pb.Optim() {
		e.cost = newCostVar(e)
	}
	e.p.grow(z.Var(e.c.Len() - 1))
	e.c.ToCnf(e.p)
	if pb.Status == search.Unsat {
		e.addClause()
		e.notifyAdded(nil)
	}
	for _, clause := range pb.Clauses {
		ms := make([]z.Lit, len(clause))
		for i, l := range clause {
			ms[i] = e.lit(l)
		}
		e.addClause(ms...)
		e.notifyAdded(ms)
	}
	for _, m := range roots {
		e.addClause(m)
		e.notifyAdded([]z.Lit{m})
	}
	e.log.WithFields(logrus.Fields{
		"vars":    pb.NbVars,
		"clauses": len(pb.Clauses),
		"constrs": len(pb.Constrs),
		"gates":   e.c.Len(),
	}).Debug("problem loaded")
	return e
}

// AddClauseListener registers a listener for the clauses added from now on.
func (e *Engine) AddClauseListener(l search.ClauseListener) {
	e.clauses = append(e.clauses, l)
}

// Problem returns the problem loaded in e.
func (e *Engine) Problem() *Problem { return e.pb }

// lit returns the gini literal of the DIMACS literal l.
func (e *Engine) lit(l int) z.Lit {
	if l < 0 {
		return e.lits[-l-1].Not()
	}
	return e.lits[l-1]
}

// dimacs returns the DIMACS literal of m. Vars created by the encoding are
// numbered after the vars of the problem.
func (e *Engine) dimacs(m z.Lit) int {
	v := int(m.Var()) - 1
	if !m.IsPos() {
		return -v
	}
	return v
}

func (e *Engine) addClause(ms ...z.Lit) {
	e.p.addClause(ms)
}

func (e *Engine) notifyAdded(ms []z.Lit) int {
	e.nextID++
	if len(e.clauses) == 0 {
		return e.nextID
	}
	lits := make([]int, 0, len(ms))
	for _, m := range ms {
		if m == e.c.F {
			continue
		}
		lits = append(lits, e.dimacs(m))
	}
	e.clauses.ClauseAdded(lits, e.nextID, true)
	return e.nextID
}

// Level returns the number of levels pushed.
func (e *Engine) Level() int { return len(e.frames) }

// PushLevel opens a new level.
func (e *Engine) PushLevel() {
	e.frames = append(e.frames, frame{mark: len(e.p.trail), failed: e.failed})
}

// PopLevel removes every assumption made since the matching PushLevel.
// It panics if no level was pushed.
func (e *Engine) PopLevel() {
	if len(e.frames) == 0 {
		panic("PopLevel without PushLevel")
	}
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	e.failed = f.failed
	e.p.undo(f.mark)
	for i := len(f.clauses) - 1; i >= 0; i-- {
		e.clauses.ClauseRemoved(f.clauses[i])
	}
}

// assume adds assumptions at the current level and propagates them.
// Nothing is done once the level failed.
func (e *Engine) assume(ms ...z.Lit) {
	if len(e.frames) == 0 {
		panic("assumption at level 0")
	}
	if e.failed || e.p.conflict {
		return
	}
	for _, m := range ms {
		if !e.p.assign(m) {
			e.failed = true
			return
		}
	}
	e.failed = !e.p.propagate()
}

// Consistency returns false if unit propagation found a conflict at the
// current level.
func (e *Engine) Consistency() bool {
	return !e.failed && !e.p.conflict
}

// Assign makes l true at the current level. At level 0, l is added as a
// unit clause.
func (e *Engine) Assign(l int) {
	m := e.lit(l)
	if len(e.frames) == 0 {
		e.addClause(m)
		return
	}
	e.assume(m)
}

// Assigned returns true if var v has a value at the current level.
func (e *Engine) Assigned(v int) bool {
	return e.p.value(e.lits[v-1]) != 0
}

// Model returns the current value of each var. Unassigned vars are false.
func (e *Engine) Model() []bool {
	res := make([]bool, len(e.lits))
	for i, m := range e.lits {
		res[i] = e.p.value(m) == 1
	}
	return res
}

// Var returns the boolean var v, between 1 and NbVars.
func (e *Engine) Var(v int) *BoolVar {
	if v < 1 || v > len(e.lits) {
		panic("invalid var")
	}
	return &BoolVar{e: e, v: v}
}

// Vars returns all the vars of the problem, as relaxable vars.
func (e *Engine) Vars() []search.Relaxable {
	res := make([]search.Relaxable, len(e.lits))
	for i := range res {
		res[i] = e.Var(i + 1)
	}
	return res
}

// Cost returns the cost of the problem, or nil if the problem has no cost function.
func (e *Engine) Cost() *CostVar { return e.cost }

// A BoolVar is a var of an Engine, seen as a 0-1 integer.
type BoolVar struct {
	e *Engine
	v int
}

// Value returns 1 if the var is true, 0 otherwise.
func (b *BoolVar) Value() int {
	if b.e.p.value(b.e.lits[b.v-1]) == 1 {
		return 1
	}
	return 0
}

// Force makes the var true if val != 0, false otherwise.
func (b *BoolVar) Force(val int) {
	if val != 0 {
		b.e.Assign(b.v)
	} else {
		b.e.Assign(-b.v)
	}
}

// Assigned returns true if the var has a value.
func (b *BoolVar) Assigned() bool { return b.e.Assigned(b.v) }

// A CostVar is the cost function of a Problem.
type CostVar struct {
	e      *Engine
	ms     []z.Lit
	w      []int
	offset int
	cs     *logic.CardSort
}

// newCostVar builds the sorting network of the cost function.
// Negative weights are normalized: w.l == w + (-w).~l.
func newCostVar(e *Engine) *CostVar {
	cv := &CostVar{e: e}
	var ms []z.Lit
	for i, l := range e.pb.MinLits {
		m, w := e.lit(l), e.pb.minWeight(i)
		if w < 0 {
			cv.offset += w
			m, w = m.Not(), -w
		}
		cv.ms = append(cv.ms, m)
		cv.w = append(cv.w, w)
		for j := 0; j < w; j++ {
			ms = append(ms, m)
		}
	}
	if len(ms) != 0 {
		cv.cs = e.c.CardSort(ms)
	}
	return cv
}

// Value returns the cost of the current assignment.
func (cv *CostVar) Value() int {
	res := cv.offset
	for i, m := range cv.ms {
		if cv.e.p.value(m) == 1 {
			res += cv.w[i]
		}
	}
	return res
}

// PostLess constrains the cost to be lower than b. At level 0 the
// constraint is a permanent unit clause; at any other level it is an
// assumption removed with the level.
func (cv *CostVar) PostLess(b int) {
	e := cv.e
	var m z.Lit
	switch {
	case cv.cs != nil:
		m = cv.cs.Less(b - cv.offset)
	case cv.offset < b:
		m = e.c.T
	default:
		m = e.c.F
	}
	if m == e.c.T {
		return
	}
	if len(e.frames) == 0 {
		e.addClause(m)
		e.notifyAdded([]z.Lit{m})
		return
	}
	e.assume(m)
	id := e.notifyAdded([]z.Lit{m})
	f := &e.frames[len(e.frames)-1]
	f.clauses = append(f.clauses, id)
}
