package sat

import (
	"github.com/sirupsen/logrus"

	"github.com/crillab/gophercp/search"
)

// An Order lists the DIMACS literals a Search decides on, in order. The
// polarity of each literal is the one tried first.
type Order []int

// InputOrder decides on the vars of pb from 1 to NbVars, false first.
func InputOrder(pb *Problem) Order {
	res := make(Order, pb.NbVars)
	for i := range res {
		res[i] = -(i + 1)
	}
	return res
}

// CostFirst decides on the vars of the cost function first, trying the
// polarity that does not increase the cost, then on the other vars in
// input order.
func CostFirst(pb *Problem) Order {
	res := make(Order, 0, pb.NbVars)
	seen := make([]bool, pb.NbVars+1)
	for i, l := range pb.MinLits {
		v := abs(l)
		if seen[v] {
			continue
		}
		seen[v] = true
		if pb.minWeight(i) < 0 {
			res = append(res, l)
		} else {
			res = append(res, -l)
		}
	}
	for v := 1; v <= pb.NbVars; v++ {
		if !seen[v] {
			res = append(res, -v)
		}
	}
	return res
}

// Stats are statistics about the searches made by a Search.
type Stats struct {
	NbNodes     int
	NbDecisions int
	NbFails     int
	NbSolutions int
}

// A Search is a depth-first exploration of the assignments of an Engine,
// with unit propagation after each decision.
type Search struct {
	e         *Engine
	listeners []search.ConsistencyListener
	backjumps search.Backjumps
	sols      search.Solutions

	assignSolution bool
	printInfo      bool
	timedOut       bool
	model          []bool
	log            logrus.FieldLogger

	Stats Stats
}

// NewSearch returns a search over e. By default the last model is assigned
// back when the search returns, unless it returns at level 0.
func NewSearch(e *Engine) *Search {
	return &Search{e: e, assignSolution: true, log: e.log}
}

// AddBackjumpListener adds a listener told when an aborted search jumps back to its entry level.
func (s *Search) AddBackjumpListener(l search.BackjumpListener) {
	s.backjumps = append(s.backjumps, l)
}

func (s *Search) SetAssignSolution(assign bool) { s.assignSolution = assign }
func (s *Search) SetPrintInfo(print bool)       { s.printInfo = print }
func (s *Search) AddConsistencyListener(l search.ConsistencyListener) {
	s.listeners = append(s.listeners, l)
}

// Children returns nil: a Search has no nested search.
func (s *Search) Children() []search.Handle { return nil }

func (s *Search) Solutions() *search.Solutions { return &s.sols }
func (s *Search) SetTimeOut()                  { s.timedOut = true }
func (s *Search) TimedOut() bool               { return s.timedOut }

// Model returns the last model found, or nil if no model was found.
// Model()[i] is the binding of var i+1.
func (s *Search) Model() []bool { return s.model }

// Labeling looks for a model.
func (s *Search) Labeling(order Order) bool {
	return s.run(order, search.Cost{})
}

// LabelingCost looks for models of strictly decreasing cost until the
// search space is exhausted. It returns true if at least one model was found.
func (s *Search) LabelingCost(order Order, cost search.Cost) bool {
	return s.run(order, cost)
}

// dfs holds the state of one call to Labeling or LabelingCost.
type dfs struct {
	s       *Search
	order   Order
	bound   *search.CostBound
	version int // incremented on each recorded cost
	found   bool
	stop    bool
	aborted bool
}

func (s *Search) run(order Order, cost search.Cost) bool {
	r := &dfs{s: s, order: order}
	if cost.Valid() {
		r.bound = search.NewCostBound(cost)
	}
	if s.printInfo {
		s.log.WithField("vars", len(order)).Info("labeling")
	}
	e := s.e
	entry := e.Level()
	e.PushLevel()
	r.node(0, 0)
	level := e.Level()
	for e.Level() > entry {
		e.PopLevel()
	}
	if r.aborted {
		s.backjumps.Backjump(level, entry)
	}
	if r.found && s.assignSolution && entry > 0 {
		for i, b := range s.model {
			if b {
				e.Assign(i + 1)
			} else {
				e.Assign(-(i + 1))
			}
		}
	}
	if s.printInfo {
		s.log.WithFields(logrus.Fields{
			"nodes":     s.Stats.NbNodes,
			"decisions": s.Stats.NbDecisions,
			"fails":     s.Stats.NbFails,
			"solutions": s.Stats.NbSolutions,
		}).Info("labeling done")
	}
	return r.found
}

func (s *Search) notify(consistent bool) bool {
	cont := true
	for _, l := range s.listeners {
		if !l.AfterConsistency(consistent) {
			cont = false
		}
	}
	return cont
}

// node explores the subtree rooted at the current level. Literals of the
// order before i are already assigned. posted is the cost version already
// posted on the path to this node.
// When the search is aborted, node returns without popping its levels.
func (r *dfs) node(i, posted int) {
	s, e := r.s, r.s.e
	s.Stats.NbNodes++
	if r.bound != nil && r.version > posted {
		r.bound.Post()
		posted = r.version
	}
	ok := e.Consistency()
	if !s.notify(ok) {
		r.aborted = true
	}
	if !ok {
		s.Stats.NbFails++
		return
	}
	if r.aborted {
		return
	}
	for i < len(r.order) && e.Assigned(abs(r.order[i])) {
		i++
	}
	if i == len(r.order) {
		r.solution()
		return
	}
	lit := r.order[i]
	for _, l := range [2]int{lit, -lit} {
		e.PushLevel()
		s.Stats.NbDecisions++
		e.Assign(l)
		r.node(i+1, posted)
		if r.aborted || r.stop {
			return
		}
		e.PopLevel()
	}
}

func (r *dfs) solution() {
	s := r.s
	r.found = true
	s.model = s.e.Model()
	if r.bound != nil && r.bound.Record() {
		r.version++
	}
	s.Stats.NbSolutions++
	if s.printInfo {
		s.log.WithField("solution", s.Stats.NbSolutions).Info("model found")
	}
	s.sols.Found()
	if r.bound == nil || s.sols.LimitReached() {
		r.stop = true
	}
}
