package fd

import (
	"github.com/sirupsen/logrus"

	"github.com/crillab/gophercp/search"
)

// Stats are statistics about the searches made by a DepthFirst.
type Stats struct {
	NbNodes     int
	NbDecisions int
	NbFails     int
	NbSolutions int
}

// A DepthFirst explores the search tree defined by a Selector, assigning
// one variable per level. Child searches, each with their own selector,
// continue the exploration once all the variables of their parent are
// assigned.
type DepthFirst struct {
	store     *Store
	children  []child
	listeners []search.ConsistencyListener
	backjumps search.Backjumps
	sols      search.Solutions

	assignSolution bool
	printInfo      bool
	timedOut       bool
	solution       []assignment
	log            logrus.FieldLogger

	Stats Stats
}

type child struct {
	dfs *DepthFirst
	sel *Selector
}

type assignment struct {
	v   *IntVar
	val int
}

// NewDepthFirst returns a search over store. By default the last solution
// is assigned back when the search returns.
func NewDepthFirst(store *Store) *DepthFirst {
	return &DepthFirst{store: store, assignSolution: true, log: logrus.StandardLogger()}
}

// SetLogger sets the logger used when printing is enabled.
func (d *DepthFirst) SetLogger(l logrus.FieldLogger) { d.log = l }

// AddChild appends a child search, run with sel once every variable of d
// is assigned.
func (d *DepthFirst) AddChild(c *DepthFirst, sel *Selector) {
	d.children = append(d.children, child{dfs: c, sel: sel})
}

// Children returns the nested child searches, depth first.
func (d *DepthFirst) Children() []search.Handle {
	var res []search.Handle
	for _, c := range d.children {
		res = append(res, c.dfs)
		res = append(res, c.dfs.Children()...)
	}
	return res
}

// AddBackjumpListener adds a listener told when an aborted search jumps back to its entry level.
func (d *DepthFirst) AddBackjumpListener(l search.BackjumpListener) {
	d.backjumps = append(d.backjumps, l)
}

func (d *DepthFirst) SetAssignSolution(assign bool) { d.assignSolution = assign }
func (d *DepthFirst) SetPrintInfo(print bool)       { d.printInfo = print }
func (d *DepthFirst) AddConsistencyListener(l search.ConsistencyListener) {
	d.listeners = append(d.listeners, l)
}

func (d *DepthFirst) Solutions() *search.Solutions { return &d.sols }
func (d *DepthFirst) SetTimeOut()                  { d.timedOut = true }
func (d *DepthFirst) TimedOut() bool               { return d.timedOut }

// Solution returns the values of the last solution, indexed by variable name.
func (d *DepthFirst) Solution() map[string]int {
	if d.solution == nil {
		return nil
	}
	res := make(map[string]int, len(d.solution))
	for _, a := range d.solution {
		res[a.v.name] = a.val
	}
	return res
}

// Labeling looks for a solution.
func (d *DepthFirst) Labeling(sel *Selector) bool {
	return d.run(sel, search.Cost{})
}

// LabelingCost looks for solutions of strictly decreasing cost until the
// search space is exhausted. It returns true if at least one solution was found.
func (d *DepthFirst) LabelingCost(sel *Selector, cost search.Cost) bool {
	return d.run(sel, cost)
}

// A phase is one search of a chain, with the selector it runs.
type phase struct {
	dfs *DepthFirst
	sel *Selector
}

// run holds the state shared by all the searches of a chain during one call.
type run struct {
	root    *DepthFirst
	phases  []phase
	bound   *search.CostBound
	version int // incremented on each recorded cost
	found   bool
	stop    bool
	aborted bool
}

func (d *DepthFirst) phases(sel *Selector) []phase {
	res := []phase{{d, sel}}
	for _, c := range d.children {
		res = append(res, c.dfs.phases(c.sel)...)
	}
	return res
}

func (d *DepthFirst) run(sel *Selector, cost search.Cost) bool {
	r := &run{root: d, phases: d.phases(sel)}
	if cost.Valid() {
		r.bound = search.NewCostBound(cost)
	}
	if d.printInfo {
		d.log.WithField("vars", len(sel.vars)).Info("labeling")
	}
	entry := d.store.Level()
	d.store.PushLevel()
	r.node(0, 0)
	level := d.store.Level()
	for d.store.Level() > entry {
		d.store.PopLevel()
	}
	if r.aborted {
		d.backjumps.Backjump(level, entry)
	}
	if r.found && d.assignSolution {
		for _, a := range d.solution {
			a.v.Assign(a.val)
		}
		d.store.Consistency()
	}
	if d.printInfo {
		d.log.WithFields(logrus.Fields{
			"nodes":     d.Stats.NbNodes,
			"decisions": d.Stats.NbDecisions,
			"fails":     d.Stats.NbFails,
			"solutions": d.Stats.NbSolutions,
		}).Info("labeling done")
	}
	return r.found
}

// notify tells every listener about the result of a consistency check.
// It returns false if one of them asks to stop.
func (d *DepthFirst) notify(consistent bool) bool {
	cont := true
	for _, l := range d.listeners {
		if !l.AfterConsistency(consistent) {
			cont = false
		}
	}
	return cont
}

// node explores the subtree rooted at the current level, in phase i.
// posted is the cost version already posted on the path to this node.
// When the search is aborted, node returns without popping its levels.
func (r *run) node(i, posted int) {
	p := r.phases[i]
	d := p.dfs
	d.Stats.NbNodes++
	if r.bound != nil && r.version > posted {
		r.bound.Post()
		posted = r.version
	}
	ok := d.store.Consistency()
	if !d.notify(ok) {
		r.aborted = true
	}
	if !ok {
		d.Stats.NbFails++
		return
	}
	if r.aborted {
		return
	}
	v := p.sel.next()
	if v == nil {
		if i+1 < len(r.phases) {
			r.node(i+1, posted)
			return
		}
		r.solution(d)
		return
	}
	for _, val := range p.sel.values(v) {
		d.store.PushLevel()
		d.Stats.NbDecisions++
		v.Assign(val)
		r.node(i, posted)
		if r.aborted || r.stop {
			return
		}
		d.store.PopLevel()
	}
}

func (r *run) solution(d *DepthFirst) {
	r.found = true
	root := r.root
	root.solution = root.solution[:0]
	for _, p := range r.phases {
		for _, v := range p.sel.vars {
			root.solution = append(root.solution, assignment{v, v.Value()})
		}
	}
	if r.bound != nil && r.bound.Record() {
		r.version++
	}
	root.Stats.NbSolutions++
	if root.printInfo {
		root.log.WithField("solution", root.Solution()).Info("solution found")
	}
	root.sols.Found()
	if r.bound == nil || root.sols.LimitReached() {
		r.stop = true
	}
}
