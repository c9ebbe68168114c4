package search

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// A Controller runs a search repeatedly under a growing fail budget.
// S is the type of the selector the search uses to pick choice points.
//
// A Controller is not safe for concurrent use.
type Controller[S any] struct {
	store  Store
	search Search[S]
	sel    S
	budget Budget

	cost         Cost
	bound        *CostBound
	relax        *relaxState
	restartLimit int
	timeout      time.Duration
	deadline     time.Time
	report       func()
	backjumps    Backjumps
	log          logrus.FieldLogger
	recorder     Recorder
	now          func() time.Time

	Stats         Stats
	attemptSols   int
	atLeastOneSol bool
}

// New returns a controller running s with the selector sel under budget.
// Every handle of the search, s first and then its children, is set up to
// report to budget, not to assign its last solution back and not to print
// progress.
func New[S any](store Store, s Search[S], sel S, budget Budget, opts ...Option) *Controller[S] {
	cfg := config{restartLimit: -1, seed: 1}
	for _, opt := range append(append([]Option(nil), opts...), defaults...) {
		opt(&cfg)
	}
	c := &Controller[S]{
		store:        store,
		search:       s,
		sel:          sel,
		budget:       budget,
		cost:         cfg.cost,
		restartLimit: cfg.restartLimit,
		timeout:      cfg.timeout,
		deadline:     cfg.deadline,
		report:       cfg.report,
		backjumps:    cfg.backjumps,
		log:          cfg.logger,
		recorder:     cfg.recorder,
		now:          cfg.now,
	}
	if c.cost.Valid() {
		c.bound = NewCostBound(c.cost)
	}
	if len(cfg.relaxVars) != 0 {
		c.relax = newRelaxState(cfg.relaxVars, cfg.relaxProb, cfg.seed)
	}
	handles := append([]Handle{s}, s.Children()...)
	for _, h := range handles {
		h.SetAssignSolution(false)
		h.SetPrintInfo(false)
		h.AddConsistencyListener(budget)
	}
	s.Solutions().OnSolution(c.accept)
	return c
}

// accept is called on every solution of the wrapped search.
func (c *Controller[S]) accept() {
	c.Stats.NbSolutions++
	c.attemptSols++
	if c.bound != nil && c.bound.Record() {
		c.log.WithField("best", c.bound.String()).Debug("new best cost")
	}
	if c.relax != nil {
		c.relax.snapshot()
	}
	if c.report != nil {
		c.report()
	}
	c.recorder.SolutionAccepted()
}

// Best returns the best cost found, or nil when not optimizing.
func (c *Controller[S]) Best() *CostBound {
	return c.bound
}

// Labeling runs attempts until one of them is conclusive or a limit is
// reached. In satisfaction mode it returns true as soon as a solution is
// found. When optimizing, it returns true if at least one solution was
// found and the last attempt did not exhaust its budget, meaning the best
// cost is optimal.
//
// It returns false when the problem is infeasible, when the solution limit
// of the search is reached, or when the deadline passed. In the latter
// case TimedOut is set on the search. The store is always back to its
// original level when Labeling returns.
func (c *Controller[S]) Labeling(ctx context.Context) bool {
	base := c.store.Level()
	deadline := c.deadline
	if c.timeout > 0 {
		if d := c.now().Add(c.timeout); deadline.IsZero() || d.Before(deadline) {
			deadline = d
		}
	}
	for {
		a := c.attempt(base)
		c.Stats.NbAttempts++
		c.Stats.NbFails += a.Fails
		c.recorder.AttemptFinished(a)
		c.log.WithFields(logrus.Fields{
			"attempt":   a.Number,
			"budget":    a.Budget,
			"fails":     a.Fails,
			"outcome":   a.Outcome,
			"solutions": a.Solutions,
		}).Debug("attempt finished")

		if c.restartLimit >= 0 && c.Stats.NbRestarts >= c.restartLimit {
			c.log.WithField("restarts", c.Stats.NbRestarts).Debug("restart limit reached")
			return c.atLeastOneSol
		}
		if c.search.Solutions().LimitReached() {
			return false
		}
		if c.expired(ctx, deadline) {
			c.search.SetTimeOut()
			c.Stats.TimedOut = true
			c.log.WithFields(logrus.Fields{
				"restarts":  c.Stats.NbRestarts,
				"solutions": c.Stats.NbSolutions,
			}).Warn("time-out, search stopped")
			return false
		}

		switch {
		case a.Outcome == Sat && !c.cost.Valid():
			return true
		case a.Outcome == Sat && !c.budget.Exhausted():
			return true
		case a.Outcome == Sat:
			c.bound.Post()
		case a.Outcome == Indet:
			c.postBound()
		case a.Forced > 0:
			c.postBound()
		default:
			return c.atLeastOneSol
		}

		c.budget.NewLimit()
		c.Stats.NbRestarts++
		c.recorder.Restarted(c.budget.Limit())
		c.backjumps.Restart(base)
	}
}

// attempt pushes a level, applies relaxation, runs the search once and
// unwinds the store back to base.
func (c *Controller[S]) attempt(base int) Attempt {
	a := Attempt{Number: c.Stats.NbAttempts + 1, Budget: c.budget.Limit()}
	c.attemptSols = 0
	c.store.PushLevel()
	a.Forced = c.relax.apply()
	var ok bool
	if c.cost.Valid() {
		ok = c.search.LabelingCost(c.sel, c.cost)
	} else {
		ok = c.search.Labeling(c.sel)
	}
	level := c.store.Level()
	for c.store.Level() > base {
		c.store.PopLevel()
	}
	c.backjumps.Backjump(level, base)

	a.Fails = c.budget.Fails()
	a.Solutions = c.attemptSols
	switch {
	case ok:
		c.atLeastOneSol = true
		a.Outcome = Sat
	case c.budget.Exhausted():
		a.Outcome = Indet
	default:
		a.Outcome = Unsat
	}
	return a
}

func (c *Controller[S]) postBound() {
	if c.bound != nil {
		c.bound.Post()
	}
}

func (c *Controller[S]) expired(ctx context.Context, deadline time.Time) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	return !deadline.IsZero() && !c.now().Before(deadline)
}
