package search

// Solutions counts the solutions found by a search and calls the
// registered hooks on each of them. It is shared between a search and the
// controller that drives it.
type Solutions struct {
	count int
	limit int
	hooks []func()
}

// SetLimit sets the number of solutions after which the search must stop.
// A limit <= 0 means no limit.
func (s *Solutions) SetLimit(n int) { s.limit = n }

// Limit returns the solution limit, or 0 if there is none.
func (s *Solutions) Limit() int {
	if s.limit < 0 {
		return 0
	}
	return s.limit
}

// Count returns the number of solutions found so far.
func (s *Solutions) Count() int { return s.count }

// LimitReached is true if a limit was set and that many solutions were found.
func (s *Solutions) LimitReached() bool {
	return s.limit > 0 && s.count >= s.limit
}

// OnSolution registers a hook. Hooks are called in registration order.
func (s *Solutions) OnSolution(f func()) {
	s.hooks = append(s.hooks, f)
}

// Found must be called by the search on every solution, while the
// variables are still assigned.
func (s *Solutions) Found() {
	s.count++
	for _, f := range s.hooks {
		f()
	}
}
