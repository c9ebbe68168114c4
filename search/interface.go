package search

// A Store is a constraint store with backtracking levels.
// Every change made after PushLevel is undone by the matching PopLevel.
type Store interface {
	Level() int
	PushLevel()
	PopLevel()
}

// A ConsistencyListener is told the result of every consistency check made
// by a search. If it returns false, the search must abandon the current
// attempt as soon as possible.
type ConsistencyListener interface {
	AfterConsistency(consistent bool) bool
}

// A Handle is the part of a search the controller configures. The main
// search and each of its nested child searches are configured the same way.
type Handle interface {
	// SetAssignSolution tells whether the last solution must be assigned
	// back to the variables when the search returns.
	SetAssignSolution(assign bool)
	// SetPrintInfo tells whether the search reports its progress.
	SetPrintInfo(print bool)
	AddConsistencyListener(l ConsistencyListener)
}

// A Search runs one complete depth-first exploration with a selector of
// type S. The search itself is a black box to the controller: it only
// reports whether a solution was found.
type Search[S any] interface {
	Handle
	// Children returns the nested child searches, in order.
	Children() []Handle
	// Labeling looks for a single solution.
	Labeling(sel S) bool
	// LabelingCost looks for solutions of decreasing cost and returns true
	// if at least one was found.
	LabelingCost(sel S, cost Cost) bool
	// Solutions returns the listener notified of every solution found.
	Solutions() *Solutions
	// SetTimeOut marks the search as timed out. The flag is sticky.
	SetTimeOut()
	TimedOut() bool
}
