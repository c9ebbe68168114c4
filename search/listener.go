package search

// A BackjumpListener is told about level changes made by a search or a
// controller. Levels are not necessarily contiguous: a single backjump or
// restart can skip several levels.
// Implementations must not change the store from these methods.
type BackjumpListener interface {
	// Backjump is called when the store goes back from oldLevel to newLevel.
	Backjump(oldLevel, newLevel int)
	// Restart is called when a new attempt starts over from oldLevel.
	Restart(oldLevel int)
}

// A ClauseListener is told when a clause is added to or removed from a
// clause-based engine. model is true for clauses that belong to the
// problem itself (including bounds posted on the cost), false for learned ones.
// Implementations must not change the store from these methods.
type ClauseListener interface {
	ClauseAdded(lits []int, id int, model bool)
	ClauseRemoved(id int)
}

// Backjumps is an ordered list of listeners. Notifications are dispatched
// in registration order.
type Backjumps []BackjumpListener

// Backjump notifies every listener.
func (ls Backjumps) Backjump(oldLevel, newLevel int) {
	for _, l := range ls {
		l.Backjump(oldLevel, newLevel)
	}
}

// Restart notifies every listener.
func (ls Backjumps) Restart(oldLevel int) {
	for _, l := range ls {
		l.Restart(oldLevel)
	}
}

// Clauses is an ordered list of clause listeners.
type Clauses []ClauseListener

// ClauseAdded notifies every listener.
func (ls Clauses) ClauseAdded(lits []int, id int, model bool) {
	for _, l := range ls {
		l.ClauseAdded(lits, id, model)
	}
}

// ClauseRemoved notifies every listener.
func (ls Clauses) ClauseRemoved(id int) {
	for _, l := range ls {
		l.ClauseRemoved(id)
	}
}
