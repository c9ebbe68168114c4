package search

// Status is the outcome of an attempt, or of a whole run.
type Status byte

const (
	// Indet means the attempt stopped because its fail budget was exhausted.
	Indet = Status(iota)
	// Sat means at least one solution was found.
	Sat
	// Unsat means the attempt explored its whole search space without finding a solution.
	Unsat
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		panic("invalid status")
	}
}

// Stats are statistics about a run of the controller.
// They are never reset during a run.
type Stats struct {
	NbRestarts  int  // How many times the search was restarted
	NbAttempts  int  // How many times the search was run
	NbSolutions int  // How many solutions were accepted
	NbFails     int  // Sum of the fails of all attempts
	TimedOut    bool // Whether the run stopped because of a deadline
}

// An Attempt describes one run of the wrapped search.
type Attempt struct {
	Number    int    // 1 for the first attempt
	Budget    int    // Fail ceiling for the attempt
	Fails     int    // Fails during the attempt
	Forced    int    // Variables forced by relax and reconstruct
	Outcome   Status // Sat, Unsat or Indet if the budget was exhausted
	Solutions int    // Solutions accepted during the attempt
}

// A Recorder is notified of the controller's activity, typically to export metrics.
type Recorder interface {
	AttemptFinished(a Attempt)
	Restarted(newLimit int)
	SolutionAccepted()
}

type nopRecorder struct{}

func (nopRecorder) AttemptFinished(Attempt) {}
func (nopRecorder) Restarted(int)           {}
func (nopRecorder) SolutionAccepted()       {}
