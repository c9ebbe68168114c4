package search

import (
	"time"

	"github.com/sirupsen/logrus"
)

// An Option configures a Controller.
type Option func(c *config)

type config struct {
	cost         Cost
	relaxVars    []Relaxable
	relaxProb    int
	restartLimit int
	timeout      time.Duration
	deadline     time.Time
	seed         int64
	report       func()
	backjumps    Backjumps
	logger       logrus.FieldLogger
	recorder     Recorder
	now          func() time.Time
}

// WithCost makes the controller minimize c.
func WithCost(c Cost) Option {
	return func(cfg *config) {
		cfg.cost = c
	}
}

// WithRelax enables relax and reconstruct over vars: at the start of each
// attempt following a solution, each variable is forced back to its value
// in that solution with the given probability, in percent.
func WithRelax(vars []Relaxable, probability int) Option {
	return func(cfg *config) {
		cfg.relaxVars = vars
		cfg.relaxProb = probability
	}
}

// WithRestartLimit sets the maximum number of restarts. 0 means a single
// attempt, a negative n means no limit, which is the default.
func WithRestartLimit(n int) Option {
	return func(cfg *config) {
		cfg.restartLimit = n
	}
}

// WithTimeout stops the controller once d has elapsed since the beginning
// of Labeling. The deadline is only checked between attempts.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithDeadline stops the controller once t is passed.
func WithDeadline(t time.Time) Option {
	return func(cfg *config) {
		cfg.deadline = t
	}
}

// WithSeed seeds the generator used by relax and reconstruct.
func WithSeed(seed int64) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}

// WithReport registers a function called after every accepted solution.
// It must not modify the search state.
func WithReport(f func()) Option {
	return func(cfg *config) {
		cfg.report = f
	}
}

// WithBackjumpListener adds a listener notified when the controller unwinds
// an attempt and when it restarts.
func WithBackjumpListener(l BackjumpListener) Option {
	return func(cfg *config) {
		cfg.backjumps = append(cfg.backjumps, l)
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithRecorder sets the recorder notified of attempts and solutions.
func WithRecorder(r Recorder) Option {
	return func(cfg *config) {
		cfg.recorder = r
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}

var defaults = []Option{
	func(cfg *config) {
		if cfg.logger == nil {
			cfg.logger = logrus.StandardLogger()
		}
	},
	func(cfg *config) {
		if cfg.recorder == nil {
			cfg.recorder = nopRecorder{}
		}
	},
	func(cfg *config) {
		if cfg.now == nil {
			cfg.now = time.Now
		}
	},
}
