// Package metrics exports the activity of the restart controller as
// prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crillab/gophercp/search"
)

const namespace = "gophercp"

// A Recorder implements search.Recorder.
type Recorder struct {
	attempts  *prometheus.CounterVec
	restarts  prometheus.Counter
	solutions prometheus.Counter
	fails     prometheus.Histogram
	budget    prometheus.Gauge
}

var _ search.Recorder = (*Recorder)(nil)

// NewRecorder creates the metrics and registers them on reg.
// It panics if they are already registered.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Count of search attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restarts_total",
			Help:      "Count of restarts.",
		}),
		solutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solutions_total",
			Help:      "Count of accepted solutions.",
		}),
		fails: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_fails",
			Help:      "Distribution of the number of fails per attempt.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fail_budget",
			Help:      "Fail ceiling of the current attempt.",
		}),
	}
	reg.MustRegister(r.attempts, r.restarts, r.solutions, r.fails, r.budget)
	return r
}

// AttemptFinished implements search.Recorder.
func (r *Recorder) AttemptFinished(a search.Attempt) {
	r.attempts.WithLabelValues(a.Outcome.String()).Inc()
	r.fails.Observe(float64(a.Fails))
	r.budget.Set(float64(a.Budget))
}

// Restarted implements search.Recorder.
func (r *Recorder) Restarted(newLimit int) {
	r.restarts.Inc()
	r.budget.Set(float64(newLimit))
}

// SolutionAccepted implements search.Recorder.
func (r *Recorder) SolutionAccepted() {
	r.solutions.Inc()
}
