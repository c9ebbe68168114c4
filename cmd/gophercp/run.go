package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/crillab/gophercp/fd"
	"github.com/crillab/gophercp/metrics"
	"github.com/crillab/gophercp/model"
	"github.com/crillab/gophercp/sat"
	"github.com/crillab/gophercp/search"
)

type runner struct {
	out   io.Writer
	log   logrus.FieldLogger
	opts  options
	flags *pflag.FlagSet
	rec   *tracker
}

// tracker remembers the last attempt of the controller.
type tracker struct {
	next search.Recorder
	last search.Attempt
}

func (t *tracker) AttemptFinished(a search.Attempt) {
	t.last = a
	if t.next != nil {
		t.next.AttemptFinished(a)
	}
}

func (t *tracker) Restarted(newLimit int) {
	if t.next != nil {
		t.next.Restarted(newLimit)
	}
}

func (t *tracker) SolutionAccepted() {
	if t.next != nil {
		t.next.SolutionAccepted()
	}
}

// run solves the problem in path and returns the exit code.
func (r *runner) run(ctx context.Context, path string) (int, error) {
	fmt.Fprintf(r.out, "c solving %s\n", path)
	r.rec = &tracker{}
	if r.opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		r.rec.next = metrics.NewRecorder(reg)
		stop, err := serveMetrics(r.opts.metricsAddr, reg, r.log)
		if err != nil {
			return 0, err
		}
		defer stop()
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "could not open %q", path)
	}
	defer f.Close()
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		m, err := model.Load(f)
		if err != nil {
			return 0, errors.Wrapf(err, "could not parse model %q", path)
		}
		return r.solveModel(ctx, m)
	case ".cnf", ".opb", ".wcnf":
		pb, err := parse(f, ext)
		if err != nil {
			return 0, errors.Wrapf(err, "could not parse %q", path)
		}
		return r.solveSAT(ctx, pb)
	default:
		return 0, errors.Errorf("invalid file format for %q", path)
	}
}

func parse(f io.Reader, ext string) (*sat.Problem, error) {
	switch ext {
	case ".cnf":
		return sat.ParseCNF(f)
	case ".opb":
		return sat.ParseOPB(f)
	default:
		return sat.ParseWCNF(f)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log logrus.FieldLogger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "could not listen on %q", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.WithField("addr", ln.Addr().String()).Info("serving metrics")
	return func() { srv.Close() }, nil
}

func (r *runner) solveSAT(ctx context.Context, pb *sat.Problem) (int, error) {
	settings := r.opts.restart(model.Restart{}, r.flags)
	if err := settings.Validate(); err != nil {
		return 0, err
	}
	budget, err := settings.Budget()
	if err != nil {
		return 0, err
	}
	if r.opts.verbose {
		fmt.Fprintf(r.out, "c nb vars: %d\nc nb clauses: %d\nc nb constraints: %d\n", pb.NbVars, len(pb.Clauses), len(pb.Constrs))
	}
	e := sat.New(pb, sat.WithLogger(r.log))
	s := sat.NewSearch(e)
	if settings.Solutions > 0 {
		s.Solutions().SetLimit(settings.Solutions)
	}
	opts := append(settings.Options(), search.WithLogger(r.log), search.WithRecorder(r.rec))
	order := sat.InputOrder(pb)
	if pb.Optim() {
		cost := e.Cost()
		order = sat.CostFirst(pb)
		opts = append(opts,
			search.WithCost(search.IntCost(cost)),
			search.WithReport(func() { fmt.Fprintf(r.out, "o %d\n", cost.Value()) }))
	}
	if settings.Relax > 0 {
		opts = append(opts, search.WithRelax(e.Vars(), settings.Relax))
	}
	c := search.New[sat.Order](e, s, order, budget, opts...)
	ok := c.Labeling(ctx)
	r.printStats(c.Stats)
	code := r.status(s.Model() != nil, pb.Optim(), ok, c.Stats)
	if vals := s.Model(); vals != nil {
		if pb.NbOrig > 0 {
			vals = vals[:pb.NbOrig]
		}
		lits := make([]string, len(vals))
		for i, val := range vals {
			if val {
				lits[i] = strconv.Itoa(i + 1)
			} else {
				lits[i] = strconv.Itoa(-i - 1)
			}
		}
		fmt.Fprintf(r.out, "v %s\n", strings.Join(lits, " "))
	}
	return code, nil
}

func (r *runner) solveModel(ctx context.Context, m *model.Model) (int, error) {
	if err := m.SetRestart(r.opts.restart(m.Restart, r.flags)); err != nil {
		return 0, err
	}
	if r.opts.verbose {
		fmt.Fprintf(r.out, "c nb vars: %d\n", len(m.Vars))
	}
	opts := []search.Option{search.WithLogger(r.log), search.WithRecorder(r.rec)}
	var c *search.Controller[*fd.Selector]
	if m.Optim() {
		opts = append(opts, search.WithReport(func() {
			fmt.Fprintf(r.out, "o %v\n", m.Objective(c.Best()))
		}))
	}
	d, c := m.Controller(opts...)
	ok := c.Labeling(ctx)
	r.printStats(c.Stats)
	sol := d.Solution()
	code := r.status(sol != nil, m.Optim(), ok, c.Stats)
	if sol != nil {
		vals := make([]string, len(m.Vars))
		for i, x := range m.Vars {
			vals[i] = fmt.Sprintf("%s=%d", x.Name(), sol[x.Name()])
		}
		fmt.Fprintf(r.out, "v %s\n", strings.Join(vals, " "))
	}
	return code, nil
}

func (r *runner) printStats(stats search.Stats) {
	if !r.opts.verbose {
		return
	}
	fmt.Fprintf(r.out, "c nb attempts: %d\nc nb restarts: %d\nc nb fails: %d\nc nb solutions: %d\n",
		stats.NbAttempts, stats.NbRestarts, stats.NbFails, stats.NbSolutions)
}

// status prints the status line and returns the matching exit code.
// Without a solution, the problem is only proved infeasible if the last
// attempt explored its whole search space, with no variable forced. The
// same holds for the optimality of the best solution, since a restart
// limit can stop the controller on a successful but partial attempt.
func (r *runner) status(found, optim, ok bool, stats search.Stats) int {
	last := r.rec.last
	complete := last.Forced == 0 && (last.Outcome == search.Unsat || last.Outcome == search.Sat && last.Fails < last.Budget)
	switch {
	case found && optim && ok && complete:
		fmt.Fprintln(r.out, "s OPTIMUM FOUND")
		return exitOptimum
	case found:
		fmt.Fprintln(r.out, "s SATISFIABLE")
		return exitSat
	case !stats.TimedOut && last.Outcome == search.Unsat && last.Forced == 0:
		fmt.Fprintln(r.out, "s UNSATISFIABLE")
		return exitUnsat
	default:
		fmt.Fprintln(r.out, "s UNKNOWN")
		return exitUnknown
	}
}
