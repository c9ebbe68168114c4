package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/gophercp/model"
)

// Exit codes, as SAT and MAXSAT competitions expect them.
const (
	exitUnknown = 0
	exitSat     = 10
	exitUnsat   = 20
	exitOptimum = 30
)

type options struct {
	schedule    string
	scale       int
	base        float64
	seed        int64
	relax       int
	maxRestarts int
	timeout     time.Duration
	solutions   int
	verbose     bool
	metricsAddr string
}

func newRootCmd(code *int) *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:   "gophercp [flags] FILE",
		Short: "Solves constraint problems with a restart-based backtracking search",
		Long: `Solves constraint problems with a restart-based backtracking search.

FILE is a DIMACS CNF file (.cnf), a pseudo-boolean problem (.opb), a weighted
partial MAXSAT problem (.wcnf) or a finite-domain model (.yaml). Flags
override the restart section of a model.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.WarnLevel)
			if o.verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
			r := &runner{
				out:   cmd.OutOrStdout(),
				log:   logger,
				opts:  o,
				flags: cmd.Flags(),
			}
			c, err := r.run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			*code = c
			return nil
		},
	}

	cmd.Flags().StringVar(&o.schedule, "schedule", model.DefaultSchedule, "fail budget schedule, luby or geometric")
	cmd.Flags().IntVar(&o.scale, "scale", model.DefaultScale, "number of fails of the smallest budget")
	cmd.Flags().Float64Var(&o.base, "base", model.DefaultBase, "growth factor of the geometric schedule")
	cmd.Flags().Int64Var(&o.seed, "seed", model.DefaultSeed, "seed of relax and reconstruct and of random value orders")
	cmd.Flags().IntVar(&o.relax, "relax", 0, "probability, in percent, to keep a variable of the last solution when restarting")
	cmd.Flags().IntVar(&o.maxRestarts, "max-restarts", -1, "maximum number of restarts, negative for no limit")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "time limit, checked between attempts. 0 means no limit")
	cmd.Flags().IntVar(&o.solutions, "solutions", 0, "stop after that many solutions. 0 means no limit")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "log the activity of the search")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on that address while solving")

	return cmd
}

// restart returns r where every flag set on the command line overrides
// the matching setting.
func (o options) restart(r model.Restart, flags *pflag.FlagSet) model.Restart {
	if flags.Changed("schedule") {
		r.Schedule = o.schedule
	}
	if flags.Changed("scale") {
		r.Scale = o.scale
	}
	if flags.Changed("base") {
		r.Base = o.base
	}
	if flags.Changed("seed") {
		r.Seed = o.seed
	}
	if flags.Changed("relax") {
		r.Relax = o.relax
	}
	if flags.Changed("max-restarts") {
		n := o.maxRestarts
		r.MaxRestarts = &n
	}
	if flags.Changed("timeout") {
		r.Timeout = o.timeout
	}
	if flags.Changed("solutions") {
		r.Solutions = o.solutions
	}
	return r
}
