// Package model loads finite-domain problems described in YAML.
//
// A model file declares integer variables, constraints over them, an
// optional objective and the settings of the search and of its restart
// strategy:
//
//	variables:
//	  - {name: x, min: 0, max: 9}
//	  - {name: y, values: [1, 3, 5]}
//	constraints:
//	  - alldifferent: [x, y]
//	  - linear: {vars: [x, y], coeffs: [2, 3], op: "<=", rhs: 12}
//	objective:
//	  maximize: {vars: [x, y], coeffs: [1, 1]}
//	search: {vars: first-fail, values: max}
//	restart: {schedule: luby, scale: 10, relax: 30, timeout: 10s}
package model

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gophercp/fd"
	"github.com/crillab/gophercp/search"
)

// Defaults of the restart section.
const (
	DefaultSchedule = "luby"
	DefaultScale    = 10
	DefaultBase     = 1.5
	DefaultSeed     = 1
)

// File is the YAML representation of a model.
type File struct {
	Variables   []Variable   `yaml:"variables"`
	Constraints []Constraint `yaml:"constraints"`
	Objective   *Objective   `yaml:"objective,omitempty"`
	Search      Search       `yaml:"search"`
	Restart     Restart      `yaml:"restart"`
}

// A Variable is either a range, with Min and Max, or a list of Values.
type Variable struct {
	Name   string `yaml:"name"`
	Min    *int   `yaml:"min,omitempty"`
	Max    *int   `yaml:"max,omitempty"`
	Values []int  `yaml:"values,omitempty"`
}

// A Constraint has exactly one of its fields set.
type Constraint struct {
	AllDifferent []string `yaml:"alldifferent,omitempty"`
	NotEqual     []string `yaml:"neq,omitempty"`
	Less         []string `yaml:"lt,omitempty"`
	Linear       *Linear  `yaml:"linear,omitempty"`
	Sum          *Sum     `yaml:"sum,omitempty"`
}

// Linear is sum(coeffs[i]*vars[i]) op rhs.
type Linear struct {
	Vars   []string `yaml:"vars"`
	Coeffs []int    `yaml:"coeffs"`
	Op     string   `yaml:"op"`
	Rhs    int      `yaml:"rhs"`
}

// Sum is sum(coeffs[i]*vars[i]) = total.
type Sum struct {
	Vars   []string `yaml:"vars"`
	Coeffs []int    `yaml:"coeffs"`
	Total  string   `yaml:"total"`
}

// Expr is a linear expression. Coeffs must be integers unless the
// objective is real.
type Expr struct {
	Vars   []string  `yaml:"vars"`
	Coeffs []float64 `yaml:"coeffs"`
}

// Objective has exactly one of Minimize and Maximize set.
type Objective struct {
	Minimize *Expr `yaml:"minimize,omitempty"`
	Maximize *Expr `yaml:"maximize,omitempty"`
	Real     bool  `yaml:"real,omitempty"`
}

// Search tells how choice points are picked.
type Search struct {
	Vars   string `yaml:"vars"`
	Values string `yaml:"values"`
}

// Restart holds the settings of the restart controller.
type Restart struct {
	Schedule    string        `yaml:"schedule"`
	Scale       int           `yaml:"scale"`
	Base        float64       `yaml:"base"`
	Seed        int64         `yaml:"seed"`
	Relax       int           `yaml:"relax"`
	RelaxVars   []string      `yaml:"relax-vars"`
	MaxRestarts *int          `yaml:"max-restarts"`
	Timeout     time.Duration `yaml:"timeout"`
	Solutions   int           `yaml:"solutions"`
}

// Budget returns the fail budget described by r.
func (r Restart) Budget() (search.Budget, error) {
	scale := r.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	if scale < 0 {
		return nil, errors.Errorf("invalid scale %d", scale)
	}
	switch r.Schedule {
	case "", "luby":
		return search.NewLuby(scale), nil
	case "geometric":
		base := r.Base
		if base == 0 {
			base = DefaultBase
		}
		if base < 1 {
			return nil, errors.Errorf("invalid geometric base %g", base)
		}
		return search.NewGeometric(base, scale), nil
	default:
		return nil, errors.Errorf("invalid schedule %q: expected \"luby\" or \"geometric\"", r.Schedule)
	}
}

// Validate checks the settings do not depend on a model.
func (r Restart) Validate() error {
	if _, err := r.Budget(); err != nil {
		return err
	}
	if r.Relax < 0 || r.Relax > 100 {
		return errors.Errorf("relax must be a percentage, got %d", r.Relax)
	}
	if r.Solutions < 0 {
		return errors.Errorf("invalid solution limit %d", r.Solutions)
	}
	return nil
}

func (r Restart) seed() int64 {
	if r.Seed == 0 {
		return DefaultSeed
	}
	return r.Seed
}

// Options returns the seed and the limits of r as controller options.
func (r Restart) Options() []search.Option {
	opts := []search.Option{search.WithSeed(r.seed())}
	if r.MaxRestarts != nil {
		opts = append(opts, search.WithRestartLimit(*r.MaxRestarts))
	}
	if r.Timeout > 0 {
		opts = append(opts, search.WithTimeout(r.Timeout))
	}
	return opts
}

// A Model is a loaded problem, ready to be searched.
type Model struct {
	Store    *fd.Store
	Vars     []*fd.IntVar // Decision variables, in declaration order
	Selector *fd.Selector
	Restart  Restart
	Maximize bool

	cost      search.Cost
	costInt   *fd.IntVar
	relaxVars []search.Relaxable
}

// Load reads a YAML model from r. Unknown fields are errors.
func Load(r io.Reader) (*Model, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "could not decode model")
	}
	return f.Build()
}

// Build creates the store, the variables and the constraints of f.
func (f *File) Build() (*Model, error) {
	m := &Model{Store: fd.NewStore()}
	if len(f.Variables) == 0 {
		return nil, errors.New("no variable declared")
	}
	for i, v := range f.Variables {
		x, err := m.declare(v)
		if err != nil {
			return nil, errors.Wrapf(err, "variable #%d", i+1)
		}
		m.Vars = append(m.Vars, x)
	}
	for i, c := range f.Constraints {
		if err := m.impose(c); err != nil {
			return nil, errors.Wrapf(err, "constraint #%d", i+1)
		}
	}
	if f.Objective != nil {
		if err := m.objective(f.Objective); err != nil {
			return nil, errors.Wrap(err, "objective")
		}
	}
	varOrder, err := fd.ParseVarOrder(f.Search.Vars)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}
	valOrder, err := fd.ParseValueOrder(f.Search.Values)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}
	m.Selector = fd.NewSelector(m.Vars, varOrder, valOrder)
	if err := m.SetRestart(f.Restart); err != nil {
		return nil, errors.Wrap(err, "restart")
	}
	return m, nil
}

// SetRestart validates r and makes it the restart settings of m.
func (m *Model) SetRestart(r Restart) error {
	if err := r.Validate(); err != nil {
		return err
	}
	var relaxVars []search.Relaxable
	if r.Relax > 0 {
		names := r.RelaxVars
		if len(names) == 0 {
			for _, x := range m.Vars {
				names = append(names, x.Name())
			}
		}
		xs, err := m.lookup(names)
		if err != nil {
			return err
		}
		for _, x := range xs {
			relaxVars = append(relaxVars, x)
		}
	}
	m.Restart = r
	m.relaxVars = relaxVars
	return nil
}

func (m *Model) declare(v Variable) (*fd.IntVar, error) {
	if v.Name == "" {
		return nil, errors.New("missing name")
	}
	if strings.HasPrefix(v.Name, "_") {
		return nil, errors.Errorf("%q: names starting with _ are reserved", v.Name)
	}
	if m.Store.Lookup(v.Name) != nil {
		return nil, errors.Errorf("%q declared twice", v.Name)
	}
	switch {
	case v.Values != nil && (v.Min != nil || v.Max != nil):
		return nil, errors.Errorf("%q has both values and bounds", v.Name)
	case v.Values != nil:
		if len(v.Values) == 0 {
			return nil, errors.Errorf("%q has an empty domain", v.Name)
		}
		return m.Store.IntVarValues(v.Name, v.Values...), nil
	case v.Min == nil || v.Max == nil:
		return nil, errors.Errorf("%q needs min and max, or values", v.Name)
	case *v.Min > *v.Max:
		return nil, errors.Errorf("%q has an empty domain %d..%d", v.Name, *v.Min, *v.Max)
	default:
		return m.Store.IntVar(v.Name, *v.Min, *v.Max), nil
	}
}

func (m *Model) lookup(names []string) ([]*fd.IntVar, error) {
	res := make([]*fd.IntVar, len(names))
	for i, name := range names {
		if res[i] = m.Store.Lookup(name); res[i] == nil {
			return nil, errors.Errorf("unknown variable %q", name)
		}
	}
	return res, nil
}

func (m *Model) pair(names []string) (*fd.IntVar, *fd.IntVar, error) {
	if len(names) != 2 {
		return nil, nil, errors.Errorf("expected 2 variables, got %d", len(names))
	}
	xs, err := m.lookup(names)
	if err != nil {
		return nil, nil, err
	}
	return xs[0], xs[1], nil
}

func (m *Model) impose(c Constraint) error {
	set := 0
	for _, ok := range []bool{c.AllDifferent != nil, c.NotEqual != nil, c.Less != nil, c.Linear != nil, c.Sum != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("expected exactly one constraint kind, got %d", set)
	}
	switch {
	case c.AllDifferent != nil:
		xs, err := m.lookup(c.AllDifferent)
		if err != nil {
			return err
		}
		m.Store.Impose(fd.AllDifferent(xs...))
	case c.NotEqual != nil:
		x, y, err := m.pair(c.NotEqual)
		if err != nil {
			return err
		}
		m.Store.Impose(fd.NotEqual(x, y))
	case c.Less != nil:
		x, y, err := m.pair(c.Less)
		if err != nil {
			return err
		}
		m.Store.Impose(fd.LessThan(x, y))
	case c.Linear != nil:
		xs, err := m.terms(c.Linear.Vars, len(c.Linear.Coeffs))
		if err != nil {
			return err
		}
		op, err := fd.ParseOp(c.Linear.Op)
		if err != nil {
			return err
		}
		m.Store.Impose(fd.Linear(xs, c.Linear.Coeffs, op, c.Linear.Rhs))
	default:
		xs, err := m.terms(c.Sum.Vars, len(c.Sum.Coeffs))
		if err != nil {
			return err
		}
		total := m.Store.Lookup(c.Sum.Total)
		if total == nil {
			return errors.Errorf("unknown variable %q", c.Sum.Total)
		}
		m.Store.Impose(fd.Sum(xs, c.Sum.Coeffs, total))
	}
	return nil
}

func (m *Model) terms(names []string, nbCoeffs int) ([]*fd.IntVar, error) {
	if len(names) != nbCoeffs {
		return nil, errors.Errorf("%d variables but %d coefficients", len(names), nbCoeffs)
	}
	if len(names) == 0 {
		return nil, errors.New("empty sum")
	}
	return m.lookup(names)
}

// objective creates the cost variable. A maximized expression is minimized
// with opposite coefficients.
func (m *Model) objective(o *Objective) error {
	e := o.Minimize
	switch {
	case o.Minimize != nil && o.Maximize != nil:
		return errors.New("both minimize and maximize are set")
	case o.Maximize != nil:
		e = o.Maximize
		m.Maximize = true
	case o.Minimize == nil:
		return errors.New("expected minimize or maximize")
	}
	xs, err := m.terms(e.Vars, len(e.Coeffs))
	if err != nil {
		return err
	}
	coeffs := make([]float64, len(e.Coeffs))
	lo, hi := 0.0, 0.0
	for i, c := range e.Coeffs {
		if m.Maximize {
			c = -c
		}
		coeffs[i] = c
		if c >= 0 {
			lo += c * float64(xs[i].Min())
			hi += c * float64(xs[i].Max())
		} else {
			lo += c * float64(xs[i].Max())
			hi += c * float64(xs[i].Min())
		}
	}
	if o.Real {
		f := m.Store.FloatVar("_cost", lo, hi)
		m.Store.Impose(fd.Scale(xs, coeffs, f))
		m.cost = search.RealCost(f)
		return nil
	}
	ints := make([]int, len(coeffs))
	for i, c := range coeffs {
		if c != math.Trunc(c) {
			return errors.Errorf("coefficient %g is not an integer, set real: true", e.Coeffs[i])
		}
		ints[i] = int(c)
	}
	m.costInt = m.Store.IntVar("_cost", int(lo), int(hi))
	m.Store.Impose(fd.Sum(xs, ints, m.costInt))
	m.cost = search.IntCost(m.costInt)
	return nil
}

// Optim is true if the model has an objective.
func (m *Model) Optim() bool { return m.cost.Valid() }

// Cost returns the cost the search minimizes. It is not valid if the model
// has no objective.
func (m *Model) Cost() search.Cost { return m.cost }

// Objective returns the best objective value recorded by b, in the
// direction it was declared.
func (m *Model) Objective(b *search.CostBound) float64 {
	v := b.BestReal()
	if m.costInt != nil {
		v = float64(b.BestInt())
	}
	if m.Maximize {
		return -v
	}
	return v
}

// Budget returns the fail budget of the restart section.
func (m *Model) Budget() search.Budget {
	b, err := m.Restart.Budget()
	if err != nil { // Checked by SetRestart
		panic(err)
	}
	return b
}

// Options returns the controller options of the model.
func (m *Model) Options() []search.Option {
	opts := m.Restart.Options()
	if m.cost.Valid() {
		opts = append(opts, search.WithCost(m.cost))
	}
	if m.Restart.Relax > 0 {
		opts = append(opts, search.WithRelax(m.relaxVars, m.Restart.Relax))
	}
	return opts
}

// Controller returns a depth-first search over the model and the restart
// controller driving it. opts are applied after the options of the model.
func (m *Model) Controller(opts ...search.Option) (*fd.DepthFirst, *search.Controller[*fd.Selector]) {
	d := fd.NewDepthFirst(m.Store)
	if m.Restart.Solutions > 0 {
		d.Solutions().SetLimit(m.Restart.Solutions)
	}
	m.Selector.SetSeed(m.Restart.seed())
	c := search.New[*fd.Selector](m.Store, d, m.Selector, m.Budget(), append(m.Options(), opts...)...)
	return d, c
}
