package search

import "math"

// maxLimit caps the ceilings so that unbounded growth cannot overflow.
const maxLimit = math.MaxInt32

// A Budget bounds the number of fails allowed during an attempt.
// It is installed as a consistency listener on every search handle: each
// failed consistency check counts as a fail, and once the ceiling is
// reached the search is told to stop.
type Budget interface {
	ConsistencyListener
	// NewLimit computes the next ceiling and resets the fail count.
	NewLimit()
	// Limit returns the current ceiling. It is always at least 1.
	Limit() int
	// Fails returns the number of fails since the last call to NewLimit.
	Fails() int
	// Exhausted is true once Fails reached Limit.
	Exhausted() bool
}

// failCounter holds the state shared by all schedules.
type failCounter struct {
	limit int
	fails int
}

func (c *failCounter) AfterConsistency(consistent bool) bool {
	if !consistent {
		c.fails++
	}
	return c.fails < c.limit
}

func (c *failCounter) Limit() int      { return c.limit }
func (c *failCounter) Fails() int      { return c.fails }
func (c *failCounter) Exhausted() bool { return c.fails >= c.limit }

func (c *failCounter) setLimit(l float64) {
	switch {
	case l < 1:
		c.limit = 1
	case l > maxLimit:
		c.limit = maxLimit
	default:
		c.limit = int(l)
	}
	c.fails = 0
}

// Luby is a fail budget whose ceilings follow the Luby sequence,
// multiplied by a scale factor: scale, scale, 2*scale, scale, scale, 2*scale, 4*scale...
type Luby struct {
	failCounter
	scale int
	n     int
}

// NewLuby returns a Luby budget. A scale below 1 is treated as 1.
func NewLuby(scale int) *Luby {
	if scale < 1 {
		scale = 1
	}
	l := &Luby{scale: scale, n: 1}
	l.setLimit(float64(scale * luby(l.n)))
	return l
}

// NewLimit implements Budget.
func (l *Luby) NewLimit() {
	l.n++
	l.setLimit(float64(l.scale) * float64(luby(l.n)))
}

// Geometric is a fail budget whose ceilings grow geometrically:
// round(base^n) * scale, n being incremented at each new limit.
type Geometric struct {
	failCounter
	base  float64
	scale int
	n     int
}

// NewGeometric returns a geometric budget. The first ceiling is scale.
// A scale below 1 is treated as 1 and a base below 1 as 1.
func NewGeometric(base float64, scale int) *Geometric {
	if scale < 1 {
		scale = 1
	}
	if base < 1 {
		base = 1
	}
	g := &Geometric{base: base, scale: scale}
	g.setLimit(float64(scale))
	return g
}

// NewLimit implements Budget.
func (g *Geometric) NewLimit() {
	g.n++
	g.setLimit(math.Round(math.Pow(g.base, float64(g.n))) * float64(g.scale))
}

// luby returns the ith term of the Luby sequence, i starting at 1.
func luby(i int) int {
	if i <= 1 {
		return 1
	}
	l := math.Log2(float64(i + 1))
	if r := math.Round(l); math.Abs(l-r) < 1e-8 {
		return 1 << (int(r) - 1)
	}
	k := int(math.Floor(l))
	return luby(i - (1 << k) + 1)
}
