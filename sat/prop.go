package sat

import "github.com/go-air/gini/z"

// A propagator stores clauses over gini literals and propagates
// assignments with two watched literals. It receives the CNF of a logic
// circuit through Add, as any gini Adder.
//
// Assignments are kept on a trail. Lits assigned before the first mark
// taken with len(p.trail) are permanent, as well as clauses.
type propagator struct {
	clauses  [][]z.Lit
	watches  [][]int // watches[m] lists the clauses where m is one of the first two lits
	vals     []int8  // vals[v] is 1 if v is true, -1 if false, 0 if unbound
	trail    []z.Lit
	head     int     // Index of the next trail lit to propagate
	pending  []z.Lit // Lits of the clause being added
	conflict bool    // Whether the permanent clauses are inconsistent
}

// Add adds m to the clause being built. z.LitNull ends the clause.
func (p *propagator) Add(m z.Lit) {
	if m != z.LitNull {
		p.pending = append(p.pending, m)
		return
	}
	p.addClause(p.pending)
	p.pending = p.pending[:0]
}

// grow makes room for vars up to v.
func (p *propagator) grow(v z.Var) {
	for len(p.vals) <= int(v) {
		p.vals = append(p.vals, 0)
		p.watches = append(p.watches, nil, nil)
	}
}

func (p *propagator) value(m z.Lit) int8 {
	return p.vals[m.Var()] * m.Sign()
}

// addClause adds a permanent clause. It must only be called when the trail
// only holds permanent lits. Lits false on the trail are removed, and
// clauses satisfied by the trail are ignored.
func (p *propagator) addClause(ms []z.Lit) {
	for _, m := range ms {
		p.grow(m.Var())
	}
	if p.conflict {
		return
	}
	clause := make([]z.Lit, 0, len(ms))
	for _, m := range ms {
		switch p.value(m) {
		case 1:
			return
		case -1:
			continue
		}
		dup := false
		for _, n := range clause {
			if n == m.Not() {
				return
			}
			dup = dup || n == m
		}
		if !dup {
			clause = append(clause, m)
		}
	}
	switch len(clause) {
	case 0:
		p.conflict = true
	case 1:
		p.conflict = !p.assign(clause[0]) || !p.propagate()
	default:
		idx := len(p.clauses)
		p.clauses = append(p.clauses, clause)
		p.watches[clause[0]] = append(p.watches[clause[0]], idx)
		p.watches[clause[1]] = append(p.watches[clause[1]], idx)
	}
}

// assign makes m true. It returns false if m was already false.
func (p *propagator) assign(m z.Lit) bool {
	p.grow(m.Var())
	switch p.value(m) {
	case 1:
		return true
	case -1:
		return false
	}
	p.vals[m.Var()] = m.Sign()
	p.trail = append(p.trail, m)
	return true
}

// propagate assigns the lits implied by the trail. It returns false on
// conflict; the trail is then left as is, partially propagated.
func (p *propagator) propagate() bool {
	for p.head < len(p.trail) {
		f := p.trail[p.head].Not()
		p.head++
		ws := p.watches[f]
		j := 0
		for i := 0; i < len(ws); i++ {
			idx := ws[i]
			c := p.clauses[idx]
			if c[0] == f {
				c[0], c[1] = c[1], c[0]
			}
			if p.value(c[0]) == 1 {
				ws[j] = idx
				j++
				continue
			}
			moved := false
			for k := 2; k < len(c); k++ {
				if p.value(c[k]) != -1 {
					c[1], c[k] = c[k], c[1]
					p.watches[c[1]] = append(p.watches[c[1]], idx)
					moved = true
					break
				}
			}
			if moved {
				continue
			}
			ws[j] = idx
			j++
			if !p.assign(c[0]) {
				j += copy(ws[j:], ws[i+1:])
				p.watches[f] = ws[:j]
				return false
			}
		}
		p.watches[f] = ws[:j]
	}
	return true
}

// undo unbinds the lits assigned since the trail had length n.
func (p *propagator) undo(n int) {
	for _, m := range p.trail[n:] {
		p.vals[m.Var()] = 0
	}
	p.trail = p.trail[:n]
	if p.head > n {
		p.head = n
	}
}
