package fd

import (
	"fmt"
	"sort"
	"strings"
)

// An IntVar is a finite-domain integer variable.
// Its domain is kept as a sorted slice that is never modified in place,
// so that saving it on the trail costs nothing.
type IntVar struct {
	store *Store
	name  string
	id    int
	dom   []int
	stamp int
}

// Name returns the name of v.
func (v *IntVar) Name() string { return v.name }

// Size returns the number of values in the domain.
func (v *IntVar) Size() int { return len(v.dom) }

// Singleton is true if v has exactly one value left.
func (v *IntVar) Singleton() bool { return len(v.dom) == 1 }

// Min returns the smallest value of the domain. The domain must not be empty.
func (v *IntVar) Min() int { return v.dom[0] }

// Max returns the greatest value of the domain. The domain must not be empty.
func (v *IntVar) Max() int { return v.dom[len(v.dom)-1] }

// Values returns the domain. The returned slice must not be modified.
func (v *IntVar) Values() []int { return v.dom }

// Contains is true if val is in the domain.
func (v *IntVar) Contains(val int) bool {
	i := sort.SearchInts(v.dom, val)
	return i < len(v.dom) && v.dom[i] == val
}

// Value returns the value of an assigned variable, or its smallest value.
func (v *IntVar) Value() int {
	if len(v.dom) == 0 {
		return 0
	}
	return v.dom[0]
}

// SetMin removes all values below min. It returns false if the domain becomes empty.
func (v *IntVar) SetMin(min int) bool {
	if len(v.dom) == 0 {
		return false
	}
	if min <= v.dom[0] {
		return true
	}
	return v.update(v.dom[sort.SearchInts(v.dom, min):])
}

// SetMax removes all values above max.
func (v *IntVar) SetMax(max int) bool {
	if len(v.dom) == 0 {
		return false
	}
	if max >= v.dom[len(v.dom)-1] {
		return true
	}
	return v.update(v.dom[:sort.SearchInts(v.dom, max+1)])
}

// Remove removes val from the domain.
func (v *IntVar) Remove(val int) bool {
	i := sort.SearchInts(v.dom, val)
	if i == len(v.dom) || v.dom[i] != val {
		return len(v.dom) != 0
	}
	dom := make([]int, 0, len(v.dom)-1)
	dom = append(dom, v.dom[:i]...)
	dom = append(dom, v.dom[i+1:]...)
	return v.update(dom)
}

// Assign reduces the domain to val. If val is not in the domain, the
// domain becomes empty and the store inconsistent.
func (v *IntVar) Assign(val int) bool {
	if v.Singleton() && v.dom[0] == val {
		return true
	}
	if !v.Contains(val) {
		return v.update(nil)
	}
	return v.update([]int{val})
}

func (v *IntVar) update(dom []int) bool {
	if len(dom) == len(v.dom) {
		return len(dom) != 0
	}
	v.store.saveInt(v)
	v.dom = dom
	v.store.changes++
	if len(dom) == 0 {
		v.store.failed = true
		return false
	}
	return true
}

// PostLess imposes v < bound at the current level.
func (v *IntVar) PostLess(bound int) {
	v.store.Impose(&xLessC{x: v, c: bound})
}

// Force assigns val to v at the current level.
func (v *IntVar) Force(val int) {
	v.Assign(val)
}

func (v *IntVar) String() string {
	switch len(v.dom) {
	case 0:
		return v.name + "::{}"
	case 1:
		return fmt.Sprintf("%s = %d", v.name, v.dom[0])
	}
	if v.Max()-v.Min()+1 == len(v.dom) {
		return fmt.Sprintf("%s::%d..%d", v.name, v.Min(), v.Max())
	}
	vals := make([]string, len(v.dom))
	for i, val := range v.dom {
		vals[i] = fmt.Sprint(val)
	}
	return fmt.Sprintf("%s::{%s}", v.name, strings.Join(vals, ","))
}

// A FloatVar is a real-valued variable with an interval domain.
type FloatVar struct {
	store *Store
	name  string
	lo    float64
	hi    float64
	stamp int
}

// Name returns the name of v.
func (v *FloatVar) Name() string { return v.name }

// Min returns the lower bound.
func (v *FloatVar) Min() float64 { return v.lo }

// Max returns the upper bound.
func (v *FloatVar) Max() float64 { return v.hi }

// Value returns the lower bound, which is the value of v once its bounds met.
func (v *FloatVar) Value() float64 { return v.lo }

// SetMin raises the lower bound.
func (v *FloatVar) SetMin(lo float64) bool {
	if lo <= v.lo {
		return v.lo <= v.hi
	}
	return v.update(lo, v.hi)
}

// SetMax lowers the upper bound.
func (v *FloatVar) SetMax(hi float64) bool {
	if hi >= v.hi {
		return v.lo <= v.hi
	}
	return v.update(v.lo, hi)
}

func (v *FloatVar) update(lo, hi float64) bool {
	v.store.saveFloat(v)
	v.lo, v.hi = lo, hi
	v.store.changes++
	if lo > hi {
		v.store.failed = true
		return false
	}
	return true
}

// PostLessEq imposes v <= bound at the current level.
func (v *FloatVar) PostLessEq(bound float64) {
	v.store.Impose(&fLessEqC{x: v, c: bound})
}

func (v *FloatVar) String() string {
	if v.lo == v.hi {
		return fmt.Sprintf("%s = %g", v.name, v.lo)
	}
	return fmt.Sprintf("%s::[%g, %g]", v.name, v.lo, v.hi)
}

// normalize returns the sorted values without duplicates.
func normalize(values []int) []int {
	res := append([]int(nil), values...)
	sort.Ints(res)
	j := 0
	for i, val := range res {
		if i == 0 || val != res[j-1] {
			res[j] = val
			j++
		}
	}
	return res[:j]
}
