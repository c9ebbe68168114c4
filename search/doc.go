/*
Package search drives a backtracking search under a restart strategy.

A Controller wraps a depth-first search and runs it repeatedly, each run
(an attempt) bounded by a fail budget. When an attempt exhausts its budget,
the store is unwound to the level the controller started from, the budget
grows according to its schedule and the search starts again. Two schedules
are provided: Luby and Geometric.

Optimization

When a cost is given, every accepted solution updates a CostBound. Between
attempts the controller posts a permanent constraint forcing the next
solution to be strictly better than the best one found so far, so that the
sequence of accepted costs is strictly decreasing.

Relax and reconstruct

Once a solution is known, the controller can re-fix, at the start of each
attempt, a random subset of decision variables to the value they had in that
solution. The draw uses a generator seeded at construction, so a run is
reproducible given the same seed.

Collaborators

The controller does not know how domains are represented or how
propagation works. It only needs a Store (backtracking levels) and a Search
(one attempt, plus the handles of its nested child searches). The fd and sat
packages provide implementations of both.
*/
package search
