// Package maxsat provides an optimization front end for SAT/PB problems over named variables.
// It allows the user to provide weighted partial MAXSAT problems or weighted pseudo-booleans problems.
//
// Definition
//
// A MAXSAT problem is a problem where, contrary to "plain-old" SAT decision problems,
// the user is not looking at whether the problem can be solved at all, but, if it cannot be solved,
// if at least a subset of it can be solved, with that subset being as big as important.
// In other words, the MAXSAT solver is trying to find a model that satisfies as many clauses as possible,
// ideally all of them.
//
// Pure MAXSAT is not very useful in practice. Generally, the user wants to add two more constraints :
// - a subset of the problem must be satisfied, no matter what; these are called *hard clauses*,
// - other clauses (called *soft clauses*) are optional, but some of them are deemed more important than
// others: they are associated with a cost.
//
// That problem is called weighted partial MAXSAT (WP-MAXSAT). Note that MAXSAT is a special case of WP-MAXSAT
// where all the clauses are soft clauses of weight 1. Also note that the traditional, SAT decision problem
// is a special case of WP-MAXSAT where all clauses are hard clauses.
//
// Solving
//
// Each soft constraint gets a blocking literal that satisfies it on its own; the cost of a model is the sum
// of the weights of its true blocking literals. The problem is solved by a search.Controller running a
// sat.Search under a Luby fail budget: every better model tightens the bound on the cost, and the run stops
// once an attempt explored its whole search space. Given enough time, the model returned is optimal.
// With a timeout, the best model found so far is returned.
package maxsat
