// Package exhaustive is a small, dependency-free Backend for the
// assignment-shaped MILPs this system produces: a handful of binary
// decision variables plus integer/continuous variables whose value is
// always pinned by a monotone chain of lower/upper bound constraints once
// the binaries are fixed — the dock-assignment stage is exactly this
// shape. It branches over every binary combination and, for each
// feasible one, resolves the remaining variables by constraint
// propagation rather than a general simplex pass.
//
// It is not a general-purpose MILP solver — problems with two still-free
// continuous variables tied together in one constraint (stage-2's
// ordering/overlap helpers) are out of its reach. solver.GolpBackend is the
// general-purpose alternative for those and for larger instances.
package exhaustive

import (
	"context"
	"fmt"
	"math"

	"github.com/pinggolf/dockplanner/internal/solver"
)

const epsilon = 1e-6

// Backend is a brute-force-over-binaries, propagate-the-rest solver.
type Backend struct {
	// MaxBinaryVars bounds 2^n enumeration; problems above this size are
	// rejected rather than silently taking forever.
	MaxBinaryVars int
}

// New returns a Backend with a sane default size cap.
func New() *Backend {
	return &Backend{MaxBinaryVars: 24}
}

func (b *Backend) Solve(ctx context.Context, p *solver.Problem) (solver.Solution, error) {
	var binaryVars []solver.Var
	for v := 0; v < p.NumVars(); v++ {
		if p.VarKind(solver.Var(v)) == solver.Binary {
			binaryVars = append(binaryVars, solver.Var(v))
		}
	}
	if len(binaryVars) > b.MaxBinaryVars {
		return solver.Solution{}, fmt.Errorf("exhaustive: %d binary vars exceeds cap of %d", len(binaryVars), b.MaxBinaryVars)
	}

	var best *solver.Solution
	combos := uint64(1) << uint(len(binaryVars))
	for combo := uint64(0); combo < combos; combo++ {
		if err := ctx.Err(); err != nil {
			return solver.Solution{}, err
		}

		fixed := make(map[solver.Var]float64, len(binaryVars))
		for i, v := range binaryVars {
			if combo&(1<<uint(i)) != 0 {
				fixed[v] = 1
			} else {
				fixed[v] = 0
			}
		}

		values, ok := propagate(p, fixed)
		if !ok {
			continue
		}

		obj := 0.0
		for v, coeff := range p.Objective() {
			obj += coeff * values[v]
		}

		if best == nil || (p.Minimize && obj < best.Objective-epsilon) || (!p.Minimize && obj > best.Objective+epsilon) {
			best = &solver.Solution{Status: solver.StatusOptimal, Values: values, Objective: obj}
		}
	}

	if best == nil {
		return solver.Solution{Status: solver.StatusInfeasible}, nil
	}
	return *best, nil
}

// propagate resolves every non-binary variable of p given a fixed binary
// assignment, by repeatedly (a) tightening lower/upper bounds from
// constraints with exactly one still-unresolved term, and (b) once no more
// tightening is possible, finalizing one unresolved variable to its
// tightest known lower bound (the minimal feasible value, which is also
// optimal for every monotone-minimizing objective this system builds) and
// re-propagating. It returns false if any constraint can be shown
// infeasible.
func propagate(p *solver.Problem, fixed map[solver.Var]float64) (map[solver.Var]float64, bool) {
	values := make(map[solver.Var]float64, p.NumVars())
	for v, val := range fixed {
		values[v] = val
	}
	lower := make(map[solver.Var]float64)
	upper := make(map[solver.Var]float64)
	hasUpper := make(map[solver.Var]bool)

	for {
		changed := tightenOnce(p, values, lower, upper, hasUpper)
		if changed {
			continue
		}

		// Nothing left to tighten this round. Finalize exactly one
		// still-unresolved variable to its tightest known lower bound,
		// then resume propagation. Variables that already carry a lower
		// bound go first: they are the ones pinned by fully-known
		// constraints, and finalizing an as-yet-unbounded variable ahead
		// of them (a makespan variable before the completions that feed
		// it) would freeze it at zero and falsely cut the combination off.
		pick := -1
		for v := 0; v < p.NumVars(); v++ {
			vv := solver.Var(v)
			if _, ok := values[vv]; ok {
				continue
			}
			if pick < 0 {
				pick = v
			}
			if _, ok := lower[vv]; ok {
				pick = v
				break
			}
		}
		if pick < 0 {
			break
		}
		vv := solver.Var(pick)
		lo := lower[vv] // zero value is the correct default lower bound
		if p.VarKind(vv) == solver.Integer {
			lo = math.Ceil(lo - epsilon)
		}
		if hasUpper[vv] && lo > upper[vv]+epsilon {
			return nil, false
		}
		values[vv] = lo
	}

	// Every variable must now have a value; anything still missing never
	// appeared in any constraint (dead variable) — default to zero.
	for v := 0; v < p.NumVars(); v++ {
		if _, ok := values[solver.Var(v)]; !ok {
			values[solver.Var(v)] = 0
		}
	}

	for _, c := range p.Constraints {
		sum := 0.0
		for _, t := range c.Terms {
			sum += t.Coeff * values[t.Var]
		}
		if !satisfies(sum, c.Op, c.RHS) {
			return nil, false
		}
	}

	return values, true
}

func tightenOnce(p *solver.Problem, values map[solver.Var]float64, lower, upper map[solver.Var]float64, hasUpper map[solver.Var]bool) bool {
	changed := false
	for _, c := range p.Constraints {
		knownSum := 0.0
		unresolvedCount := 0
		var unresolved solver.Term
		for _, t := range c.Terms {
			if val, ok := values[t.Var]; ok {
				knownSum += t.Coeff * val
				continue
			}
			unresolvedCount++
			unresolved = t
		}

		switch unresolvedCount {
		case 0:
			// Fully known; checked again at the end, nothing to do here.
		case 1:
			if unresolved.Coeff == 0 {
				continue
			}
			bound := (c.RHS - knownSum) / unresolved.Coeff
			op := c.Op
			if unresolved.Coeff < 0 {
				op = flip(op)
			}
			switch op {
			case solver.EQ:
				values[unresolved.Var] = bound
				changed = true
			case solver.GE:
				if cur, ok := lower[unresolved.Var]; !ok || bound > cur+epsilon {
					lower[unresolved.Var] = bound
					changed = true
				}
			case solver.LE:
				if cur, ok := upper[unresolved.Var]; !ok || bound < cur-epsilon {
					upper[unresolved.Var] = bound
					hasUpper[unresolved.Var] = true
					changed = true
				}
			}
		}
	}
	return changed
}

func flip(op solver.Op) solver.Op {
	switch op {
	case solver.LE:
		return solver.GE
	case solver.GE:
		return solver.LE
	default:
		return op
	}
}

func satisfies(lhs float64, op solver.Op, rhs float64) bool {
	switch op {
	case solver.LE:
		return lhs <= rhs+epsilon
	case solver.GE:
		return lhs >= rhs-epsilon
	case solver.EQ:
		return math.Abs(lhs-rhs) <= epsilon
	default:
		return false
	}
}
