package solver

import (
	"context"
	"fmt"

	"github.com/draffensperger/golp"
)

// GolpBackend lowers a Problem onto lp_solve via the golp cgo bindings. It
// is the production Backend; tests use the deterministic backends in this
// module's sibling packages instead, so the test suite doesn't depend on a
// local lp_solve install.
type GolpBackend struct{}

// NewGolpBackend constructs the lp_solve-backed solver.
func NewGolpBackend() *GolpBackend { return &GolpBackend{} }

func (GolpBackend) Solve(ctx context.Context, p *Problem) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}

	n := p.NumVars()
	lp := golp.NewLP(0, n)

	for v := 0; v < n; v++ {
		switch p.VarKind(Var(v)) {
		case Binary:
			lp.SetInt(v, true)
			lp.SetBounds(v, 0, 1)
		case Integer:
			lp.SetInt(v, true)
			lp.SetLowBo(v, 0)
		case Continuous:
			lp.SetLowBo(v, 0)
		}
	}

	obj := make([]float64, n)
	for v, coeff := range p.Objective() {
		obj[int(v)] = coeff
	}
	lp.SetObjFn(obj)
	if p.Minimize {
		lp.SetMinimize()
	} else {
		lp.SetMaximize()
	}

	for _, c := range p.Constraints {
		row := make([]float64, n)
		for _, t := range c.Terms {
			row[int(t.Var)] += t.Coeff
		}
		var ct golp.ConstraintType
		switch c.Op {
		case LE:
			ct = golp.LE
		case GE:
			ct = golp.GE
		case EQ:
			ct = golp.EQ
		}
		lp.AddConstraint(row, ct, c.RHS)
	}

	status := lp.Solve()
	switch status {
	case golp.OPTIMAL, golp.SUBOPTIMAL:
		values := make(map[Var]float64, n)
		for i, val := range lp.Variables() {
			values[Var(i)] = val
		}
		return Solution{Status: StatusOptimal, Values: values, Objective: lp.Objective()}, nil
	case golp.INFEASIBLE:
		return Solution{Status: StatusInfeasible}, nil
	default:
		return Solution{Status: StatusError}, fmt.Errorf("solver: lp_solve returned status %v", status)
	}
}
