// Package scheduling builds and solves the two-stage MILP at the heart of
// external queueing: stage-1 picks one dock per order-warehouse pair
// minimizing the latest per-dock completion time, stage-2 assigns concrete
// start/end minutes on top of that assignment.
package scheduling

import (
	"context"
	"fmt"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/solver"
)

// Assignment is stage-1's output: order ID -> warehouse ID -> dock ID, one
// entry per warehouse the order has non-zero load at.
type Assignment map[string]map[string]string

// set records a stage-1 dock choice.
func (a Assignment) set(orderID, warehouseID, dockID string) {
	if a[orderID] == nil {
		a[orderID] = make(map[string]string)
	}
	a[orderID][warehouseID] = dockID
}

// Dock looks up the dock assigned to an order at a warehouse.
func (a Assignment) Dock(orderID, warehouseID string) (string, bool) {
	d, ok := a[orderID][warehouseID]
	return d, ok
}

// candidate is one (order, warehouse, compatible dock) triple: a
// potential x[o,w,d] decision variable.
type candidate struct {
	orderID, warehouseID, dockID string
	load, efficiency             float64
	v                            solver.Var
}

// stage1Model is the built Problem plus the bookkeeping needed to read a
// Solution back into an Assignment.
type stage1Model struct {
	problem    *solver.Problem
	candidates []candidate
	tVar       solver.Var
}

// buildStage1 builds the dock-assignment MILP for one direction's pass.
// existingBusy is the ledger's total busy minutes per (warehouse, dock),
// already excluding orders being re-planned.
func buildStage1(orders []domain.Order, warehouses []domain.Warehouse, existingBusy map[ledger.DockKey]float64) *stage1Model {
	p := solver.NewProblem("stage1-assignment")

	docksByWarehouse := make(map[string][]domain.Dock, len(warehouses))
	for _, w := range warehouses {
		docksByWarehouse[w.ID] = w.Docks
	}

	var candidates []candidate
	byOrderWarehouse := make(map[[2]string][]candidate)

	for _, o := range orders {
		for _, whID := range o.Warehouses() {
			load := o.LoadAt(whID)

			var compatibleDocks []domain.Dock
			for _, d := range docksByWarehouse[whID] {
				if d.CompatibleWith(o) {
					compatibleDocks = append(compatibleDocks, d)
				}
			}

			if len(compatibleDocks) == 0 {
				// No variable can ever satisfy this pair's exactness
				// constraint: an equality against an empty sum of terms
				// can never reach 1, so the model is infeasible as soon
				// as the backend tries it. A carriage-incompatible
				// order must fail here, not get silently skipped.
				p.AddConstraint(fmt.Sprintf("assign[%s,%s]-unreachable", o.ID, whID), nil, solver.EQ, 1)
				continue
			}

			for _, d := range compatibleDocks {
				v := p.AddVar(fmt.Sprintf("x[%s,%s,%s]", o.ID, whID, d.ID), solver.Binary)
				c := candidate{
					orderID:     o.ID,
					warehouseID: whID,
					dockID:      d.ID,
					load:        load,
					efficiency:  d.EfficiencyFor(o.OrderType),
					v:           v,
				}
				candidates = append(candidates, c)
				key := [2]string{o.ID, whID}
				byOrderWarehouse[key] = append(byOrderWarehouse[key], c)
			}
		}
	}

	for key, cs := range byOrderWarehouse {
		terms := make([]solver.Term, len(cs))
		for i, c := range cs {
			terms[i] = solver.Term{Var: c.v, Coeff: 1}
		}
		p.AddConstraint(fmt.Sprintf("assign[%s,%s]", key[0], key[1]), terms, solver.EQ, 1)
	}

	byDock := make(map[ledger.DockKey][]candidate)
	for _, c := range candidates {
		key := ledger.DockKey{WarehouseID: c.warehouseID, DockID: c.dockID}
		byDock[key] = append(byDock[key], c)
	}

	tVar := p.AddVar("T", solver.Integer)
	p.SetObjectiveCoeff(tVar, 1)

	for key, cs := range byDock {
		cVar := p.AddVar(fmt.Sprintf("C[%s,%s]", key.WarehouseID, key.DockID), solver.Integer)

		p.AddConstraint(fmt.Sprintf("makespan[%s,%s]", key.WarehouseID, key.DockID),
			[]solver.Term{{Var: cVar, Coeff: 1}, {Var: tVar, Coeff: -1}}, solver.LE, 0)

		terms := make([]solver.Term, 0, len(cs)+1)
		terms = append(terms, solver.Term{Var: cVar, Coeff: 1})
		for _, c := range cs {
			if c.efficiency <= 0 {
				continue
			}
			terms = append(terms, solver.Term{Var: c.v, Coeff: -c.load / c.efficiency})
		}
		p.AddConstraint(fmt.Sprintf("capacity[%s,%s]", key.WarehouseID, key.DockID),
			terms, solver.GE, existingBusy[key])
	}

	return &stage1Model{problem: p, candidates: candidates, tVar: tVar}
}

// Stage1 solves the dock-assignment MILP and returns the chosen assignment
// and the makespan T, or ok=false if the model is infeasible.
func Stage1(ctx context.Context, backend solver.Backend, orders []domain.Order, warehouses []domain.Warehouse, existingBusy map[ledger.DockKey]float64) (Assignment, float64, bool, error) {
	model := buildStage1(orders, warehouses, existingBusy)

	sol, err := backend.Solve(ctx, model.problem)
	if err != nil {
		return nil, 0, false, fmt.Errorf("scheduling: stage1 solve: %w", err)
	}
	if sol.Status != solver.StatusOptimal {
		return nil, 0, false, nil
	}

	assignment := make(Assignment)
	for _, c := range model.candidates {
		if sol.Value(c.v) > 0.5 {
			assignment.set(c.orderID, c.warehouseID, c.dockID)
		}
	}

	return assignment, sol.Value(model.tVar), true, nil
}
