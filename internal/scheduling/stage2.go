package scheduling

import (
	"sort"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
)

// Visit is one order's scheduled window at one of its assigned docks.
type Visit struct {
	OrderID     string
	WarehouseID string
	DockID      string
	Start       float64
	End         float64
}

const (
	// visitOverhead is the fixed per-visit ingress+egress allowance in
	// minutes.
	visitOverhead = 6.0
	// efficiencyEpsilon keeps the duration formula finite for a
	// zero-efficiency dock.
	efficiencyEpsilon = 1e-6
)

// Stage2 assigns concrete start/end minutes on top of a stage-1
// assignment.
//
// The pairwise priority ordering on a dock is a fixed permutation rather
// than a genuine disjunction: priorities on a dock are pre-sorted outside
// the LP, so the whole stage-2 model degenerates into a forward simulation
// once that order and each order's own route order are fixed. This
// implementation takes that simulation directly instead of routing an
// equivalent Problem through a generic Backend — the two precedence chains
// below (per-dock priority queue, per-order route/same-order ordering)
// carry the priority, route and same-order non-overlap requirements. Busy
// windows already on a dock keep their per-window disjunction: each visit
// is slotted into the earliest gap between them that both fits its
// duration and respects its predecessors, which is exactly the assignment
// a minimizing solver would pick for the fixed visit order.
//
// An order's own visits are chained in warehouse_loads order whether or not
// the order is sequential, so a non-sequential multi-warehouse order is
// scheduled in its declared order too.
//
// It returns ok=false if the two precedence chains cannot be jointly
// satisfied: a priority/route conflict the permutation encoding cannot
// resolve without a big-M disjunction that would let a solver pick a
// different order.
func Stage2(orders []domain.Order, warehouses []domain.Warehouse, assignment Assignment, busyWindows map[ledger.DockKey][]ledger.Window) ([]Visit, float64, bool) {
	docksByWarehouse := make(map[string]map[string]domain.Dock, len(warehouses))
	for _, w := range warehouses {
		m := make(map[string]domain.Dock, len(w.Docks))
		for _, d := range w.Docks {
			m[d.ID] = d
		}
		docksByWarehouse[w.ID] = m
	}

	orderIndex := make(map[string]int, len(orders))
	for i, o := range orders {
		orderIndex[o.ID] = i
	}

	type node struct {
		orderID, warehouseID, dockID string
		duration                     float64
	}
	var nodes []node
	visitAt := make(map[[2]string]int) // (orderID, warehouseID) -> node index

	for _, o := range orders {
		for _, whID := range o.Warehouses() {
			dockID, ok := assignment.Dock(o.ID, whID)
			if !ok {
				continue
			}
			dock := docksByWarehouse[whID][dockID]
			load := o.LoadAt(whID)
			efficiency := dock.EfficiencyFor(o.OrderType)
			if efficiency <= 0 {
				efficiency = efficiencyEpsilon
			}
			duration := visitOverhead + load/efficiency

			idx := len(nodes)
			nodes = append(nodes, node{orderID: o.ID, warehouseID: whID, dockID: dockID, duration: duration})
			visitAt[[2]string{o.ID, whID}] = idx
		}
	}

	orderPred := make([]int, len(nodes))
	for i := range orderPred {
		orderPred[i] = -1
	}
	for _, o := range orders {
		whs := o.Warehouses()
		for k := 1; k < len(whs); k++ {
			prevIdx, prevOK := visitAt[[2]string{o.ID, whs[k-1]}]
			curIdx, curOK := visitAt[[2]string{o.ID, whs[k]}]
			if prevOK && curOK {
				orderPred[curIdx] = prevIdx
			}
		}
	}

	type dockKeyed struct {
		idx      int
		priority int
		seq      int
	}
	byDock := make(map[ledger.DockKey][]dockKeyed)
	for i, n := range nodes {
		key := ledger.DockKey{WarehouseID: n.warehouseID, DockID: n.dockID}
		byDock[key] = append(byDock[key], dockKeyed{idx: i, priority: orders[orderIndex[n.orderID]].Priority, seq: orderIndex[n.orderID]})
	}

	dockPred := make([]int, len(nodes))
	for i := range dockPred {
		dockPred[i] = -1
	}

	for _, visits := range byDock {
		sort.SliceStable(visits, func(a, b int) bool {
			if visits[a].priority != visits[b].priority {
				return visits[a].priority > visits[b].priority
			}
			return visits[a].seq < visits[b].seq
		})

		for i, v := range visits {
			if i > 0 {
				dockPred[v.idx] = visits[i-1].idx
			}
		}
	}

	sortedWindows := make(map[ledger.DockKey][]ledger.Window, len(busyWindows))
	for key, windows := range busyWindows {
		ws := make([]ledger.Window, len(windows))
		copy(ws, windows)
		sort.Slice(ws, func(a, b int) bool { return ws[a].Start < ws[b].Start })
		sortedWindows[key] = ws
	}

	start := make([]float64, len(nodes))
	end := make([]float64, len(nodes))

	maxIterations := len(nodes) + 1
	converged := false
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, n := range nodes {
			s := 0.0
			if p := orderPred[i]; p >= 0 && end[p] > s {
				s = end[p]
			}
			if p := dockPred[i]; p >= 0 && end[p] > s {
				s = end[p]
			}
			key := ledger.DockKey{WarehouseID: n.warehouseID, DockID: n.dockID}
			s = earliestFit(sortedWindows[key], s, n.duration)
			e := s + n.duration
			if s != start[i] || e != end[i] {
				start[i] = s
				end[i] = e
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}
	if !converged {
		return nil, 0, false
	}

	visits := make([]Visit, len(nodes))
	makespan := 0.0
	for i, n := range nodes {
		visits[i] = Visit{OrderID: n.orderID, WarehouseID: n.warehouseID, DockID: n.dockID, Start: start[i], End: end[i]}
		if end[i] > makespan {
			makespan = end[i]
		}
	}

	return visits, makespan, true
}

// earliestFit advances s past every busy window the interval
// [s, s+duration] would overlap, landing it in the earliest gap that fits.
// windows must be sorted by Start; a single forward pass suffices because s
// only moves forward and a window it has already cleared can never conflict
// again.
func earliestFit(windows []ledger.Window, s, duration float64) float64 {
	for _, w := range windows {
		if s+duration <= w.Start || s >= w.End {
			continue
		}
		s = w.End
	}
	return s
}
