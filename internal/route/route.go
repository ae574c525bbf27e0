// Package route synthesizes, per order, the ordered list of warehouses it
// must visit — for external orders, the declared sequential route; for
// internal orders, a LIFO-consistent load/unload route.
package route

import "github.com/pinggolf/dockplanner/internal/domain"

// External returns, for sequential orders only, the warehouse IDs in the
// order they appear in the order's warehouse_loads. Non-sequential orders
// are omitted: stage-2's cross-dock non-overlap constraint is free to place
// their docks in any order.
func External(o domain.Order) ([]string, bool) {
	if !o.Sequential {
		return nil, false
	}
	seen := make(map[string]bool)
	var out []string
	for _, wl := range o.WarehouseLoads {
		if !seen[wl.WarehouseID] {
			seen[wl.WarehouseID] = true
			out = append(out, wl.WarehouseID)
		}
	}
	return out, true
}

// Internal splits an order's warehouse_loads into a loading sub-route (LOAD
// ops grouped by warehouse, first-seen order) followed by an unloading
// sub-route generated LIFO against the loading stack: for each loaded item
// from the top of the stack down, the first unconsumed UNLOAD op matching
// its (cargo type, quantity) consumes it. The full route is the
// concatenation of the two sub-routes' unique warehouse IDs.
func Internal(o domain.Order) []string {
	var loads, unloads []domain.WarehouseLoad
	for _, wl := range o.WarehouseLoads {
		switch wl.Operation {
		case domain.OperationLoad:
			loads = append(loads, wl)
		case domain.OperationUnload:
			unloads = append(unloads, wl)
		}
	}

	loadingRoute := groupByWarehouse(loads)
	unloadingRoute := unloadLIFO(loadingRoute, unloads)

	return append(uniqueWarehouseIDs(loadingRoute), uniqueWarehouseIDs(unloadingRoute)...)
}

// groupByWarehouse orders LOAD ops by warehouse in first-seen order,
// preserving each warehouse's internal op order — this is the "stack" that
// unloadLIFO walks from top (end of slice) to bottom.
func groupByWarehouse(loads []domain.WarehouseLoad) []domain.WarehouseLoad {
	order := make([]string, 0)
	grouped := make(map[string][]domain.WarehouseLoad)
	for _, op := range loads {
		if _, ok := grouped[op.WarehouseID]; !ok {
			order = append(order, op.WarehouseID)
		}
		grouped[op.WarehouseID] = append(grouped[op.WarehouseID], op)
	}

	var out []domain.WarehouseLoad
	for _, whID := range order {
		out = append(out, grouped[whID]...)
	}
	return out
}

// unloadLIFO walks the loading stack from the last-loaded item to the
// first, and for each one, consumes the first still-unmatched unload op
// whose (cargo type, quantity) matches — producing the physically correct
// "last loaded, first unloaded" order.
func unloadLIFO(loadingStack []domain.WarehouseLoad, unloads []domain.WarehouseLoad) []domain.WarehouseLoad {
	consumed := make([]bool, len(unloads))
	var out []domain.WarehouseLoad

	for i := len(loadingStack) - 1; i >= 0; i-- {
		stackOp := loadingStack[i]
		for j, op := range unloads {
			if consumed[j] {
				continue
			}
			if op.CargoType == stackOp.CargoType && op.Quantity == stackOp.Quantity {
				consumed[j] = true
				out = append(out, domain.WarehouseLoad{
					WarehouseID: op.WarehouseID,
					CargoType:   stackOp.CargoType,
					Quantity:    op.Quantity,
					Operation:   domain.OperationUnload,
				})
				break
			}
		}
	}
	return out
}

func uniqueWarehouseIDs(ops []domain.WarehouseLoad) []string {
	seen := make(map[string]bool)
	var out []string
	for _, op := range ops {
		if !seen[op.WarehouseID] {
			seen[op.WarehouseID] = true
			out = append(out, op.WarehouseID)
		}
	}
	return out
}
