package dispatch

import (
	"time"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/matching"
	"github.com/pinggolf/dockplanner/internal/route"
)

// InternalAssignment is the dock/carriage/vehicle outcome for one order at
// the first warehouse of its synthesized route. Only the first stop is
// resolved here; downstream stops wait for a later request, once the order
// has physically arrived. Dock selection uses the same incremental-matcher
// rule for both directions: available time ascending, then adjusted
// efficiency descending.
type InternalAssignment struct {
	WarehouseID string  `json:"warehouse_id"`
	DockID      string  `json:"dock_id"`
	CarriageID  string  `json:"carriage_id"`
	VehicleID   string  `json:"vehicle_id"`
	LayTime     float64 `json:"lay_time"`
}

// InternalResult is the internal queueing endpoint's response body.
// Assignments omits any order whose dock or carriage could not be
// matched.
type InternalResult struct {
	OrderSequences map[string][]string
	Assignments    map[string]InternalAssignment
}

// RunInternal implements the internal queueing endpoint. Unlike external
// queueing it never touches the MILP stages: each order's route is
// synthesized, its first warehouse's dock is picked by the incremental
// matcher, and a carriage (and, if the carriage isn't already standing at
// that dock, a vehicle) is matched against it — one ledger-lock span covers
// the whole batch so dock availability is read consistently as earlier
// orders in the same request claim capacity.
func RunInternal(orders []domain.Order, warehouses []domain.Warehouse, carriages []*domain.Carriage, vehicles []*domain.Vehicle, store *ledger.Store, now time.Time) (InternalResult, error) {
	if err := validateOrders(orders); err != nil {
		return InternalResult{}, err
	}

	sequences := make(map[string][]string, len(orders))
	assignments := make(map[string]InternalAssignment)

	docksByWarehouse := make(map[string][]domain.Dock, len(warehouses))
	locationByWarehouse := make(map[string]*domain.GeoPoint, len(warehouses))
	for _, w := range warehouses {
		docksByWarehouse[w.ID] = w.Docks
		locationByWarehouse[w.ID] = w.Location
	}

	err := store.WithLock(func(existing []ledger.Entry) ([]ledger.Entry, error) {
		replanned := make(map[string]bool, len(orders))
		for _, o := range orders {
			replanned[o.ID] = true
		}
		live := ledger.LoadAndPrepare(existing, replanned, now)

		for _, o := range orders {
			seq := route.Internal(o)
			sequences[o.ID] = seq
			if len(seq) == 0 {
				continue
			}

			whID := seq[0]
			dock, ok := matching.SelectDock(docksByWarehouse[whID], o, entriesFor(live, whID), now)
			if !ok {
				continue
			}

			carriage, ok := matching.MatchCarriage(carriages, dock.ID, o.RequiredCarriage, locationByWarehouse[whID])
			if !ok {
				continue
			}

			var vehicleID string
			if carriage.CurrentDockID != dock.ID {
				if v, ok := matching.MatchVehicle(vehicles, carriage.Location); ok {
					vehicleID = v.ID
				}
			}

			layTime := matching.LayTime(o.LoadAt(whID), dock, o.OrderType)
			start := dockAvailableAt(live, whID, dock.ID, now)
			end := start.Add(time.Duration(layTime * float64(time.Minute)))

			assignments[o.ID] = InternalAssignment{
				WarehouseID: whID,
				DockID:      dock.ID,
				CarriageID:  carriage.ID,
				VehicleID:   vehicleID,
				LayTime:     layTime,
			}

			live = append(live, ledger.Entry{OrderID: o.ID, WarehouseID: whID, DockID: dock.ID, Start: start, End: end})
		}

		return ledger.Merge(live, nil, ledger.ModeQueue, now), nil
	})
	if err != nil {
		return InternalResult{}, err
	}

	return InternalResult{OrderSequences: sequences, Assignments: assignments}, nil
}

func entriesFor(entries []ledger.Entry, warehouseID string) []ledger.Entry {
	var out []ledger.Entry
	for _, e := range entries {
		if e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	return out
}

func dockAvailableAt(entries []ledger.Entry, warehouseID, dockID string, now time.Time) time.Time {
	available := now
	for _, e := range entries {
		if e.WarehouseID == warehouseID && e.DockID == dockID && e.End.After(available) {
			available = e.End
		}
	}
	return available
}
