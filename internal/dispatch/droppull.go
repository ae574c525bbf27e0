package dispatch

import (
	"time"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/matching"
)

// DropPullWarehouse is one order's destination for a drop-pull request: the
// warehouse it's headed to and the docks available there.
type DropPullWarehouse struct {
	WarehouseID string
	Docks       []domain.Dock
}

// DropPullOrder is a single drop-pull scheduling request item.
// AddCxTask and SortNo are opaque pass-through fields this system never
// interprets; they are threaded from input to output unchanged.
type DropPullOrder struct {
	OrderID                string
	OrderType              domain.OrderType
	RequiredCarriage       string
	CarriageID             string
	CarriageLocation       domain.GeoPoint
	Load                   float64
	NextWarehouse          DropPullWarehouse
	PerformDockMatching    bool
	PerformVehicleMatching bool
	AddCxTask              bool
	SortNo                 *int
	CurrentDockID          string
}

// DropPullAssignment is one order's resolved dock/vehicle outcome, carrying
// its input's opaque and matching-flag fields through unchanged.
type DropPullAssignment struct {
	OrderID                string  `json:"order_id"`
	WarehouseID            string  `json:"warehouse_id"`
	DockID                 string  `json:"dock_id"`
	CarriageID             string  `json:"carriage_id"`
	VehicleID              string  `json:"vehicle_id"`
	LayTime                float64 `json:"lay_time"`
	PerformDockMatching    bool    `json:"perform_dock_matching"`
	PerformVehicleMatching bool    `json:"perform_vehicle_matching"`
	AddCxTask              bool    `json:"add_cx_task"`
	SortNo                 *int    `json:"sort_no"`
	CurrentDockID          string  `json:"current_dock_id"`
}

// RunDropPull implements the drop-pull scheduling endpoint: each order is
// resolved in input order, one at a time, so a dock claimed by an earlier
// order in the same batch is visible to the incremental matcher for the
// next one. Unlike internal queueing the caller has
// already chosen the carriage — only the dock (if requested) and the
// vehicle (if the chosen carriage isn't already at that dock) are matched
// here.
func RunDropPull(orders []DropPullOrder, vehicles []*domain.Vehicle, store *ledger.Store, now time.Time) ([]DropPullAssignment, error) {
	for _, o := range orders {
		if o.RequiredCarriage == "" {
			return nil, &InputError{OrderID: o.OrderID, Msg: "required_carriage is missing"}
		}
	}

	assignments := make([]DropPullAssignment, 0, len(orders))

	err := store.WithLock(func(existing []ledger.Entry) ([]ledger.Entry, error) {
		replanned := make(map[string]bool, len(orders))
		for _, o := range orders {
			replanned[o.OrderID] = true
		}
		live := ledger.LoadAndPrepare(existing, replanned, now)

		for _, o := range orders {
			order := domain.Order{
				ID:               o.OrderID,
				OrderType:        o.OrderType,
				RequiredCarriage: o.RequiredCarriage,
				WarehouseLoads: []domain.WarehouseLoad{
					{WarehouseID: o.NextWarehouse.WarehouseID, Quantity: o.Load, Operation: loadOperation(o.OrderType)},
				},
			}

			dockID := o.CurrentDockID
			if o.PerformDockMatching {
				dock, ok := matching.SelectDock(o.NextWarehouse.Docks, order, entriesFor(live, o.NextWarehouse.WarehouseID), now)
				if !ok {
					continue
				}
				dockID = dock.ID
			}

			var layTime float64
			for _, d := range o.NextWarehouse.Docks {
				if d.ID == dockID {
					layTime = matching.LayTime(o.Load, d, o.OrderType)
					break
				}
			}

			var vehicleID string
			if o.PerformVehicleMatching && o.CurrentDockID != dockID {
				if v, ok := matching.MatchVehicle(vehicles, o.CarriageLocation); ok {
					vehicleID = v.ID
				}
			}

			start := dockAvailableAt(live, o.NextWarehouse.WarehouseID, dockID, now)
			end := start.Add(time.Duration(layTime * float64(time.Minute)))
			live = append(live, ledger.Entry{
				OrderID:     o.OrderID,
				WarehouseID: o.NextWarehouse.WarehouseID,
				DockID:      dockID,
				Start:       start,
				End:         end,
			})

			assignments = append(assignments, DropPullAssignment{
				OrderID:                o.OrderID,
				WarehouseID:            o.NextWarehouse.WarehouseID,
				DockID:                 dockID,
				CarriageID:             o.CarriageID,
				VehicleID:              vehicleID,
				LayTime:                layTime,
				PerformDockMatching:    o.PerformDockMatching,
				PerformVehicleMatching: o.PerformVehicleMatching,
				AddCxTask:              o.AddCxTask,
				SortNo:                 o.SortNo,
				CurrentDockID:          o.CurrentDockID,
			})
		}

		return ledger.Merge(live, nil, ledger.ModeDrop, now), nil
	})
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func loadOperation(ot domain.OrderType) domain.Operation {
	if ot == domain.OrderTypeOutbound {
		return domain.OperationLoad
	}
	return domain.OperationUnload
}
