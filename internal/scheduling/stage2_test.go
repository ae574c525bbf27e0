package scheduling

import (
	"testing"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
)

func TestStage2SequencesByPriorityOnSharedDock(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10)}},
	}
	orders := []domain.Order{
		{ID: "low", Priority: 1, OrderType: domain.OrderTypeOutbound,
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
		{ID: "high", Priority: 5, OrderType: domain.OrderTypeOutbound,
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
	}
	assignment := Assignment{
		"low":  {"w1": "d1"},
		"high": {"w1": "d1"},
	}

	visits, _, ok := Stage2(orders, warehouses, assignment, nil)
	if !ok {
		t.Fatalf("expected stage2 to converge")
	}

	var lowStart, highStart float64
	for _, v := range visits {
		switch v.OrderID {
		case "low":
			lowStart = v.Start
		case "high":
			highStart = v.Start
		}
	}
	if highStart >= lowStart {
		t.Fatalf("expected the higher-priority order to run first: high=%v low=%v", highStart, lowStart)
	}
	// Visits must not overlap on the shared dock.
	if highStart+visitOverhead+10/10.0 > lowStart+1e-9 {
		t.Fatalf("expected the second visit to start only after the first ends")
	}
}

func TestStage2RespectsExistingBusyWindow(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10)}},
	}
	orders := []domain.Order{
		{ID: "o1", OrderType: domain.OrderTypeOutbound,
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
	}
	assignment := Assignment{"o1": {"w1": "d1"}}
	busy := map[ledger.DockKey][]ledger.Window{
		{WarehouseID: "w1", DockID: "d1"}: {{Start: 0, End: 100}},
	}

	visits, _, ok := Stage2(orders, warehouses, assignment, busy)
	if !ok || len(visits) != 1 {
		t.Fatalf("expected one converged visit, ok=%v visits=%+v", ok, visits)
	}
	if visits[0].Start < 100 {
		t.Fatalf("expected the new visit to start only after the existing window ends, got %v", visits[0].Start)
	}
}

func TestStage2OrdersSameOrderVisitsByRoute(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10)}},
		{ID: "w2", Docks: []domain.Dock{dock("d2", 10)}},
	}
	orders := []domain.Order{
		{ID: "o1", OrderType: domain.OrderTypeOutbound, WarehouseLoads: []domain.WarehouseLoad{
			{WarehouseID: "w1", Quantity: 10},
			{WarehouseID: "w2", Quantity: 10},
		}},
	}
	assignment := Assignment{"o1": {"w1": "d1", "w2": "d2"}}

	visits, _, ok := Stage2(orders, warehouses, assignment, nil)
	if !ok {
		t.Fatalf("expected convergence")
	}
	var w1End, w2Start float64
	for _, v := range visits {
		if v.WarehouseID == "w1" {
			w1End = v.End
		}
		if v.WarehouseID == "w2" {
			w2Start = v.Start
		}
	}
	if w2Start < w1End {
		t.Fatalf("expected the w2 visit to start only after the w1 visit ends: w1End=%v w2Start=%v", w1End, w2Start)
	}
}

func TestStage2SlotsVisitsIntoGapsBetweenBusyWindows(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10)}},
	}
	orders := []domain.Order{
		{ID: "fits", Priority: 5, OrderType: domain.OrderTypeOutbound,
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 140}}},
		{ID: "too-big", Priority: 1, OrderType: domain.OrderTypeOutbound,
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 240}}},
	}
	assignment := Assignment{
		"fits":    {"w1": "d1"},
		"too-big": {"w1": "d1"},
	}
	busy := map[ledger.DockKey][]ledger.Window{
		{WarehouseID: "w1", DockID: "d1"}: {{Start: 0, End: 10}, {Start: 50, End: 60}},
	}

	visits, _, ok := Stage2(orders, warehouses, assignment, busy)
	if !ok || len(visits) != 2 {
		t.Fatalf("expected two converged visits, ok=%v visits=%+v", ok, visits)
	}

	byOrder := make(map[string]Visit, len(visits))
	for _, v := range visits {
		byOrder[v.OrderID] = v
	}

	// Duration 6 + 140/10 = 20 fits the [10, 50] gap: it must be slotted
	// there, not pushed past the second window.
	fits := byOrder["fits"]
	if fits.Start != 10 {
		t.Fatalf("expected the fitting visit to start right after the first window, got start=%v", fits.Start)
	}
	if fits.End > 50 {
		t.Fatalf("expected the fitting visit to end before the second window begins, got end=%v", fits.End)
	}

	// Duration 6 + 240/10 = 30 no longer fits between the first visit's end
	// and the second window, so it lands after that window ends.
	tooBig := byOrder["too-big"]
	if tooBig.Start != 60 {
		t.Fatalf("expected the oversized visit to start after the second window, got start=%v", tooBig.Start)
	}
}
