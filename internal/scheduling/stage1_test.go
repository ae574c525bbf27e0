package scheduling

import (
	"context"
	"testing"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/solver/exhaustive"
)

func dock(id string, efficiency float64) domain.Dock {
	return domain.Dock{
		ID:                 id,
		OutboundEfficiency: efficiency,
		InboundEfficiency:  efficiency,
		Type:               domain.DockTypeDual,
		CompatibleCarriage: []string{"flatbed"},
	}
}

func TestStage1AssignsEachOrderExactlyOneDock(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10), dock("d2", 5)}},
	}
	orders := []domain.Order{
		{ID: "o1", OrderType: domain.OrderTypeOutbound, RequiredCarriage: "flatbed",
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
		{ID: "o2", OrderType: domain.OrderTypeOutbound, RequiredCarriage: "flatbed",
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 20}}},
	}

	assignment, _, ok, err := Stage1(context.Background(), exhaustive.New(), orders, warehouses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected stage1 to find a feasible assignment")
	}

	for _, o := range orders {
		dockID, ok := assignment.Dock(o.ID, "w1")
		if !ok {
			t.Fatalf("expected order %s to be assigned a dock", o.ID)
		}
		if dockID != "d1" && dockID != "d2" {
			t.Fatalf("unexpected dock %s for order %s", dockID, o.ID)
		}
	}
	if d1, _ := assignment.Dock("o1", "w1"); d1 == func() string { d, _ := assignment.Dock("o2", "w1"); return d }() {
		t.Fatalf("expected the two orders to land on different docks to balance load")
	}
}

func TestStage1InfeasibleWhenNoCompatibleDock(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{
			{ID: "d1", Type: domain.DockTypeInboundOnly, CompatibleCarriage: []string{"flatbed"}, InboundEfficiency: 10},
		}},
	}
	orders := []domain.Order{
		{ID: "o1", OrderType: domain.OrderTypeOutbound, RequiredCarriage: "flatbed",
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
	}

	_, _, ok, err := Stage1(context.Background(), exhaustive.New(), orders, warehouses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected stage1 to be infeasible: no dock admits an outbound order here")
	}
}

func TestStage1AccountsForExistingBusyLoad(t *testing.T) {
	warehouses := []domain.Warehouse{
		{ID: "w1", Docks: []domain.Dock{dock("d1", 10)}},
	}
	orders := []domain.Order{
		{ID: "o1", OrderType: domain.OrderTypeOutbound, RequiredCarriage: "flatbed",
			WarehouseLoads: []domain.WarehouseLoad{{WarehouseID: "w1", Quantity: 10}}},
	}
	existingBusy := map[ledger.DockKey]float64{{WarehouseID: "w1", DockID: "d1"}: 50}

	_, T, ok, err := Stage1(context.Background(), exhaustive.New(), orders, warehouses, existingBusy)
	if err != nil || !ok {
		t.Fatalf("expected feasible assignment, err=%v ok=%v", err, ok)
	}
	if T < 51 {
		t.Fatalf("expected makespan to account for 50 minutes already busy, got %v", T)
	}
}
