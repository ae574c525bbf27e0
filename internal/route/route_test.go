package route

import (
	"reflect"
	"testing"

	"github.com/pinggolf/dockplanner/internal/domain"
)

func TestExternalOnlyReturnsSequentialOrders(t *testing.T) {
	o := domain.Order{
		Sequential: false,
		WarehouseLoads: []domain.WarehouseLoad{
			{WarehouseID: "w1", Quantity: 5},
		},
	}
	if _, ok := External(o); ok {
		t.Fatalf("expected non-sequential order to be skipped")
	}

	o.Sequential = true
	o.WarehouseLoads = append(o.WarehouseLoads, domain.WarehouseLoad{WarehouseID: "w2", Quantity: 3})
	got, ok := External(o)
	if !ok {
		t.Fatalf("expected sequential order to produce a route")
	}
	want := []string{"w1", "w2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInternalUnloadsLIFO(t *testing.T) {
	// Loaded at w1 then w2 (in that order); the w1 cargo sits under the w2
	// cargo, so it must be the last one off — unloaded at w4 after w2's
	// cargo is unloaded at w3.
	o := domain.Order{
		WarehouseLoads: []domain.WarehouseLoad{
			{WarehouseID: "w1", CargoType: "steel", Quantity: 10, Operation: domain.OperationLoad},
			{WarehouseID: "w2", CargoType: "timber", Quantity: 5, Operation: domain.OperationLoad},
			{WarehouseID: "w3", CargoType: "timber", Quantity: 5, Operation: domain.OperationUnload},
			{WarehouseID: "w4", CargoType: "steel", Quantity: 10, Operation: domain.OperationUnload},
		},
	}

	got := Internal(o)
	want := []string{"w1", "w2", "w3", "w4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInternalWithNoMatchingUnloadStillReturnsLoadingRoute(t *testing.T) {
	o := domain.Order{
		WarehouseLoads: []domain.WarehouseLoad{
			{WarehouseID: "w1", CargoType: "steel", Quantity: 10, Operation: domain.OperationLoad},
		},
	}
	got := Internal(o)
	want := []string{"w1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
