package matching

import (
	"math"
	"testing"
	"time"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
)

func TestHaversineSymmetricAndZeroForSamePoint(t *testing.T) {
	a := domain.GeoPoint{Lat: 51.5074, Lon: -0.1278}
	b := domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}

	if d := Haversine(a, a); math.Abs(d) > 1e-9 {
		t.Fatalf("expected 0 distance to self, got %v", d)
	}
	if math.Abs(Haversine(a, b)-Haversine(b, a)) > 1e-9 {
		t.Fatalf("expected haversine to be symmetric")
	}
	if d := Haversine(a, b); d < 300 || d > 400 {
		t.Fatalf("expected London-Paris distance around 344km, got %v", d)
	}
}

func dualDock(id string, efficiency float64, carriage string) domain.Dock {
	return domain.Dock{
		ID:                 id,
		OutboundEfficiency: efficiency,
		InboundEfficiency:  efficiency,
		Type:               domain.DockTypeDual,
		CompatibleCarriage: []string{carriage},
	}
}

func TestSelectDockPrefersEarliestAvailability(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o := domain.Order{RequiredCarriage: "flatbed", OrderType: domain.OrderTypeOutbound}

	docks := []domain.Dock{
		dualDock("busy", 10, "flatbed"),
		dualDock("free", 5, "flatbed"),
	}
	entries := []ledger.Entry{
		{WarehouseID: "w1", DockID: "busy", Start: now, End: now.Add(2 * time.Hour)},
	}

	got, ok := SelectDock(docks, o, entries, now)
	if !ok {
		t.Fatalf("expected a compatible dock")
	}
	if got.ID != "free" {
		t.Fatalf("expected the idle dock to win despite lower efficiency, got %s", got.ID)
	}
}

func TestSelectDockBreaksTiesOnAdjustedEfficiency(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o := domain.Order{RequiredCarriage: "flatbed", OrderType: domain.OrderTypeOutbound}

	docks := []domain.Dock{
		dualDock("low", 5, "flatbed"),
		dualDock("high", 10, "flatbed"),
	}

	got, ok := SelectDock(docks, o, nil, now)
	if !ok || got.ID != "high" {
		t.Fatalf("expected the more efficient dock to win a tie, got %+v ok=%v", got, ok)
	}
}

func TestSelectDockExcludesIncompatibleDocks(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o := domain.Order{RequiredCarriage: "flatbed", OrderType: domain.OrderTypeOutbound}
	docks := []domain.Dock{
		{ID: "inbound-only", Type: domain.DockTypeInboundOnly, CompatibleCarriage: []string{"flatbed"}, OutboundEfficiency: 10},
		{ID: "wrong-carriage", Type: domain.DockTypeDual, CompatibleCarriage: []string{"tanker"}, OutboundEfficiency: 10},
	}
	if _, ok := SelectDock(docks, o, nil, now); ok {
		t.Fatalf("expected no compatible dock")
	}
}

func TestMatchCarriagePrefersCoLocated(t *testing.T) {
	loc := domain.GeoPoint{Lat: 0, Lon: 0}
	far := domain.GeoPoint{Lat: 10, Lon: 10}
	carriages := []*domain.Carriage{
		{ID: "far", Type: "flatbed", State: domain.StateIdle, Location: far},
		{ID: "coLocated", Type: "flatbed", State: domain.StateIdle, CurrentDockID: "d1", Location: loc},
	}

	got, ok := MatchCarriage(carriages, "d1", "flatbed", &loc)
	if !ok || got.ID != "coLocated" {
		t.Fatalf("expected co-located carriage to win, got %+v ok=%v", got, ok)
	}
	if got.State != domain.StateBusy {
		t.Fatalf("expected matched carriage to flip to busy")
	}
}

func TestMatchCarriageFallsBackToNearestIdle(t *testing.T) {
	loc := domain.GeoPoint{Lat: 0, Lon: 0}
	near := domain.GeoPoint{Lat: 1, Lon: 1}
	far := domain.GeoPoint{Lat: 10, Lon: 10}
	carriages := []*domain.Carriage{
		{ID: "far", Type: "flatbed", State: domain.StateIdle, Location: far},
		{ID: "near", Type: "flatbed", State: domain.StateIdle, Location: near},
		{ID: "busy-near", Type: "flatbed", State: domain.StateBusy, Location: loc},
	}

	got, ok := MatchCarriage(carriages, "d1", "flatbed", &loc)
	if !ok || got.ID != "near" {
		t.Fatalf("expected nearest idle carriage, got %+v ok=%v", got, ok)
	}
}

func TestMatchVehiclePenalizesAboveAverageWorkload(t *testing.T) {
	loc := domain.GeoPoint{Lat: 0, Lon: 0}
	near := domain.GeoPoint{Lat: 0.01, Lon: 0.01}
	vehicles := []*domain.Vehicle{
		{ID: "busy-history", State: domain.StateIdle, Location: near, Workload: 100},
		{ID: "light-history", State: domain.StateIdle, Location: near, Workload: 0},
		{ID: "not-idle", State: domain.StateBusy, Location: loc, Workload: 0},
	}

	got, ok := MatchVehicle(vehicles, loc)
	if !ok || got.ID != "light-history" {
		t.Fatalf("expected the lighter-workload vehicle to win, got %+v ok=%v", got, ok)
	}
}
