package api

import "github.com/pinggolf/dockplanner/internal/domain"

// The wire types in this file are the JSON shapes of the three scheduling
// endpoints. They exist only to decode/encode at the HTTP boundary;
// everything past the handler works in terms of internal/domain.

type wireLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (l wireLocation) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Lat: l.Lat, Lon: l.Lon}
}

type wireDock struct {
	DockID             string   `json:"dock_id"`
	OutboundEfficiency float64  `json:"outbound_efficiency"`
	InboundEfficiency  float64  `json:"inbound_efficiency"`
	Weight             float64  `json:"weight"`
	DockType           int      `json:"dock_type"`
	CompatibleCarriage []string `json:"compatible_carriage"`
}

func (d wireDock) toDomain() domain.Dock {
	return domain.Dock{
		ID:                 d.DockID,
		OutboundEfficiency: d.OutboundEfficiency,
		InboundEfficiency:  d.InboundEfficiency,
		Weight:             d.Weight,
		Type:               domain.DockType(d.DockType),
		CompatibleCarriage: d.CompatibleCarriage,
	}
}

type wireWarehouse struct {
	WarehouseID string        `json:"warehouse_id"`
	Docks       []wireDock    `json:"docks"`
	Location    *wireLocation `json:"location,omitempty"`
}

func toDomainDocks(in []wireDock) []domain.Dock {
	out := make([]domain.Dock, len(in))
	for i, d := range in {
		out[i] = d.toDomain()
	}
	return out
}

// orderTypeOf converts the wire order_type int, bypassing wireOrder since
// drop-pull's order_carriage_info items aren't full orders.
func orderTypeOf(wireOrderType int) domain.OrderType {
	return domain.OrderType(wireOrderType)
}

func toDomainWarehouses(in []wireWarehouse) []domain.Warehouse {
	out := make([]domain.Warehouse, len(in))
	for i, w := range in {
		docks := make([]domain.Dock, len(w.Docks))
		for j, d := range w.Docks {
			docks[j] = d.toDomain()
		}
		wh := domain.Warehouse{ID: w.WarehouseID, Docks: docks}
		if w.Location != nil {
			loc := w.Location.toDomain()
			wh.Location = &loc
		}
		out[i] = wh
	}
	return out
}

type wireWarehouseLoad struct {
	WarehouseID      string  `json:"warehouse_id"`
	Load             float64 `json:"load"`
	ItemCode         string  `json:"item_code,omitempty"`
	LoadUnloadStatus int     `json:"loadUnloadStatus,omitempty"`
}

type wireOrder struct {
	OrderID          string              `json:"order_id"`
	WarehouseLoads   []wireWarehouseLoad `json:"warehouse_loads"`
	Priority         int                 `json:"priority"`
	Sequential       bool                `json:"sequential"`
	RequiredCarriage string              `json:"required_carriage"`
	// OrderType is 1 for inbound (truck unloads into the warehouse) and 2
	// for outbound (truck loads from the warehouse) on every endpoint; see
	// domain.OrderType.
	OrderType int `json:"order_type"`
}

// toDomain converts a wire order. withOperation is false for external
// queueing, whose warehouse_loads carry no loadUnloadStatus field — stage-1
// and stage-2 never read Operation, only route.Internal does, so it's safe
// to leave it at its zero value there.
func (o wireOrder) toDomain(withOperation bool) domain.Order {
	loads := make([]domain.WarehouseLoad, len(o.WarehouseLoads))
	for i, wl := range o.WarehouseLoads {
		load := domain.WarehouseLoad{WarehouseID: wl.WarehouseID, CargoType: wl.ItemCode, Quantity: wl.Load}
		if withOperation {
			load.Operation = domain.Operation(wl.LoadUnloadStatus)
		}
		loads[i] = load
	}
	return domain.Order{
		ID:               o.OrderID,
		WarehouseLoads:   loads,
		Priority:         o.Priority,
		Sequential:       o.Sequential,
		RequiredCarriage: o.RequiredCarriage,
		OrderType:        domain.OrderType(o.OrderType),
	}
}

func toDomainOrders(in []wireOrder, withOperation bool) []domain.Order {
	out := make([]domain.Order, len(in))
	for i, o := range in {
		out[i] = o.toDomain(withOperation)
	}
	return out
}

type wireVehicle struct {
	VehicleID       string       `json:"vehicle_id"`
	Location        wireLocation `json:"location"`
	VehicleState    int          `json:"vehicle_state"`
	VehicleWorkload int          `json:"vehicle_workload"`
}

func toDomainVehicles(in []wireVehicle) []*domain.Vehicle {
	out := make([]*domain.Vehicle, len(in))
	for i, v := range in {
		out[i] = &domain.Vehicle{
			ID:       v.VehicleID,
			Location: v.Location.toDomain(),
			State:    domain.State(v.VehicleState),
			Workload: v.VehicleWorkload,
		}
	}
	return out
}

type wireCarriage struct {
	CarriageID         string       `json:"carriage_id"`
	Location           wireLocation `json:"location"`
	CarriageType       string       `json:"carriage_type"`
	CarriageState      int          `json:"carriage_state"`
	CurrentDockID      string       `json:"current_dock_id"`
	CurrentWarehouseID string       `json:"current_warehouse_id,omitempty"`
}

func toDomainCarriages(in []wireCarriage) []*domain.Carriage {
	out := make([]*domain.Carriage, len(in))
	for i, c := range in {
		out[i] = &domain.Carriage{
			ID:               c.CarriageID,
			Location:         c.Location.toDomain(),
			Type:             c.CarriageType,
			State:            domain.State(c.CarriageState),
			CurrentDockID:    c.CurrentDockID,
			CurrentWarehouse: c.CurrentWarehouseID,
		}
	}
	return out
}

type wireNextWarehouse struct {
	WarehouseID string     `json:"warehouse_id"`
	Docks       []wireDock `json:"docks"`
}

type wireDropPullOrder struct {
	OrderID                string            `json:"order_id"`
	RequiredCarriage       string            `json:"required_carriage"`
	OrderType              int               `json:"order_type"`
	CarriageID             string            `json:"carriage_id"`
	CarriageLocation       wireLocation      `json:"carriage_location"`
	NextWarehouse          wireNextWarehouse `json:"next_warehouse"`
	PerformVehicleMatching bool              `json:"perform_vehicle_matching"`
	PerformDockMatching    bool              `json:"perform_dock_matching"`
	AddCxTask              bool              `json:"add_cx_task"`
	SortNo                 *int              `json:"sort_no"`
	CurrentDockID          string            `json:"current_dock_id"`
	Load                   float64           `json:"load"`
}
