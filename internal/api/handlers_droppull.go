package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pinggolf/dockplanner/internal/dispatch"
)

type dropPullRequest struct {
	OrderCarriageInfo []wireDropPullOrder `json:"order_carriage_info"`
	Vehicles          []wireVehicle       `json:"vehicles"`
}

func (s *Server) handleDropPull(w http.ResponseWriter, r *http.Request) {
	var req dropPullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if len(req.OrderCarriageInfo) == 0 {
		writeEnvelope(w, http.StatusBadRequest, "order_carriage_info must not be empty", nil)
		return
	}

	if err := s.throttle.Wait(r.Context(), "droppull"); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	orders := make([]dispatch.DropPullOrder, len(req.OrderCarriageInfo))
	for i, o := range req.OrderCarriageInfo {
		orders[i] = dispatch.DropPullOrder{
			OrderID:                o.OrderID,
			OrderType:              orderTypeOf(o.OrderType),
			RequiredCarriage:       o.RequiredCarriage,
			CarriageID:             o.CarriageID,
			CarriageLocation:       o.CarriageLocation.toDomain(),
			Load:                   o.Load,
			PerformDockMatching:    o.PerformDockMatching,
			PerformVehicleMatching: o.PerformVehicleMatching,
			AddCxTask:              o.AddCxTask,
			SortNo:                 o.SortNo,
			CurrentDockID:          o.CurrentDockID,
			NextWarehouse: dispatch.DropPullWarehouse{
				WarehouseID: o.NextWarehouse.WarehouseID,
				Docks:       toDomainDocks(o.NextWarehouse.Docks),
			},
		}
	}
	vehicles := toDomainVehicles(req.Vehicles)
	now := time.Now()

	assignments, err := dispatch.RunDropPull(orders, vehicles, s.dropPullStore, now)
	s.recordAndNotify("droppull", len(orders), err)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	writeEnvelope(w, http.StatusOK, "ok", assignments)
}
