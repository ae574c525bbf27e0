package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pinggolf/dockplanner/internal/dispatch"
)

type internalRequest struct {
	Warehouses []wireWarehouse `json:"warehouses"`
	Orders     []wireOrder     `json:"orders"`
	Vehicles   []wireVehicle   `json:"vehicles"`
	Carriages  []wireCarriage  `json:"carriages"`
}

func (s *Server) handleInternal(w http.ResponseWriter, r *http.Request) {
	var req internalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if len(req.Orders) == 0 {
		writeEnvelope(w, http.StatusBadRequest, "orders must not be empty", nil)
		return
	}

	if err := s.throttle.Wait(r.Context(), "internal"); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	warehouses := toDomainWarehouses(req.Warehouses)
	orders := toDomainOrders(req.Orders, true)
	carriages := toDomainCarriages(req.Carriages)
	vehicles := toDomainVehicles(req.Vehicles)
	now := time.Now()

	result, err := dispatch.RunInternal(orders, warehouses, carriages, vehicles, s.internalStore, now)
	s.recordAndNotify("internal", len(orders), err)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
		"order_sequences":                   result.OrderSequences,
		"carriage_vehicle_dock_assignments": result.Assignments,
	})
}
