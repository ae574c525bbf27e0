package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pinggolf/dockplanner/internal/audit"
	"github.com/pinggolf/dockplanner/internal/dispatch"
	"github.com/pinggolf/dockplanner/internal/queue"
)

type externalRequest struct {
	Warehouses []wireWarehouse `json:"warehouses"`
	Orders     []wireOrder     `json:"orders"`
}

func (s *Server) handleExternal(w http.ResponseWriter, r *http.Request) {
	var req externalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if len(req.Orders) == 0 {
		writeEnvelope(w, http.StatusBadRequest, "orders must not be empty", nil)
		return
	}

	if err := s.throttle.Wait(r.Context(), "external"); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.SolverTimeout)
	defer cancel()

	warehouses := toDomainWarehouses(req.Warehouses)
	orders := toDomainOrders(req.Orders, false)
	now := time.Now()

	result, err := dispatch.RunExternal(ctx, s.backend, s.externalStore, orders, warehouses, now)
	s.recordAndNotify("external", len(orders), err)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	writeEnvelope(w, http.StatusOK, "ok", result)
}

// recordAndNotify records one audit row and, on success, publishes the
// pathway's committed-schedule event tagged with a fresh request ID so a
// dispatch call can be traced across the audit table and the NATS stream.
// Both are best-effort: a failure here never changes the HTTP response
// already decided by the caller.
func (s *Server) recordAndNotify(pathway string, orderCount int, err error) {
	requestID := uuid.New().String()

	status := "committed"
	if err != nil {
		status = "error"
		var infeasible *dispatch.InfeasibleError
		if errors.As(err, &infeasible) {
			status = "infeasible"
		}
	}
	if s.auditLog != nil {
		if auditErr := s.auditLog.Record(context.Background(), audit.Entry{
			Pathway:    pathway,
			OrderCount: orderCount,
			Status:     status,
			Detail:     map[string]interface{}{"request_id": requestID},
		}); auditErr != nil {
			// Audit logging is ambient observability, not a scheduling
			// invariant — never fail the request over it.
			_ = auditErr
		}
	}
	if err == nil && s.natsManager != nil {
		payload := []byte(`{"pathway":"` + pathway + `","request_id":"` + requestID + `"}`)
		_ = s.natsManager.Publish(queue.CommittedSubject(pathway), payload)
	}
}
