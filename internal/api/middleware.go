package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pinggolf/dockplanner/internal/dispatch"
)

// envelope is the `{code, message, data}` response shape every endpoint
// returns. The envelope code is 0 on success and 1 on any failure; the
// 400-vs-500 distinction rides on the HTTP status alone.
type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	code := 0
	if status != http.StatusOK {
		code = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Code: code, Message: message, Data: data}); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeDispatchError maps a dispatch-layer error to its HTTP status:
// malformed input is a 400, everything else (infeasible model, ledger
// I/O, unexpected failure) is a generic 500 that never leaks internal
// detail.
func writeDispatchError(w http.ResponseWriter, err error) {
	var inputErr *dispatch.InputError
	if errors.As(err, &inputErr) {
		writeEnvelope(w, http.StatusBadRequest, inputErr.Error(), nil)
		return
	}

	var infeasibleErr *dispatch.InfeasibleError
	if errors.As(err, &infeasibleErr) {
		log.Printf("api: infeasible: %v", err)
		writeEnvelope(w, http.StatusInternalServerError, "no feasible schedule for this request", nil)
		return
	}

	log.Printf("api: internal error: %v", err)
	writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
}
