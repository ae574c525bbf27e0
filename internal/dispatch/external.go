package dispatch

import (
	"context"
	"time"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/scheduling"
	"github.com/pinggolf/dockplanner/internal/solver"
)

// RunExternal implements the external queueing endpoint. Orders run
// through the dock-assignment and window MILPs in two passes split by
// direction: outbound ("loading") orders first, then inbound ("unloading")
// orders, so the unloading pass's dock-availability read observes whatever
// the loading pass just committed.
func RunExternal(ctx context.Context, backend solver.Backend, store *ledger.Store, orders []domain.Order, warehouses []domain.Warehouse, now time.Time) (ExternalResult, error) {
	if err := validateOrders(orders); err != nil {
		return ExternalResult{}, err
	}

	outbound := filterByType(orders, domain.OrderTypeOutbound)
	inbound := filterByType(orders, domain.OrderTypeInbound)

	var allVisits []scheduling.Visit

	if len(outbound) > 0 {
		visits, err := runExternalPass(ctx, backend, store, outbound, warehouses, now)
		if err != nil {
			return ExternalResult{}, err
		}
		allVisits = append(allVisits, visits...)
	}

	if len(inbound) > 0 {
		visits, err := runExternalPass(ctx, backend, store, inbound, warehouses, now)
		if err != nil {
			return ExternalResult{}, err
		}
		allVisits = append(allVisits, visits...)
	}

	return ShapeExternal(allVisits, now), nil
}

// runExternalPass runs the two-stage MILP for one direction's orders inside
// a single ledger lock span: read the current ledger, exclude any entries
// belonging to the orders being replanned, solve, and merge the result back
// in. Nothing is written if either stage is infeasible.
func runExternalPass(ctx context.Context, backend solver.Backend, store *ledger.Store, orders []domain.Order, warehouses []domain.Warehouse, now time.Time) ([]scheduling.Visit, error) {
	replanned := make(map[string]bool, len(orders))
	for _, o := range orders {
		replanned[o.ID] = true
	}

	var visits []scheduling.Visit
	err := store.WithLock(func(existing []ledger.Entry) ([]ledger.Entry, error) {
		prepared := ledger.LoadAndPrepare(existing, replanned, now)
		totalBusy, windows := ledger.ComputeBusy(prepared, now)

		assignment, _, ok, err := scheduling.Stage1(ctx, backend, orders, warehouses, totalBusy)
		if err != nil {
			return nil, &InternalError{Err: err}
		}
		if !ok {
			return nil, &InfeasibleError{Pathway: "external"}
		}

		solved, _, ok := scheduling.Stage2(orders, warehouses, assignment, windows)
		if !ok {
			return nil, &InfeasibleError{Pathway: "external"}
		}
		visits = solved

		fresh := ToLedgerEntries(solved, now)
		return ledger.Merge(prepared, fresh, ledger.ModeQueue, now), nil
	})
	if err != nil {
		return nil, err
	}
	return visits, nil
}

// validateOrders rejects up front what every later stage could only fail
// on confusingly: an order with no required carriage can never match any
// dock's compatible set. The error names the offending order.
func validateOrders(orders []domain.Order) error {
	for _, o := range orders {
		if o.RequiredCarriage == "" {
			return &InputError{OrderID: o.ID, Msg: "required_carriage is missing"}
		}
	}
	return nil
}

func filterByType(orders []domain.Order, ot domain.OrderType) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if o.OrderType == ot {
			out = append(out, o)
		}
	}
	return out
}
