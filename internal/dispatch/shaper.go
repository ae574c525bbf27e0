package dispatch

import (
	"sort"
	"time"

	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/scheduling"
)

// ExternalResult is the external queueing endpoint's response body.
type ExternalResult struct {
	OrderSequences       map[string][]string          `json:"order_sequences"`
	OrderDockAssignments map[string]map[string]string `json:"order_dock_assignments"`
	DocksQueues          []DockQueue                  `json:"docks_queues"`
}

// DockQueue is one dock's positional queue of scheduled visits.
type DockQueue struct {
	WarehouseID string      `json:"warehouse_id"`
	DockID      string      `json:"dock_id"`
	Queue       []QueueItem `json:"queue"`
}

// QueueItem is one position in a dock's queue.
type QueueItem struct {
	Position  int    `json:"position"`
	OrderID   string `json:"order_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ShapeExternal reads stage-2's solved visits into the external response
// shape: order_sequences sorts each order's visits by start,
// order_dock_assignments is a direct lookup, and docks_queues orders each
// dock's visits into a positional queue.
func ShapeExternal(visits []scheduling.Visit, now time.Time) ExternalResult {
	sorted := make([]scheduling.Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	orderSequences := make(map[string][]string)
	orderDockAssignments := make(map[string]map[string]string)
	dockQueues := make(map[ledger.DockKey]*DockQueue)
	var dockOrder []ledger.DockKey

	for _, v := range sorted {
		orderSequences[v.OrderID] = append(orderSequences[v.OrderID], v.WarehouseID)

		if orderDockAssignments[v.OrderID] == nil {
			orderDockAssignments[v.OrderID] = make(map[string]string)
		}
		orderDockAssignments[v.OrderID][v.WarehouseID] = v.DockID

		key := ledger.DockKey{WarehouseID: v.WarehouseID, DockID: v.DockID}
		dq, ok := dockQueues[key]
		if !ok {
			dq = &DockQueue{WarehouseID: v.WarehouseID, DockID: v.DockID}
			dockQueues[key] = dq
			dockOrder = append(dockOrder, key)
		}
		dq.Queue = append(dq.Queue, QueueItem{
			Position:  len(dq.Queue) + 1,
			OrderID:   v.OrderID,
			StartTime: ledger.FormatTime(ledger.FromMinutes(v.Start).Absolute(now)),
			EndTime:   ledger.FormatTime(ledger.FromMinutes(v.End).Absolute(now)),
		})
	}

	docksQueues := make([]DockQueue, 0, len(dockOrder))
	for _, key := range dockOrder {
		docksQueues = append(docksQueues, *dockQueues[key])
	}

	return ExternalResult{
		OrderSequences:       orderSequences,
		OrderDockAssignments: orderDockAssignments,
		DocksQueues:          docksQueues,
	}
}

// ToLedgerEntries converts solved visits into ledger entries anchored at
// now.
func ToLedgerEntries(visits []scheduling.Visit, now time.Time) []ledger.Entry {
	entries := make([]ledger.Entry, len(visits))
	for i, v := range visits {
		entries[i] = ledger.Entry{
			OrderID:     v.OrderID,
			WarehouseID: v.WarehouseID,
			DockID:      v.DockID,
			Start:       ledger.FromMinutes(v.Start).Absolute(now),
			End:         ledger.FromMinutes(v.End).Absolute(now),
		}
	}
	return entries
}
