// Package ledger is the durable, append-oriented reservation store shared by
// all three scheduling pathways. It is the single source of truth for
// "what's already on a dock" — every pathway reads it, plans around it, and
// writes back into it within one request.
package ledger

import "time"

const (
	layout = "2006-01-02 15:04:05"
	// Layout is the ledger's persisted and reported timestamp format.
	Layout = layout

	// Retention is how long a completed reservation stays in the ledger
	// after its end time.
	Retention = 7 * 24 * time.Hour
)

// FormatTime renders t in the ledger's timestamp format.
func FormatTime(t time.Time) string { return t.Format(layout) }

// DockKey identifies a dock within its warehouse; busy time and windows are
// always scoped to one of these.
type DockKey struct {
	WarehouseID string
	DockID      string
}

// Entry is one persisted reservation: an order's hold on a warehouse's dock
// for a wall-clock interval.
type Entry struct {
	OrderID     string
	WarehouseID string
	DockID      string
	Start       time.Time
	End         time.Time
}

// Window is a busy interval rebased to minutes-from-now, the unit the MILP
// stages plan in.
type Window struct {
	Start float64
	End   float64
}

// MergeMode selects the dedup key used by Merge, which varies by
// pathway.
type MergeMode int

const (
	// ModeQueue dedups by (order, warehouse, dock) — external/internal queueing.
	ModeQueue MergeMode = iota
	// ModeDrop dedups by the full 5-tuple — drop-pull scheduling.
	ModeDrop
)

type queueKey struct {
	OrderID     string
	WarehouseID string
	DockID      string
}

type dropKey struct {
	OrderID     string
	WarehouseID string
	DockID      string
	Start       time.Time
	End         time.Time
}

// Merge concatenates existing and new entries, deduplicates per mode, and
// purges anything whose End predates the retention cutoff from "now".
func Merge(existing, fresh []Entry, mode MergeMode, now time.Time) []Entry {
	combined := make([]Entry, 0, len(existing)+len(fresh))
	combined = append(combined, existing...)
	combined = append(combined, fresh...)

	seen := make(map[any]bool, len(combined))
	deduped := make([]Entry, 0, len(combined))
	for _, e := range combined {
		var key any
		if mode == ModeDrop {
			key = dropKey{e.OrderID, e.WarehouseID, e.DockID, e.Start, e.End}
		} else {
			key = queueKey{e.OrderID, e.WarehouseID, e.DockID}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, e)
	}

	return purge(deduped, now)
}

func purge(entries []Entry, now time.Time) []Entry {
	cutoff := now.Add(-Retention)
	out := entries[:0:0]
	for _, e := range entries {
		if e.End.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// LoadAndPrepare filters a raw ledger to the busy windows still relevant
// for planning: entries whose End has already passed are dropped, and
// entries belonging to orders currently being re-planned are excluded so
// they get recomputed rather than frozen.
func LoadAndPrepare(entries []Entry, excludeOrderIDs map[string]bool, now time.Time) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.End.After(now) {
			continue
		}
		if excludeOrderIDs[e.OrderID] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ComputeBusy reduces prepared entries to per-dock total busy minutes and
// the busy windows themselves, both rebased to minutes-from-now with
// negative starts clamped to zero.
func ComputeBusy(prepared []Entry, now time.Time) (totalBusy map[DockKey]float64, windows map[DockKey][]Window) {
	totalBusy = make(map[DockKey]float64)
	windows = make(map[DockKey][]Window)

	for _, e := range prepared {
		key := DockKey{WarehouseID: e.WarehouseID, DockID: e.DockID}

		startMin := e.Start.Sub(now).Minutes()
		if startMin < 0 {
			startMin = 0
		}
		endMin := e.End.Sub(now).Minutes()
		if endMin < startMin {
			endMin = startMin
		}

		totalBusy[key] += endMin - startMin
		windows[key] = append(windows[key], Window{Start: startMin, End: endMin})
	}

	return totalBusy, windows
}
