package matching

import (
	"math"
	"time"

	"github.com/pinggolf/dockplanner/internal/domain"
	"github.com/pinggolf/dockplanner/internal/ledger"
)

// SelectDock picks the earliest-available, most efficient compatible dock
// at a warehouse for one order. entries are the warehouse's ledger entries
// as the caller passes them; the dispatch pathways pass reservations that
// have not yet ended, so a dock's historical load counts only those (a
// higher count lowers its adjusted efficiency).
func SelectDock(docks []domain.Dock, o domain.Order, entries []ledger.Entry, now time.Time) (domain.Dock, bool) {
	var (
		best          domain.Dock
		found         bool
		bestAvailable = math.Inf(1)
		bestAdjusted  float64
	)

	for _, d := range docks {
		if !d.CompatibleWith(o) {
			continue
		}

		historicalLoad := 0
		availableTime := 0.0
		for _, e := range entries {
			if e.DockID != d.ID {
				continue
			}
			historicalLoad++
			end := e.End.Sub(now).Minutes()
			if end > availableTime {
				availableTime = end
			}
		}
		if availableTime < 0 {
			availableTime = 0
		}

		adjustedEfficiency := d.EfficiencyFor(o.OrderType) / float64(historicalLoad+1)

		if !found || availableTime < bestAvailable || (availableTime == bestAvailable && adjustedEfficiency > bestAdjusted) {
			best = d
			found = true
			bestAvailable = availableTime
			bestAdjusted = adjustedEfficiency
		}
	}

	return best, found
}

// LayTime is the expected processing duration of load units at a dock.
// Weight is intentionally unused.
func LayTime(load float64, d domain.Dock, ot domain.OrderType) float64 {
	efficiency := d.EfficiencyFor(ot)
	if efficiency <= 0 {
		return 0
	}
	return load / efficiency
}
