package matching

import "github.com/pinggolf/dockplanner/internal/domain"

// MatchCarriage prefers a carriage already standing at the chosen dock;
// otherwise it picks the nearest idle carriage of the required type by
// great-circle distance to the warehouse. The match, if any, flips to BUSY
// in place so subsequent orders in the same request see it as taken.
func MatchCarriage(carriages []*domain.Carriage, dockID string, requiredType string, warehouseLocation *domain.GeoPoint) (*domain.Carriage, bool) {
	for _, c := range carriages {
		if c.CurrentDockID == dockID && c.Type == requiredType && c.State == domain.StateIdle {
			c.State = domain.StateBusy
			return c, true
		}
	}

	if warehouseLocation == nil {
		return nil, false
	}

	var (
		best     *domain.Carriage
		bestDist = 0.0
	)
	for _, c := range carriages {
		if c.Type != requiredType || c.State != domain.StateIdle {
			continue
		}
		dist := Haversine(c.Location, *warehouseLocation)
		if best == nil || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	if best == nil {
		return nil, false
	}
	best.State = domain.StateBusy
	return best, true
}
