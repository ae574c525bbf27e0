package matching

import "github.com/pinggolf/dockplanner/internal/domain"

// MatchVehicle picks the idle vehicle minimizing distance plus a workload
// factor. Mean workload is computed over every vehicle passed in, idle or
// not. The match, if any, flips to BUSY in place.
func MatchVehicle(vehicles []*domain.Vehicle, carriageLocation domain.GeoPoint) (*domain.Vehicle, bool) {
	if len(vehicles) == 0 {
		return nil, false
	}

	totalWorkload := 0
	for _, v := range vehicles {
		totalWorkload += v.Workload
	}
	meanWorkload := float64(totalWorkload) / float64(len(vehicles))

	var (
		best      *domain.Vehicle
		bestScore float64
	)
	for _, v := range vehicles {
		if v.State != domain.StateIdle {
			continue
		}

		workloadFactor := 1.0
		if meanWorkload != 0 {
			workloadFactor = 1 + (float64(v.Workload)-meanWorkload)/meanWorkload
		}
		if workloadFactor < 0 {
			workloadFactor = 0
		}

		score := Haversine(v.Location, carriageLocation) + workloadFactor
		if best == nil || score < bestScore {
			best = v
			bestScore = score
		}
	}
	if best == nil {
		return nil, false
	}
	best.State = domain.StateBusy
	return best, true
}
