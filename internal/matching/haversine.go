package matching

import (
	"math"

	"github.com/pinggolf/dockplanner/internal/domain"
)

// earthRadiusKM is the Earth radius used for great-circle distance.
const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// points.
func Haversine(a, b domain.GeoPoint) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	deltaPhi := (b.Lat - a.Lat) * math.Pi / 180
	deltaLambda := (b.Lon - a.Lon) * math.Pi / 180

	sinHalfPhi := math.Sin(deltaPhi / 2)
	sinHalfLambda := math.Sin(deltaLambda / 2)
	h := sinHalfPhi*sinHalfPhi + math.Cos(phi1)*math.Cos(phi2)*sinHalfLambda*sinHalfLambda
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}
