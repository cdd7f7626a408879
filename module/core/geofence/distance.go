package geofence

import (
	"math"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

const EarthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between a and b using
// the spherical Haversine formula. Out-of-range coordinates are not rejected.
func DistanceMeters(a, b domain.GeoPoint) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dPhi := toRad(b.Lat - a.Lat)
	dLambda := toRad(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(math.Max(h, 0), 1)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
