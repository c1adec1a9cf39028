// Package geo holds great-circle helpers on a spherical Earth.
package geo

import (
	"math"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

const EarthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between a and b. Inputs are
// assumed to be valid coordinates; see domain.ValidateCoordinate.
func DistanceMeters(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h just past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Offset returns the point reached by travelling meters from start along the
// initial bearing (degrees clockwise from north).
func Offset(start domain.Coordinate, bearingDeg, meters float64) domain.Coordinate {
	delta := meters / EarthRadiusMeters
	theta := toRad(bearingDeg)
	lat1 := toRad(start.Lat)
	lng1 := toRad(start.Lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lng2 := lng1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	lng := toDeg(lng2)
	lng = math.Mod(lng+540, 360) - 180
	return domain.Coordinate{Lat: toDeg(lat2), Lng: lng}
}

// Bearing returns the initial bearing in degrees [0, 360) from a towards b.
func Bearing(a, b domain.Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLng := toRad(b.Lng - a.Lng)
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return math.Mod(toDeg(math.Atan2(y, x))+360, 360)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
