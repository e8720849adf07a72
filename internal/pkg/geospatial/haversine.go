package geospatial

import "math"

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns a box enclosing the circle of radiusMeters around a point.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// Within reports whether (lat, lon) lies within radiusMeters of the center.
// The bounding box is checked first to skip the trigonometry for far points.
func Within(centerLat, centerLon, lat, lon, radiusMeters float64) bool {
	minLat, minLon, maxLat, maxLon := BoundingBox(centerLat, centerLon, radiusMeters)
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		return false
	}
	return Haversine(centerLat, centerLon, lat, lon) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
