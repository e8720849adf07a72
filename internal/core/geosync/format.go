package geosync

import (
	"fmt"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

const (
	displayUnset          = "No location set"
	displayOpaqueGeometry = "PostGIS Geometry Set"
	wktOpaqueGeometry     = "PostGIS Geometry"
)

// FormatDisplay renders the human readable location, preferring the geometry.
func FormatDisplay(g *domain.Geometry, lat, lon *float64) string {
	if g != nil {
		if p, ok := FromGeometry(g); ok {
			return displayPoint(p.Lat, p.Lon)
		}
		return displayOpaqueGeometry
	}
	if lat != nil && lon != nil {
		return displayPoint(*lat, *lon)
	}
	return displayUnset
}

func displayPoint(lat, lon float64) string {
	return fmt.Sprintf("Lat: %.6f, Lng: %.6f", lat, lon)
}

// FormatWKT renders the well-known-text of the location, preferring the
// geometry. It returns "" when no location is set.
func FormatWKT(g *domain.Geometry, lat, lon *float64) string {
	if g != nil {
		if wkt, ok := g.WKT(); ok {
			return wkt
		}
		if s := g.String(); s != "" {
			return s
		}
		return wktOpaqueGeometry
	}
	if lat != nil && lon != nil {
		return "POINT(" + domain.FormatOrdinate(*lon) + " " + domain.FormatOrdinate(*lat) + ")"
	}
	return ""
}

// Refresh recomputes the derived fields of loc in place. Scalars that p does
// not count as a point are formatted as unset.
func Refresh(loc *domain.Location, p ZeroPolicy) {
	lat, lon := loc.Latitude, loc.Longitude
	if !p.Complete(lat, lon) {
		lat, lon = nil, nil
	}
	loc.LocationDisplay = FormatDisplay(loc.Shape, lat, lon)
	loc.GeoWKT = FormatWKT(loc.Shape, lat, lon)
}
