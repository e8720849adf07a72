package domain

import (
	"strconv"
)

// SRIDWGS84 is the spatial reference every stored geometry is tagged with.
const SRIDWGS84 = 4326

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box (edges included).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// GeometryKind tags the variant held by a Geometry.
type GeometryKind int

const (
	// GeometryPoint is a decoded point with usable ordinates.
	GeometryPoint GeometryKind = iota + 1
	// GeometryUnparseable is a stored value whose ordinates could not be read.
	GeometryUnparseable
)

// Geometry is a geospatial value as held by a locatable record.
// A nil *Geometry means no geometry is set.
//
// Point values keep ordinates in (lon, lat) order like WKT and GeoJSON do;
// callers read them through Point() which returns (lat, lon).
type Geometry struct {
	Kind GeometryKind
	Lon  float64
	Lat  float64
	SRID int
	// Text is the WKT form reported by the store, empty when unknown.
	Text string
	// Raw is the undecoded payload of an unparseable value.
	Raw string
}

// Point returns the point ordinates for GeometryPoint values.
func (g *Geometry) Point() (GeoPoint, bool) {
	if g == nil || g.Kind != GeometryPoint {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: g.Lat, Lon: g.Lon}, true
}

// WKT returns the well-known-text form when one is known.
func (g *Geometry) WKT() (string, bool) {
	if g == nil || g.Text == "" {
		return "", false
	}
	return g.Text, true
}

// String returns the generic textual form: EWKT for points, the raw payload otherwise.
func (g *Geometry) String() string {
	if g == nil {
		return ""
	}
	switch g.Kind {
	case GeometryPoint:
		s := "POINT(" + FormatOrdinate(g.Lon) + " " + FormatOrdinate(g.Lat) + ")"
		if g.SRID != 0 {
			s = "SRID=" + strconv.Itoa(g.SRID) + ";" + s
		}
		return s
	default:
		return g.Raw
	}
}

// FormatOrdinate renders a coordinate with the shortest representation that
// round-trips, e.g. 106.8 rather than 106.800000.
func FormatOrdinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
