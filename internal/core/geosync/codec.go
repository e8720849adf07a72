package geosync

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// DecodeEWKBHex turns a stored geometry column (hex EWKB, as PostGIS prints
// it) into a domain geometry. text is the ST_AsText output, if selected.
// A nil result means no geometry is stored.
func DecodeEWKBHex(raw, text string) *domain.Geometry {
	if raw == "" {
		return nil
	}
	t, err := ewkbhex.Decode(raw)
	if err != nil {
		return &domain.Geometry{Kind: domain.GeometryUnparseable, Raw: raw, Text: text}
	}
	p, ok := t.(*geom.Point)
	if !ok || p.Empty() {
		return &domain.Geometry{Kind: domain.GeometryUnparseable, Raw: raw, Text: text, SRID: t.SRID()}
	}
	return &domain.Geometry{
		Kind: domain.GeometryPoint,
		Lon:  p.X(),
		Lat:  p.Y(),
		SRID: p.SRID(),
		Text: text,
		Raw:  raw,
	}
}

// ParseGeoJSON reads a map pick. Only Point geometries are accepted.
func ParseGeoJSON(data []byte) (*domain.Geometry, error) {
	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: shape is not valid GeoJSON: %v", domain.ErrValidation, err)
	}
	p, ok := t.(*geom.Point)
	if !ok || p.Empty() {
		return nil, fmt.Errorf("%w: shape must be a GeoJSON Point", domain.ErrValidation)
	}
	return &domain.Geometry{
		Kind: domain.GeometryPoint,
		Lon:  p.X(),
		Lat:  p.Y(),
		SRID: domain.SRIDWGS84,
	}, nil
}

// Feature is one located record of a feature collection.
type Feature struct {
	ID         int64
	Lat, Lon   float64
	Properties map[string]any
}

// EncodeFeatureCollection renders features as a GeoJSON FeatureCollection.
func EncodeFeatureCollection(features []Feature) ([]byte, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	for _, f := range features {
		pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{f.Lon, f.Lat})
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", f.ID, err)
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		props["id"] = f.ID
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         fmt.Sprint(f.ID),
			Geometry:   pt,
			Properties: props,
		})
	}
	return json.Marshal(&fc)
}
