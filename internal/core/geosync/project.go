package geosync

import (
	"log/slog"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

// ToGeometry validates the pair and builds a WGS 84 point for it.
func ToGeometry(lat, lon float64) (*domain.Geometry, error) {
	if err := Validate(&lat, &lon); err != nil {
		return nil, err
	}
	return &domain.Geometry{
		Kind: domain.GeometryPoint,
		Lon:  lon,
		Lat:  lat,
		SRID: domain.SRIDWGS84,
	}, nil
}

// FromGeometry returns the (lat, lon) of a point geometry. A value whose
// ordinates cannot be read is logged and reported as absent.
func FromGeometry(g *domain.Geometry) (domain.GeoPoint, bool) {
	if g == nil {
		return domain.GeoPoint{}, false
	}
	p, ok := g.Point()
	if !ok {
		slog.Warn("could not extract coordinates from geometry", "raw", truncate(g.Raw, 64), "wkt", g.Text)
		metrics.GeometryExtractionFailures.Inc()
		return domain.GeoPoint{}, false
	}
	return p, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
