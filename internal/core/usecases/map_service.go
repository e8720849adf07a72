package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/geospatial"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

const debugSampleSize = 10

// MapService serves the location dashboard.
type MapService struct {
	repo  ports.MapRepository
	cache ports.CacheService
	ttl   int
}

// NewMapService creates a new MapService. cache may be nil.
func NewMapService(repo ports.MapRepository, cache ports.CacheService, ttlSeconds int) *MapService {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &MapService{repo: repo, cache: cache, ttl: ttlSeconds}
}

func locationsKey(entity domain.EntityKind) string { return "map:" + string(entity) + ":locations" }
func geojsonKey(entity domain.EntityKind) string   { return "map:" + string(entity) + ":geojson" }

// NearFilter restricts Locations to a circle.
type NearFilter struct {
	Lat, Lon     float64
	RadiusMeters float64
}

// Locations returns the active records with a usable point. The stored
// geometry is preferred; scalars are the fallback. Out-of-range points are
// skipped.
func (s *MapService) Locations(ctx context.Context, entity domain.EntityKind, near *NearFilter) ([]domain.MapLocation, error) {
	if !entity.Valid() {
		return nil, fmt.Errorf("%w: unknown entity %q", domain.ErrNotFound, entity)
	}

	var out []domain.MapLocation
	if !s.fromCache(ctx, locationsKey(entity), "map_locations", &out) {
		rows, err := s.repo.ActiveLocations(ctx, entity)
		if err != nil {
			return nil, err
		}
		policy := geosync.PolicyFor(entity)
		out = make([]domain.MapLocation, 0, len(rows))
		for _, r := range rows {
			p, ok := geosync.FromGeometry(r.Shape)
			if !ok {
				if !policy.Complete(r.Latitude, r.Longitude) {
					continue
				}
				p = domain.GeoPoint{Lat: *r.Latitude, Lon: *r.Longitude}
			}
			if err := geosync.Validate(&p.Lat, &p.Lon); err != nil {
				slog.WarnContext(ctx, "skipping out-of-range location", "entity", entity, "id", r.ID, "error", err)
				continue
			}
			out = append(out, domain.MapLocation{
				ID:              r.ID,
				Title:           r.Title,
				Description:     r.Description,
				Latitude:        p.Lat,
				Longitude:       p.Lon,
				LocationDisplay: geosync.FormatDisplay(nil, &p.Lat, &p.Lon),
				Active:          r.Active,
			})
		}
		s.toCache(ctx, locationsKey(entity), out)
	}

	if near == nil {
		return out, nil
	}
	filtered := out[:0:0]
	for _, l := range out {
		if geospatial.Within(near.Lat, near.Lon, l.Latitude, l.Longitude, near.RadiusMeters) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// GeoJSON returns a FeatureCollection of the active located records. Scalars
// are preferred here; the geometry is the fallback.
func (s *MapService) GeoJSON(ctx context.Context, entity domain.EntityKind) ([]byte, error) {
	if !entity.Valid() {
		return nil, fmt.Errorf("%w: unknown entity %q", domain.ErrNotFound, entity)
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, geojsonKey(entity)); err == nil {
			metrics.CacheHits.WithLabelValues("map_geojson").Inc()
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("map_geojson").Inc()
	}

	rows, err := s.repo.ActiveLocations(ctx, entity)
	if err != nil {
		return nil, err
	}
	policy := geosync.PolicyFor(entity)
	features := make([]geosync.Feature, 0, len(rows))
	for _, r := range rows {
		var p domain.GeoPoint
		switch {
		case policy.Complete(r.Latitude, r.Longitude):
			p = domain.GeoPoint{Lat: *r.Latitude, Lon: *r.Longitude}
		default:
			gp, ok := geosync.FromGeometry(r.Shape)
			if !ok {
				continue
			}
			p = gp
		}
		if err := geosync.Validate(&p.Lat, &p.Lon); err != nil {
			slog.WarnContext(ctx, "skipping out-of-range location", "entity", entity, "id", r.ID, "error", err)
			continue
		}
		features = append(features, geosync.Feature{
			ID:  r.ID,
			Lat: p.Lat,
			Lon: p.Lon,
			Properties: map[string]any{
				"name":        r.Title,
				"description": r.Description,
			},
		})
	}

	data, err := geosync.EncodeFeatureCollection(features)
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, geojsonKey(entity), data, s.ttl)
	}
	return data, nil
}

// Debug reports location coverage for an entity.
func (s *MapService) Debug(ctx context.Context, entity domain.EntityKind) (*domain.MapStats, error) {
	if !entity.Valid() {
		return nil, fmt.Errorf("%w: unknown entity %q", domain.ErrNotFound, entity)
	}
	stats, err := s.repo.Stats(ctx, entity, debugSampleSize)
	if err != nil {
		return nil, err
	}
	policy := geosync.PolicyFor(entity)
	for i := range stats.Sample {
		geosync.Refresh(&stats.Sample[i].Location, policy)
	}
	version, err := s.repo.PostGISVersion(ctx)
	if err != nil {
		slog.WarnContext(ctx, "postgis version check failed", "error", err)
	}
	stats.PostGISVersion = version
	stats.PostGISAvailable = version != ""
	return stats, nil
}

// PostGISVersion returns the PostGIS version, "" when the extension is missing.
func (s *MapService) PostGISVersion(ctx context.Context) (string, error) {
	return s.repo.PostGISVersion(ctx)
}

// Invalidate drops the cached dashboard data of an entity.
func (s *MapService) Invalidate(ctx context.Context, entity domain.EntityKind) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, locationsKey(entity), geojsonKey(entity))
}

// HandleLocationEvent invalidates the cache of the event's entity.
func (s *MapService) HandleLocationEvent(ctx context.Context, event *domain.LocationEvent) error {
	return s.Invalidate(ctx, event.Entity)
}

func (s *MapService) fromCache(ctx context.Context, key, op string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err == nil && json.Unmarshal(data, dst) == nil {
		metrics.CacheHits.WithLabelValues(op).Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()
	return false
}

func (s *MapService) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
}
