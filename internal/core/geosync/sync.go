package geosync

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
	"github.com/samirrijal/fieldops/internal/pkg/telemetry"
)

// Synchronizer applies location writes for one locatable table.
type Synchronizer struct {
	repo   ports.GeometryRepository
	entity domain.EntityKind
	policy ZeroPolicy
}

// New creates a Synchronizer writing through repo.
func New(repo ports.GeometryRepository, entity domain.EntityKind, policy ZeroPolicy) *Synchronizer {
	return &Synchronizer{repo: repo, entity: entity, policy: policy}
}

// Entity returns the record variant the synchronizer serves.
func (s *Synchronizer) Entity() domain.EntityKind { return s.entity }

// Policy returns the zero-coordinate policy.
func (s *Synchronizer) Policy() ZeroPolicy { return s.policy }

// Apply writes u onto the stored record id and mirrors the result into loc.
//
// A supplied geometry wins over supplied scalars. Supplied scalars are merged
// with the current ones; when the merged pair is complete the geometry is
// rebuilt from it, otherwise the scalars are stored and the geometry is
// dropped. loc is left untouched when validation or point construction fails.
func (s *Synchronizer) Apply(ctx context.Context, id int64, loc *domain.Location, u domain.LocationUpdate) error {
	if u.Empty() {
		return nil
	}

	ctx, span := telemetry.Tracer().Start(ctx, "geosync.Apply", trace.WithAttributes(
		attribute.String("entity", string(s.entity)),
		attribute.Int64("record.id", id),
	))
	defer span.End()

	err := s.apply(ctx, id, loc, u)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Synchronizer) apply(ctx context.Context, id int64, loc *domain.Location, u domain.LocationUpdate) error {
	lat, lon, source, err := s.resolve(loc, u)
	if err != nil {
		return err
	}

	if source == "geometry" || s.policy.Complete(lat, lon) {
		if err := s.setPoint(ctx, id, loc, *lat, *lon); err != nil {
			return err
		}
	} else {
		if err := s.repo.SaveScalars(ctx, id, lat, lon); err != nil {
			return fmt.Errorf("save coordinates: %w", err)
		}
		loc.Latitude, loc.Longitude, loc.Shape = lat, lon, nil
	}
	metrics.LocationSyncs.WithLabelValues(string(s.entity), source).Inc()
	return s.saveDerived(ctx, id, loc)
}

// Prepare resolves u into loc for a record that is not stored yet. It follows
// the rules of Apply without touching the repository; the caller writes the
// location columns in the same statement as the row.
func (s *Synchronizer) Prepare(loc *domain.Location, u domain.LocationUpdate) error {
	if u.Empty() {
		Refresh(loc, s.policy)
		return nil
	}
	lat, lon, source, err := s.resolve(loc, u)
	if err != nil {
		return err
	}

	var g *domain.Geometry
	if source == "geometry" || s.policy.Complete(lat, lon) {
		if g, err = ToGeometry(*lat, *lon); err != nil {
			return err
		}
	}
	loc.Latitude, loc.Longitude, loc.Shape = copyFloat(lat), copyFloat(lon), g
	metrics.LocationSyncs.WithLabelValues(string(s.entity), source).Inc()
	Refresh(loc, s.policy)
	return nil
}

// resolve validates u and returns the pair to store: the point of a supplied
// geometry, or the supplied scalars merged with the current ones.
func (s *Synchronizer) resolve(loc *domain.Location, u domain.LocationUpdate) (lat, lon *float64, source string, err error) {
	if u.Shape != nil {
		p, ok := FromGeometry(u.Shape)
		if !ok {
			return nil, nil, "", fmt.Errorf("%w: geometry has no readable point", domain.ErrValidation)
		}
		if err := s.validate(&p.Lat, &p.Lon); err != nil {
			return nil, nil, "", err
		}
		return &p.Lat, &p.Lon, "geometry", nil
	}

	if err := s.validate(u.Latitude, u.Longitude); err != nil {
		return nil, nil, "", err
	}
	lat, lon = loc.Latitude, loc.Longitude
	if u.Latitude != nil {
		lat = u.Latitude
	}
	if u.Longitude != nil {
		lon = u.Longitude
	}
	// stored values may predate validation
	if err := s.validate(lat, lon); err != nil {
		return nil, nil, "", err
	}
	return lat, lon, "scalars", nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v)
}

// Clear removes both representations from the record.
func (s *Synchronizer) Clear(ctx context.Context, id int64, loc *domain.Location) error {
	ctx, span := telemetry.Tracer().Start(ctx, "geosync.Clear", trace.WithAttributes(
		attribute.String("entity", string(s.entity)),
		attribute.Int64("record.id", id),
	))
	defer span.End()

	if err := s.repo.ClearPoint(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("clear location: %w", err)
	}
	loc.Latitude, loc.Longitude, loc.Shape = nil, nil, nil
	metrics.LocationSyncs.WithLabelValues(string(s.entity), "clear").Inc()
	return s.saveDerived(ctx, id, loc)
}

func (s *Synchronizer) validate(lat, lon *float64) error {
	if err := Validate(lat, lon); err != nil {
		metrics.InvalidCoordinates.WithLabelValues(string(s.entity)).Inc()
		return err
	}
	return nil
}

func (s *Synchronizer) setPoint(ctx context.Context, id int64, loc *domain.Location, lat, lon float64) error {
	g, err := ToGeometry(lat, lon)
	if err != nil {
		return err
	}
	stored, err := s.repo.SetPoint(ctx, id, lat, lon)
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		metrics.SetLocationFailures.WithLabelValues(string(s.entity)).Inc()
		return fmt.Errorf("%w: %w", domain.ErrSetLocation, err)
	}
	if stored != nil {
		g = stored
	}
	loc.Shape = g
	loc.Latitude = domain.Float(lat)
	loc.Longitude = domain.Float(lon)
	return nil
}

// Refresh recomputes the derived fields of a loaded record.
func (s *Synchronizer) Refresh(loc *domain.Location) {
	Refresh(loc, s.policy)
}

func (s *Synchronizer) saveDerived(ctx context.Context, id int64, loc *domain.Location) error {
	Refresh(loc, s.policy)
	if err := s.repo.SaveDerived(ctx, id, loc.LocationDisplay, loc.GeoWKT); err != nil {
		return fmt.Errorf("save derived location: %w", err)
	}
	return nil
}
