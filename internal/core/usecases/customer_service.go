package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
)

// CustomerMapService handles customer map entries.
type CustomerMapService struct {
	customers ports.CustomerMapRepository
	loc       locator
}

// NewCustomerMapService creates a new CustomerMapService.
func NewCustomerMapService(customers ports.CustomerMapRepository, sync *geosync.Synchronizer, events ports.EventPublisher) *CustomerMapService {
	return &CustomerMapService{customers: customers, loc: locator{sync: sync, events: events}}
}

// Create stores a new entry with an optional location. The row and its point
// are inserted together, so a failed point leaves no entry behind.
func (s *CustomerMapService) Create(ctx context.Context, c *domain.CustomerMap, u domain.LocationUpdate) (*domain.CustomerMap, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Active = true
	if err := s.loc.prepare(&c.Location, u); err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer map: %w", err)
	}
	s.loc.refresh(&c.Location)
	s.loc.created(ctx, c.ID, &c.Location, u)
	return c, nil
}

// Get returns one entry.
func (s *CustomerMapService) Get(ctx context.Context, id int64) (*domain.CustomerMap, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.loc.refresh(&c.Location)
	return c, nil
}

// List searches entries by name, phone or email.
func (s *CustomerMapService) List(ctx context.Context, f domain.CustomerFilter) ([]domain.CustomerMap, int, error) {
	f.Offset, f.Limit = clampPage(f.Offset, f.Limit)
	out, total, err := s.customers.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		s.loc.refresh(&out[i].Location)
	}
	return out, total, nil
}

// Update applies a partial update.
func (s *CustomerMapService) Update(ctx context.Context, id int64, p domain.CustomerMapPatch) (*domain.CustomerMap, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.loc.precheck(p.Location); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer map: %w", err)
	}
	s.loc.refresh(&c.Location)
	if err := s.loc.apply(ctx, c.ID, &c.Location, p.Location); err != nil {
		return nil, err
	}
	return c, nil
}

// Archive hides an entry from the map.
func (s *CustomerMapService) Archive(ctx context.Context, id int64) (*domain.CustomerMap, error) {
	inactive := false
	return s.Update(ctx, id, domain.CustomerMapPatch{Active: &inactive})
}

// SetLocation stores a coordinate pair. Both values are required and must
// form a complete pair under the zero policy, so a half-zero pair cannot
// leave a stale geometry behind.
func (s *CustomerMapService) SetLocation(ctx context.Context, id int64, lat, lon *float64) (*domain.CustomerMap, error) {
	if lat == nil || lon == nil || !s.loc.sync.Policy().Complete(lat, lon) {
		return nil, errBothCoordinates
	}
	return s.Update(ctx, id, domain.CustomerMapPatch{Location: domain.LocationUpdate{Latitude: lat, Longitude: lon}})
}

// ClearLocation removes the location of an entry.
func (s *CustomerMapService) ClearLocation(ctx context.Context, id int64) (*domain.CustomerMap, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loc.clear(ctx, id, &c.Location); err != nil {
		return nil, err
	}
	return c, nil
}

var errBothCoordinates = &domain.FieldError{Field: "location", Message: "Please enter both latitude and longitude."}
