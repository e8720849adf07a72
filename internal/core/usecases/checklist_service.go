package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
)

// ChecklistService handles installation checklists.
type ChecklistService struct {
	checklists ports.ChecklistRepository
	pickings   ports.PickingRepository
}

// NewChecklistService creates a new ChecklistService.
func NewChecklistService(checklists ports.ChecklistRepository, pickings ports.PickingRepository) *ChecklistService {
	return &ChecklistService{checklists: checklists, pickings: pickings}
}

// Draft pre-fills a checklist from a delivery without storing it: the
// delivered coordinates, the responsible user and one line per move.
func (s *ChecklistService) Draft(ctx context.Context, deliveryID int64) (*domain.Checklist, error) {
	p, err := s.pickings.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	cl := &domain.Checklist{
		DeliveryID:   p.ID,
		DeliveryName: p.Name,
		UserID:       p.UserID,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
	for _, m := range p.Moves {
		cl.ProductLines = append(cl.ProductLines, domain.ChecklistLine{
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Demand:      m.Demand,
			Quantity:    m.Quantity,
		})
	}
	return cl, nil
}

// Open returns the checklist of a delivery, creating it from Draft when the
// delivery has none yet. created reports which case happened.
func (s *ChecklistService) Open(ctx context.Context, deliveryID int64) (cl *domain.Checklist, created bool, err error) {
	existing, err := s.checklists.GetByDelivery(ctx, deliveryID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	cl, err = s.Draft(ctx, deliveryID)
	if err != nil {
		return nil, false, err
	}
	cl, err = s.Create(ctx, cl)
	if errors.Is(err, domain.ErrConflict) {
		// opened concurrently
		existing, gerr := s.checklists.GetByDelivery(ctx, deliveryID)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cl, true, nil
}

// Create stores a checklist for an outgoing picking.
func (s *ChecklistService) Create(ctx context.Context, cl *domain.Checklist) (*domain.Checklist, error) {
	if cl.DeliveryID == 0 {
		return nil, &domain.FieldError{Field: "delivery_id", Message: "delivery_id is required"}
	}
	if err := geosync.Validate(cl.Latitude, cl.Longitude); err != nil {
		return nil, err
	}
	p, err := s.pickings.GetByID(ctx, cl.DeliveryID)
	if err != nil {
		return nil, err
	}
	if p.Type != domain.PickingOutgoing {
		return nil, &domain.FieldError{Field: "delivery_id", Message: "Checklists can only be attached to delivery orders."}
	}
	cl.DeliveryName = p.Name
	if err := s.checklists.Create(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// Update applies a partial update.
func (s *ChecklistService) Update(ctx context.Context, id int64, patch domain.ChecklistPatch) (*domain.Checklist, error) {
	cl, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.OfficerID != nil {
		cl.OfficerID = patch.OfficerID
	}
	if patch.Latitude != nil {
		cl.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		cl.Longitude = patch.Longitude
	}
	if patch.Information != nil {
		cl.Information = *patch.Information
	}
	if err := geosync.Validate(cl.Latitude, cl.Longitude); err != nil {
		return nil, err
	}
	if patch.ReplaceImages {
		cl.Images = patch.Images
	}
	if err := s.checklists.Update(ctx, cl, patch.ReplaceImages); err != nil {
		return nil, fmt.Errorf("update checklist: %w", err)
	}
	return s.checklists.GetByID(ctx, id)
}

// Get returns a checklist with lines and images.
func (s *ChecklistService) Get(ctx context.Context, id int64) (*domain.Checklist, error) {
	return s.checklists.GetByID(ctx, id)
}

// ByDelivery returns the checklist of a delivery.
func (s *ChecklistService) ByDelivery(ctx context.Context, deliveryID int64) (*domain.Checklist, error) {
	return s.checklists.GetByDelivery(ctx, deliveryID)
}

// List returns a page of checklists.
func (s *ChecklistService) List(ctx context.Context, offset, limit int) ([]domain.Checklist, int, error) {
	offset, limit = clampPage(offset, limit)
	return s.checklists.List(ctx, offset, limit)
}

// PrepareInspection creates the image records a checklist line needs, one per
// inspection template of its product. Running it again creates nothing new.
func (s *ChecklistService) PrepareInspection(ctx context.Context, lineID int64) (int, error) {
	line, err := s.checklists.GetLine(ctx, lineID)
	if err != nil {
		return 0, err
	}
	templates, err := s.checklists.ProductTemplates(ctx, line.ProductID)
	if err != nil {
		return 0, fmt.Errorf("load templates: %w", err)
	}
	if len(templates) == 0 {
		return 0, nil
	}
	return s.checklists.EnsureImages(ctx, line.ChecklistID, line.ProductID, templates)
}

// Image returns one photo of a checklist image record.
func (s *ChecklistService) Image(ctx context.Context, id int64, field string) ([]byte, error) {
	img, err := s.checklists.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	data, ok := img.ImageField(field)
	if !ok {
		return nil, &domain.FieldError{Field: "field", Message: "unknown image field " + field}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %d %s: %w", id, field, domain.ErrNotFound)
	}
	return data, nil
}
