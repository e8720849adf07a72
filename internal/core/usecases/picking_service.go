package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/geospatial"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

// PickingService handles delivery orders, their serialised detail lines and
// returns.
type PickingService struct {
	pickings ports.PickingRepository
	loc      locator
}

// NewPickingService creates a new PickingService.
func NewPickingService(pickings ports.PickingRepository, sync *geosync.Synchronizer, events ports.EventPublisher) *PickingService {
	return &PickingService{pickings: pickings, loc: locator{sync: sync, events: events}}
}

// ListDeliveries returns outgoing pickings.
func (s *PickingService) ListDeliveries(ctx context.Context, f domain.PickingFilter) ([]domain.Picking, int, error) {
	f.Type = domain.PickingOutgoing
	f.Offset, f.Limit = clampPage(f.Offset, f.Limit)
	out, total, err := s.pickings.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		s.loc.refresh(&out[i].Location)
	}
	return out, total, nil
}

// Get returns a picking with its moves.
func (s *PickingService) Get(ctx context.Context, id int64) (*domain.Picking, error) {
	p, err := s.pickings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.loc.refresh(&p.Location)
	return p, nil
}

// DeliveryDistance returns the metres between the planned destination and
// the delivered location, when both are known.
func DeliveryDistance(p *domain.Picking) (float64, bool) {
	if p.DestinationLatitude == nil || p.DestinationLongitude == nil {
		return 0, false
	}
	delivered, ok := geosync.FromGeometry(p.Shape)
	if !ok {
		if p.Latitude == nil || p.Longitude == nil {
			return 0, false
		}
		delivered = domain.GeoPoint{Lat: *p.Latitude, Lon: *p.Longitude}
	}
	return geospatial.Haversine(*p.DestinationLatitude, *p.DestinationLongitude, delivered.Lat, delivered.Lon), true
}

// StartDelivery moves an assigned delivery to the delivery state. Pickings in
// any other state are returned unchanged.
func (s *PickingService) StartDelivery(ctx context.Context, id int64) (*domain.Picking, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State != domain.PickingAssigned {
		return p, nil
	}
	ok, err := s.pickings.SetState(ctx, id, domain.PickingAssigned, domain.PickingDelivery)
	if err != nil {
		return nil, fmt.Errorf("start delivery: %w", err)
	}
	if ok {
		p.State = domain.PickingDelivery
	}
	return p, nil
}

// SetDeliveredLocation records where the goods were handed over.
func (s *PickingService) SetDeliveredLocation(ctx context.Context, id int64, u domain.LocationUpdate) (*domain.Picking, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loc.apply(ctx, id, &p.Location, u); err != nil {
		return nil, err
	}
	return p, nil
}

// ClearDeliveredLocation removes the delivered location.
func (s *PickingService) ClearDeliveredLocation(ctx context.Context, id int64) (*domain.Picking, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loc.clear(ctx, id, &p.Location); err != nil {
		return nil, err
	}
	return p, nil
}

// GenerateDetails rebuilds the serialised detail lines from the moves.
func (s *PickingService) GenerateDetails(ctx context.Context, id int64) (domain.DetailPlan, error) {
	p, err := s.pickings.GetByID(ctx, id)
	if err != nil {
		return domain.DetailPlan{}, err
	}
	plan, err := p.DetailLines()
	if err != nil {
		return domain.DetailPlan{}, err
	}
	if !plan.ReplaceReceipts && !plan.ReplaceDeliveries {
		return plan, nil
	}
	if err := s.pickings.ReplaceDetails(ctx, id, plan); err != nil {
		return domain.DetailPlan{}, fmt.Errorf("replace details: %w", err)
	}
	metrics.DetailLinesGenerated.WithLabelValues("receipt").Add(float64(len(plan.Receipts)))
	metrics.DetailLinesGenerated.WithLabelValues("delivery").Add(float64(len(plan.Deliveries)))
	return plan, nil
}

// Details returns both detail sets of a picking.
func (s *PickingService) Details(ctx context.Context, id int64) ([]domain.ReceiptDetail, []domain.DeliveryDetail, error) {
	receipts, err := s.pickings.ReceiptDetails(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	deliveries, err := s.pickings.DeliveryDetails(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return receipts, deliveries, nil
}

// CreateReturn books the unreturned delivery details of an outgoing picking
// back into stock. selected restricts the return to those detail ids.
func (s *PickingService) CreateReturn(ctx context.Context, id int64, selected []int64) (*domain.Picking, error) {
	orig, err := s.pickings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if orig.Type != domain.PickingOutgoing {
		return nil, &domain.FieldError{Field: "picking_type", Message: "Only delivery orders can be returned."}
	}

	details, err := s.pickings.DeliveryDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	want := make(map[int64]bool, len(selected))
	for _, d := range selected {
		want[d] = true
	}

	ret := &domain.Picking{
		Type:           domain.PickingIncoming,
		State:          domain.PickingDraft,
		Origin:         domain.ReturnOriginPrefix + orig.Name,
		PartnerID:      orig.PartnerID,
		WarehouseID:    orig.WarehouseID,
		LocationID:     orig.LocationDestID,
		LocationDestID: orig.LocationID,
	}
	uom := make(map[int64]int64, len(orig.Moves))
	for _, m := range orig.Moves {
		uom[m.ProductID] = m.UomID
	}

	var returnDetails []domain.ReturnDetail
	var returned []int64
	for _, d := range details {
		if d.IsReturned || (len(want) > 0 && !want[d.ID]) {
			continue
		}
		returnDetails = append(returnDetails, domain.ReturnDetail{
			OriginalDeliveryID: id,
			ReceiptDetailID:    d.ReceiptDetailID,
			ProductID:          d.ProductID,
			WarehouseID:        d.WarehouseID,
		})
		returned = append(returned, d.ID)
		u := uom[d.ProductID]
		if u == 0 {
			u = 1
		}
		ret.Moves = append(ret.Moves, domain.StockMove{ProductID: d.ProductID, Demand: 1, Quantity: 1, UomID: u})
	}
	if len(returned) == 0 {
		return nil, &domain.FieldError{Field: "details", Message: "There are no delivered products left to return."}
	}

	if err := s.pickings.CreateReturn(ctx, ret, returnDetails, returned); err != nil {
		return nil, fmt.Errorf("create return: %w", err)
	}
	s.loc.refresh(&ret.Location)
	return ret, nil
}
