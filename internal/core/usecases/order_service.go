package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

// OrderService handles installment orders and the purchase orders created
// from them.
type OrderService struct {
	orders    ports.InstallmentOrderRepository
	products  ports.ProductRepository
	purchases ports.PurchaseOrderRepository
	events    ports.EventPublisher
	loc       locator
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders ports.InstallmentOrderRepository,
	products ports.ProductRepository,
	purchases ports.PurchaseOrderRepository,
	sync *geosync.Synchronizer,
	events ports.EventPublisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		purchases: purchases,
		events:    events,
		loc:       locator{sync: sync, events: events},
	}
}

// Create stores a new draft order.
func (s *OrderService) Create(ctx context.Context, o *domain.InstallmentOrder, u domain.LocationUpdate) (*domain.InstallmentOrder, error) {
	o.Status = domain.OrderDraft
	o.Active = true
	o.Address = o.ComposeAddress()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.loc.prepare(&o.Location, u); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.loc.refresh(&o.Location)
	s.loc.created(ctx, o.ID, &o.Location, u)
	return o, nil
}

// Get returns an order with its lines.
func (s *OrderService) Get(ctx context.Context, id int64) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.loc.refresh(&o.Location)
	return o, nil
}

// List returns a page of orders.
func (s *OrderService) List(ctx context.Context, f domain.OrderFilter) ([]domain.InstallmentOrder, int, error) {
	f.Offset, f.Limit = clampPage(f.Offset, f.Limit)
	out, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		s.loc.refresh(&out[i].Location)
	}
	return out, total, nil
}

// Update applies a partial update.
func (s *OrderService) Update(ctx context.Context, id int64, p domain.InstallmentOrderPatch) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(o)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.loc.precheck(p.Location); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o, p.ReplaceLines); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.loc.refresh(&o.Location)
	if err := s.loc.apply(ctx, o.ID, &o.Location, p.Location); err != nil {
		return nil, err
	}
	return o, nil
}

// SetLocation stores a coordinate pair. Both values are required and must
// form a complete pair under the zero policy, so a half-zero pair cannot
// leave a stale geometry behind.
func (s *OrderService) SetLocation(ctx context.Context, id int64, lat, lon *float64) (*domain.InstallmentOrder, error) {
	if lat == nil || lon == nil || !s.loc.sync.Policy().Complete(lat, lon) {
		return nil, errBothCoordinates
	}
	return s.Update(ctx, id, domain.InstallmentOrderPatch{Location: domain.LocationUpdate{Latitude: lat, Longitude: lon}})
}

// ClearLocation removes the location of an order.
func (s *OrderService) ClearLocation(ctx context.Context, id int64) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loc.clear(ctx, id, &o.Location); err != nil {
		return nil, err
	}
	return o, nil
}

// Submit sends a draft order for approval.
func (s *OrderService) Submit(ctx context.Context, id int64, actor string) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(o.ProductLines) == 0 {
		return nil, &domain.FieldError{Field: "product_lines", Message: "Please add at least one product before submitting."}
	}
	return s.transition(ctx, o, domain.OrderSubmitted, actor, "Request submitted for approval.")
}

// Approve accepts a submitted order.
func (s *OrderService) Approve(ctx context.Context, id int64, actor string) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, domain.OrderApproved, actor, fmt.Sprintf("Request approved by %s.", actorName(actor)))
}

// Reject sends an order back to draft.
func (s *OrderService) Reject(ctx context.Context, id int64, actor string) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, domain.OrderDraft, actor,
		fmt.Sprintf("Request rejected by %s. Please review and resubmit.", actorName(actor)))
}

// MarkDone closes an approved order.
func (s *OrderService) MarkDone(ctx context.Context, id int64, actor string) (*domain.InstallmentOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderDone {
		return o, nil
	}
	return s.transition(ctx, o, domain.OrderDone, actor, "Request marked as done.")
}

func actorName(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}

func (s *OrderService) transition(ctx context.Context, o *domain.InstallmentOrder, to domain.OrderStatus, actor, message string) (*domain.InstallmentOrder, error) {
	from := o.Status
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	if err := s.orders.SetStatus(ctx, o.ID, to); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	o.Status = to
	s.loc.refresh(&o.Location)
	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()

	if s.events != nil {
		event := &domain.OrderStatusEvent{
			ID:      uuid.NewString(),
			OrderID: o.ID,
			From:    from,
			To:      to,
			Actor:   actor,
			Message: message,
			Time:    time.Now().UTC(),
		}
		if err := s.events.PublishOrderStatus(ctx, event); err != nil {
			slog.Warn("publish order status failed", "order_id", o.ID, "error", err)
		}
	}
	return o, nil
}

// BuildPurchaseOrder prepares, without storing it, the purchase order of an
// approved order: one line per product line priced at the product's standard
// price.
func (s *OrderService) BuildPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(o.ProductLines) == 0 {
		return nil, &domain.FieldError{Field: "product_lines", Message: "No products to create purchase order."}
	}
	if o.ContactID == nil {
		return nil, &domain.FieldError{Field: "contact_id", Message: "Please set a contact/supplier before creating purchase order."}
	}
	if !o.Status.CanTransition(domain.OrderDone) {
		return nil, fmt.Errorf("%w: purchase orders need an approved request, status is %s", domain.ErrInvalidTransition, o.Status)
	}

	ids := make([]int64, 0, len(o.ProductLines))
	for _, l := range o.ProductLines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	po := &domain.PurchaseOrder{PartnerID: *o.ContactID, Origin: o.Title}
	for _, l := range o.ProductLines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrNotFound)
		}
		name := l.Description
		if name == "" {
			name = p.Name
		}
		if name == "" {
			name = "Product"
		}
		po.Lines = append(po.Lines, domain.PurchaseOrderLine{
			ProductID: p.ID,
			Name:      name,
			Quantity:  l.Quantity,
			UomID:     p.UomID,
			PriceUnit: p.StandardPrice,
		})
	}
	return po, nil
}

// SavePurchaseOrder stores a prepared purchase order.
func (s *OrderService) SavePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	if err := s.purchases.Create(ctx, po); err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	metrics.PurchaseOrdersCreated.Inc()
	return nil
}

// DeletePurchaseOrder removes a purchase order.
func (s *OrderService) DeletePurchaseOrder(ctx context.Context, id int64) error {
	return s.purchases.Delete(ctx, id)
}

// CreatePurchaseOrder builds and stores the purchase order of an approved
// order, then marks the order done. When the status change fails the
// purchase order is removed again.
func (s *OrderService) CreatePurchaseOrder(ctx context.Context, id int64, actor string) (*domain.PurchaseOrder, error) {
	po, err := s.BuildPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SavePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	if _, err := s.MarkDone(ctx, id, actor); err != nil {
		if derr := s.purchases.Delete(ctx, po.ID); derr != nil {
			slog.Error("purchase order rollback failed", "purchase_order_id", po.ID, "error", derr)
		}
		return nil, err
	}
	return po, nil
}

// PurchaseOrders lists the purchase orders created from an order.
func (s *OrderService) PurchaseOrders(ctx context.Context, id int64) ([]domain.PurchaseOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.purchases.ListByOrigin(ctx, o.Title)
}
