package ports

import (
	"context"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// GeometryRepository writes the location columns of one locatable table.
type GeometryRepository interface {
	// SetPoint stores a WGS 84 point built from (lon, lat) together with the
	// scalars and returns the geometry as the database now holds it.
	SetPoint(ctx context.Context, id int64, lat, lon float64) (*domain.Geometry, error)
	// SaveScalars stores an incomplete pair of scalars and drops the
	// geometry, which such a pair cannot describe.
	SaveScalars(ctx context.Context, id int64, lat, lon *float64) error
	ClearPoint(ctx context.Context, id int64) error
	SaveDerived(ctx context.Context, id int64, display, wkt string) error
}

// CustomerMapRepository persists customer map entries.
type CustomerMapRepository interface {
	// Create inserts the entry together with its resolved location.
	Create(ctx context.Context, c *domain.CustomerMap) error
	Update(ctx context.Context, c *domain.CustomerMap) error
	GetByID(ctx context.Context, id int64) (*domain.CustomerMap, error)
	List(ctx context.Context, f domain.CustomerFilter) ([]domain.CustomerMap, int, error)
}

// InstallmentOrderRepository persists installment orders and their product lines.
type InstallmentOrderRepository interface {
	// Create inserts the order, its location and its lines atomically.
	Create(ctx context.Context, o *domain.InstallmentOrder) error
	Update(ctx context.Context, o *domain.InstallmentOrder, replaceLines bool) error
	GetByID(ctx context.Context, id int64) (*domain.InstallmentOrder, error)
	List(ctx context.Context, f domain.OrderFilter) ([]domain.InstallmentOrder, int, error)
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// ProductRepository reads catalogue products.
type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

// PurchaseOrderRepository persists purchase orders created from installment orders.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	Delete(ctx context.Context, id int64) error
	ListByOrigin(ctx context.Context, origin string) ([]domain.PurchaseOrder, error)
}

// PickingRepository persists pickings, moves and their serialised detail lines.
type PickingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Picking, error)
	List(ctx context.Context, f domain.PickingFilter) ([]domain.Picking, int, error)
	SetState(ctx context.Context, id int64, from, to domain.PickingState) (bool, error)
	// ReplaceDetails applies plan to the picking's detail sets in one transaction.
	ReplaceDetails(ctx context.Context, pickingID int64, plan domain.DetailPlan) error
	DeliveryDetails(ctx context.Context, pickingID int64) ([]domain.DeliveryDetail, error)
	ReceiptDetails(ctx context.Context, pickingID int64) ([]domain.ReceiptDetail, error)
	// CreateReturn stores the return picking with its moves and return details,
	// flags the delivery details returned and releases their receipt codes.
	CreateReturn(ctx context.Context, ret *domain.Picking, details []domain.ReturnDetail, returned []int64) error
}

// ChecklistRepository persists installation checklists.
type ChecklistRepository interface {
	Create(ctx context.Context, cl *domain.Checklist) error
	Update(ctx context.Context, cl *domain.Checklist, replaceImages bool) error
	GetByID(ctx context.Context, id int64) (*domain.Checklist, error)
	GetByDelivery(ctx context.Context, deliveryID int64) (*domain.Checklist, error)
	List(ctx context.Context, offset, limit int) ([]domain.Checklist, int, error)
	GetImage(ctx context.Context, id int64) (*domain.ChecklistImage, error)
	ProductTemplates(ctx context.Context, productID int64) ([]domain.ChecklistProduct, error)
	// EnsureImages inserts an image row per template that the checklist does
	// not have yet and returns how many were created.
	EnsureImages(ctx context.Context, checklistID, productID int64, templates []domain.ChecklistProduct) (int, error)
	GetLine(ctx context.Context, lineID int64) (*domain.ChecklistLine, error)
}

// MapRepository reads location rows for the dashboard.
type MapRepository interface {
	ActiveLocations(ctx context.Context, entity domain.EntityKind) ([]domain.LocatableRow, error)
	Stats(ctx context.Context, entity domain.EntityKind, sample int) (*domain.MapStats, error)
	PostGISVersion(ctx context.Context) (string, error)
}
